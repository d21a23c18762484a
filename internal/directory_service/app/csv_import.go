package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fieldops/dispatch_services/internal/directory_service/domain"
)

const csvMinColumns = 6 // name, phone, profession, available, location, area

// ImportedProfessional is one row that produced a new professional.
type ImportedProfessional struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ImportResult summarises a CSV import.
type ImportResult struct {
	Added   int                    `json:"professionals_added"`
	Skipped int                    `json:"skipped"`
	Details []ImportedProfessional `json:"details"`
}

// ImportCSV bulk-loads professionals. The header row is skipped, short rows and rows with a blank name,
// phone or profession are counted as skipped, professions are upserted by name and a row whose phone
// already exists is skipped without updating the existing record. Only a store error aborts the import.
func (a *Application) ImportCSV(ctx context.Context, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return &ImportResult{Details: []ImportedProfessional{}}, nil
		}
		return nil, fmt.Errorf("%w: reading csv header: %v", domain.ErrInvalidInput, err)
	}

	result := &ImportResult{Details: []ImportedProfessional{}}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: csv line %d: %v", domain.ErrInvalidInput, line, err)
		}
		if len(record) < csvMinColumns {
			result.Skipped++
			continue
		}

		added, err := a.importRow(ctx, line, record)
		if err != nil {
			a.logger.ErrorContext(ctx, "CSV import aborted", "line", line, "error", err)
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		if added == nil {
			result.Skipped++
			continue
		}
		result.Added++
		result.Details = append(result.Details, ImportedProfessional{ID: added.ID, Name: added.Name})
	}

	a.logger.InfoContext(ctx, "CSV import finished", "added", result.Added, "skipped", result.Skipped)
	return result, nil
}

// importRow returns nil, nil for a skipped row: a blank name, phone or profession cell, or a phone
// that is already registered. Only store errors are returned.
func (a *Application) importRow(ctx context.Context, line int, record []string) (*domain.Professional, error) {
	name := strings.TrimSpace(record[0])
	phone := a.phones.Normalize(record[1])
	professionName := strings.TrimSpace(record[2])
	available := strings.ToLower(strings.TrimSpace(record[3])) == "true"
	location := strings.TrimSpace(record[4])

	if name == "" || phone == "" || professionName == "" {
		a.logger.WarnContext(ctx, "Skipping CSV row with blank required cell",
			"line", line, "name_blank", name == "", "phone_blank", phone == "", "profession_blank", professionName == "")
		return nil, nil
	}

	profession, err := a.UpsertProfession(ctx, professionName)
	if err != nil {
		return nil, err
	}

	if _, err := a.professionalRepo.FindByPhone(ctx, phone); err == nil {
		return nil, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	p := &domain.Professional{
		Name:         name,
		Phone:        phone,
		ProfessionID: profession.ID,
		Profession:   profession.Name,
		Available:    available,
		Location:     trimOptional(&location),
	}
	if err := a.professionalRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
