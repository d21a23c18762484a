package domain

import (
	"time"
)

// Profession is a trade professionals are registered under. Names are unique.
type Profession struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Professional is a service provider reachable by phone. Phone is the correlation key for inbound
// messages but is not unique; lookups by phone return the lowest id.
type Professional struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	ProfessionID int64     `json:"profession_id"`
	Profession   string    `json:"profession"` // name, joined from professions
	Available    bool      `json:"available"`
	Location     *string   `json:"location,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// LocationOrEmpty returns the location or "" when unset.
func (p *Professional) LocationOrEmpty() string {
	if p.Location == nil {
		return ""
	}
	return *p.Location
}

// ProfessionalCreate carries the fields for a new professional. Profession is a name.
type ProfessionalCreate struct {
	Name       string
	Phone      string
	Profession string
	Available  bool
	Location   *string
}

// ProfessionalUpdate holds optional fields; nil means unchanged.
type ProfessionalUpdate struct {
	Name       *string
	Phone      *string
	Profession *string
	Available  *bool
	Location   *string
}

// IsEmpty reports whether no field is set.
func (u ProfessionalUpdate) IsEmpty() bool {
	return u.Name == nil && u.Phone == nil && u.Profession == nil && u.Available == nil && u.Location == nil
}

// ProfessionalFilter narrows a professional listing. Zero values mean "no constraint".
// Locations, when non-empty, requires location to be a member of the set.
type ProfessionalFilter struct {
	Profession string
	Available  *bool
	Locations  []string
}
