package http

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	directory "github.com/fieldops/dispatch_services/internal/directory_service/domain"
	servicecall "github.com/fieldops/dispatch_services/internal/servicecall_service/domain"
)

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// --- Webhook ---

type WebhookText struct {
	Body string `json:"body"`
}

type WebhookMessage struct {
	From     string      `json:"from" validate:"required"`
	FromName string      `json:"from_name"`
	Text     WebhookText `json:"text"`
}

type WebhookRequest struct {
	Messages []WebhookMessage `json:"messages" validate:"dive"`
}

// --- Directory ---

type ProfessionCreateRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type ProfessionResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ProfessionalCreateRequest struct {
	Name       string  `json:"name" validate:"required,max=200"`
	Phone      string  `json:"phone" validate:"required,max=32"`
	Profession string  `json:"profession" validate:"required"`
	Available  *bool   `json:"available"` // defaults to true
	Location   *string `json:"location"`
}

type ProfessionalUpdateRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=200"`
	Phone      *string `json:"phone" validate:"omitempty,min=1,max=32"`
	Profession *string `json:"profession" validate:"omitempty,min=1"`
	Available  *bool   `json:"available"`
	Location   *string `json:"location"`
}

type ByProfessionAndCitiesRequest struct {
	Profession string   `json:"profession" validate:"required"`
	Cities     []string `json:"cities"`
}

type ProfessionalResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Location   *string   `json:"location"`
	Profession string    `json:"profession"`
	Available  bool      `json:"available"`
	CreatedAt  time.Time `json:"createdAt"`
}

// --- Service calls ---

type ServiceCallCreateRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	Locations   []string  `json:"locations" validate:"required,min=1,dive,required"`
	Profession  string    `json:"profession" validate:"required"`
	Urgency     string    `json:"urgency"`
	Status      string    `json:"status"`
}

type ServiceCallUpdateRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	Locations   []string   `json:"locations" validate:"omitempty,min=1,dive,required"`
	Profession  *string    `json:"profession" validate:"omitempty,min=1"`
	Urgency     *string    `json:"urgency"`
	Status      *string    `json:"status"`
}

type ServiceCallResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Locations   []string  `json:"locations"`
	Profession  string    `json:"profession"`
	Urgency     string    `json:"urgency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

type AssignmentResponse struct {
	ID             int64                `json:"id"`
	ServiceCallID  int64                `json:"serviceCallId"`
	ProfessionalID int64                `json:"professionalId"`
	Status         string               `json:"status"`
	CreatedAt      time.Time            `json:"createdAt"`
	ServiceCall    *ServiceCallResponse `json:"serviceCall,omitempty"`
}

// --- Messages ---

type SendMessageRequest struct {
	To   string `json:"to" validate:"required"`
	Body string `json:"body" validate:"required"`
}

type SendMessageResponse struct {
	Success bool `json:"success"`
}

// --- Mapping ---

func toProfessionResponse(p *directory.Profession) ProfessionResponse {
	return ProfessionResponse{ID: p.ID, Name: p.Name}
}

func toProfessionalResponse(p *directory.Professional) ProfessionalResponse {
	return ProfessionalResponse{
		ID:         p.ID,
		Name:       p.Name,
		Phone:      p.Phone,
		Location:   p.Location,
		Profession: p.Profession,
		Available:  p.Available,
		CreatedAt:  p.CreatedAt,
	}
}

func toProfessionalResponses(ps []*directory.Professional) []ProfessionalResponse {
	out := make([]ProfessionalResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toProfessionalResponse(p))
	}
	return out
}

func toServiceCallResponse(sc *servicecall.ServiceCall) ServiceCallResponse {
	locations := sc.Locations
	if locations == nil {
		locations = []string{}
	}
	return ServiceCallResponse{
		ID:          sc.ID,
		Title:       sc.Title,
		Description: sc.Description,
		Date:        sc.ScheduledAt,
		Locations:   locations,
		Profession:  sc.Profession,
		Urgency:     string(sc.Urgency),
		Status:      string(sc.Status),
		CreatedAt:   sc.CreatedAt,
	}
}

func toServiceCallResponses(calls []*servicecall.ServiceCall) []ServiceCallResponse {
	out := make([]ServiceCallResponse, 0, len(calls))
	for _, sc := range calls {
		out = append(out, toServiceCallResponse(sc))
	}
	return out
}

func toAssignmentResponse(a *servicecall.Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:             a.ID,
		ServiceCallID:  a.ServiceCallID,
		ProfessionalID: a.ProfessionalID,
		Status:         string(a.Status),
		CreatedAt:      a.CreatedAt,
	}
	if a.ServiceCall != nil {
		sc := toServiceCallResponse(a.ServiceCall)
		resp.ServiceCall = &sc
	}
	return resp
}

func (r ProfessionalCreateRequest) toDomain() directory.ProfessionalCreate {
	available := true
	if r.Available != nil {
		available = *r.Available
	}
	return directory.ProfessionalCreate{
		Name:       r.Name,
		Phone:      r.Phone,
		Profession: r.Profession,
		Available:  available,
		Location:   r.Location,
	}
}

func (r ProfessionalUpdateRequest) toDomain() directory.ProfessionalUpdate {
	return directory.ProfessionalUpdate{
		Name:       r.Name,
		Phone:      r.Phone,
		Profession: r.Profession,
		Available:  r.Available,
		Location:   r.Location,
	}
}

func (r ServiceCallCreateRequest) toDomain() servicecall.ServiceCallCreate {
	return servicecall.ServiceCallCreate{
		Title:       r.Title,
		Description: r.Description,
		ScheduledAt: r.Date,
		Locations:   r.Locations,
		Profession:  r.Profession,
		Urgency:     r.Urgency,
		Status:      r.Status,
	}
}

func (r ServiceCallUpdateRequest) toDomain() servicecall.ServiceCallUpdate {
	return servicecall.ServiceCallUpdate{
		Title:       r.Title,
		Description: r.Description,
		ScheduledAt: r.Date,
		Locations:   r.Locations,
		Profession:  r.Profession,
		Urgency:     r.Urgency,
		Status:      r.Status,
	}
}
