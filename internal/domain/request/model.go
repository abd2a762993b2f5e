package request

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind classifies what a patient is asking for.
type Kind string

const (
	KindConsultation   Kind = "consultation"
	KindBloodRequest   Kind = "blood_request"
	KindHealthAnalysis Kind = "health_analysis"
	KindEmergency      Kind = "emergency"
)

// Priority is the patient-declared urgency of a request.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Status is the request lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// AllowedTransitions represents the request state flow as code. Transitions
// are monotonic: a request never returns to pending, and nothing follows
// completed or cancelled.
var AllowedTransitions = map[Status][]Status{
	StatusPending:    {StatusAssigned, StatusCancelled},
	StatusAssigned:   {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether moving a request from one status to another
// is allowed.
func CanTransition(from, to Status) bool {
	for _, s := range AllowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// HealthSnapshot carries the clinical values a patient attaches to a request.
type HealthSnapshot struct {
	HemoglobinLevel float64 `db:"hemoglobin_level" json:"hemoglobin_level"`
	IronLevel       float64 `db:"iron_level" json:"iron_level"`
	Weight          float64 `db:"weight" json:"weight"`
	BloodType       string  `db:"blood_type" json:"blood_type"`
}

// Request maps to the patient_request table. The core fields (patient,
// kind, priority, region) are immutable after creation; only status and
// assignment move.
type Request struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	PatientID   uuid.UUID       `db:"patient_id" json:"patient_id"`
	DoctorID    *uuid.UUID      `db:"doctor_id" json:"doctor_id,omitempty"`
	Kind        Kind            `db:"kind" json:"kind"`
	Priority    Priority        `db:"priority" json:"priority"`
	Status      Status          `db:"status" json:"status"`
	Region      string          `db:"region" json:"region"`
	Title       string          `db:"title" json:"title"`
	Description string          `db:"description" json:"description"`
	Health      *HealthSnapshot `db:"health" json:"health,omitempty"`
	Notes       *string         `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	AssignedAt  *time.Time      `db:"assigned_at" json:"assigned_at,omitempty"`
	CompletedAt *time.Time      `db:"completed_at" json:"completed_at,omitempty"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

func (k Kind) Valid() bool {
	switch k {
	case KindConsultation, KindBloodRequest, KindHealthAnalysis, KindEmergency:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Validate checks the fields the matching engines depend on. It is called
// before any scoring happens so malformed requests fail fast.
func (r *Request) Validate() error {
	if r.PatientID == uuid.Nil {
		return fmt.Errorf("%w: patient_id is required", ErrInvalidRequest)
	}
	if r.Region == "" {
		return fmt.Errorf("%w: region is required", ErrInvalidRequest)
	}
	if !r.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, r.Kind)
	}
	if !r.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidRequest, r.Priority)
	}
	if r.Kind == KindBloodRequest && (r.Health == nil || r.Health.BloodType == "") {
		return fmt.Errorf("%w: blood_request needs a blood type in the health snapshot", ErrInvalidRequest)
	}
	return nil
}
