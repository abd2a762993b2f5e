package request

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	List(ctx context.Context, limit, offset int) ([]*Request, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Request, int, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Request, int, error)

	// UpdateStatus moves a request from one status to another, stamping
	// assigned_at/completed_at as appropriate. It is conditional on the
	// current status so concurrent transitions cannot clobber each other;
	// the bool result reports whether the row was actually updated.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) (bool, error)

	// MarkAssigned is the commit step of doctor assignment: it records the
	// doctor and flips pending to assigned in one statement. Returns false
	// when the request was no longer pending.
	MarkAssigned(ctx context.Context, id uuid.UUID, doctorID uuid.UUID, at time.Time) (bool, error)

	// CountByDoctorStatus returns per-status counts plus the number of
	// requests completed since the given day start, for workload reporting.
	CountByDoctorStatus(ctx context.Context, doctorID uuid.UUID, dayStart time.Time) (WorkloadCounts, error)
}

// WorkloadCounts aggregates a doctor's request queue.
type WorkloadCounts struct {
	Total          int `json:"total"`
	Pending        int `json:"pending"`
	Assigned       int `json:"assigned"`
	InProgress     int `json:"in_progress"`
	CompletedToday int `json:"completed_today"`
}
