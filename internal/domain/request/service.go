package request

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("request not found")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("request status conflict")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Create validates and stores a new request. Requests always start pending;
// assignment is the matching engine's job, never the caller's.
func (s *Service) Create(ctx context.Context, r *Request) error {
	if err := r.Validate(); err != nil {
		return err
	}
	r.Status = StatusPending
	r.DoctorID = nil
	r.CreatedAt = s.now()
	return s.repo.Create(ctx, r)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Request, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Request, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*Request, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}

// UpdateStatus applies a lifecycle transition after checking it against the
// transition table. A stale read (another caller moved the request first)
// surfaces as ErrConflict rather than silently overwriting.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, to Status) (*Request, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(r.Status, to) {
		return nil, ErrInvalidTransition
	}
	ok, err := s.repo.UpdateStatus(ctx, id, r.Status, to, s.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	return s.repo.GetByID(ctx, id)
}

// Workload reports a doctor's current queue, counted from the start of the
// doctor's local day for the completed-today figure.
func (s *Service) Workload(ctx context.Context, doctorID uuid.UUID) (WorkloadCounts, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return s.repo.CountByDoctorStatus(ctx, doctorID, dayStart)
}
