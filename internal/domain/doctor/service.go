package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("doctor not found")
	ErrInvalidDoctor = errors.New("invalid doctor data")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, d *Doctor) (*Doctor, error) {
	if d.FirstName == "" || d.LastName == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidDoctor)
	}
	if d.Region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrInvalidDoctor)
	}
	if d.MaxCapacity <= 0 {
		return nil, fmt.Errorf("%w: max_capacity must be positive", ErrInvalidDoctor)
	}
	if d.ResponseRate < 0 || d.ResponseRate > 100 {
		return nil, fmt.Errorf("%w: response_rate must be between 0 and 100", ErrInvalidDoctor)
	}
	d.CurrentLoad = 0
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// AvailableInRegion lists doctors that can accept work in the region. The
// assignment flow consumes this through its own directory interface; the
// handler exposes it for dashboards.
func (s *Service) AvailableInRegion(ctx context.Context, region string) ([]*Doctor, error) {
	if region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrInvalidDoctor)
	}
	return s.repo.ListAvailableByRegion(ctx, region)
}

func (s *Service) SetAvailability(ctx context.Context, id uuid.UUID, available bool) error {
	return s.repo.UpdateAvailability(ctx, id, available)
}
