package doctor

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	List(ctx context.Context, limit, offset int) ([]*Doctor, int, error)

	// ListAvailableByRegion returns available doctors in a region with spare
	// capacity, ordered by id for deterministic scoring input.
	ListAvailableByRegion(ctx context.Context, region string) ([]*Doctor, error)

	UpdateAvailability(ctx context.Context, id uuid.UUID, available bool) error

	// ReserveSlot increments the doctor's load only while capacity remains,
	// in a single conditional statement. Returns false when the doctor is
	// full or unavailable — the caller must then pick someone else.
	ReserveSlot(ctx context.Context, id uuid.UUID) (bool, error)

	// ReleaseSlot decrements the load when an assignment completes or is
	// cancelled. Never drops below zero.
	ReleaseSlot(ctx context.Context, id uuid.UUID) error
}
