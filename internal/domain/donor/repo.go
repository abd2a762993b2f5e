package donor

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SearchFilter narrows donor listings. Zero-value fields are ignored.
type SearchFilter struct {
	BloodType    string
	Region       string
	Tier         Tier
	Availability Availability
	VerifiedOnly bool
	Limit        int
	Offset       int
}

type Repository interface {
	Create(ctx context.Context, d *Donor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Donor, error)
	Search(ctx context.Context, f SearchFilter) ([]*Donor, int, error)

	// ListCandidates returns medically cleared, available donors in the
	// region whose blood type is one of the given types, ordered by id for
	// deterministic scoring input.
	ListCandidates(ctx context.Context, bloodTypes []string, region string) ([]*Donor, error)

	UpdateAvailability(ctx context.Context, id uuid.UUID, a Availability) error

	// RecordDonation appends a donation and updates the donor's counters in
	// one transaction. The donor row is only touched while the donor is
	// available and past the cooldown; returns false when that condition
	// fails, leaving everything untouched.
	RecordDonation(ctx context.Context, rec *DonationRecord, cooldownDays int) (bool, error)

	ListDonations(ctx context.Context, donorID uuid.UUID, limit, offset int) ([]*DonationRecord, int, error)
	Statistics(ctx context.Context) (*Statistics, error)
	TopDonors(ctx context.Context, limit int) ([]*Donor, error)

	// NeedingFollowup lists verified donors whose last donation is older
	// than the cutoff, or who never donated despite being registered before
	// it.
	NeedingFollowup(ctx context.Context, cutoff time.Time) ([]*Donor, error)
}
