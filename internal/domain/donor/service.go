package donor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("donor not found")
	ErrInvalidDonor = errors.New("invalid donor data")

	// ErrNotEligible means a donation could not be recorded because the
	// donor is unavailable or still inside the cooldown window.
	ErrNotEligible = errors.New("donor not eligible to donate")
)

var validBloodTypes = map[string]bool{
	"O-": true, "O+": true, "A-": true, "A+": true,
	"B-": true, "B+": true, "AB-": true, "AB+": true,
}

// ValidBloodType reports whether s is a recognized ABO/Rh blood type.
func ValidBloodType(s string) bool { return validBloodTypes[s] }

const followupInactiveDays = 30

type Service struct {
	repo         Repository
	cooldownDays int
	now          func() time.Time
}

func NewService(repo Repository, cooldownDays int) *Service {
	return &Service{repo: repo, cooldownDays: cooldownDays, now: time.Now}
}

func (s *Service) Register(ctx context.Context, d *Donor) (*Donor, error) {
	if d.FirstName == "" || d.LastName == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidDonor)
	}
	if !ValidBloodType(d.BloodType) {
		return nil, fmt.Errorf("%w: unknown blood type %q", ErrInvalidDonor, d.BloodType)
	}
	if d.Region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrInvalidDonor)
	}
	if d.Tier == "" {
		d.Tier = TierRegular
	}
	if !d.Tier.Valid() {
		return nil, fmt.Errorf("%w: unknown tier %q", ErrInvalidDonor, d.Tier)
	}
	if d.Availability == "" {
		d.Availability = AvailabilityPending
	}
	if !d.Availability.Valid() {
		return nil, fmt.Errorf("%w: unknown availability %q", ErrInvalidDonor, d.Availability)
	}
	if d.ResponseRate < 0 || d.ResponseRate > 100 {
		return nil, fmt.Errorf("%w: response_rate must be between 0 and 100", ErrInvalidDonor)
	}
	if d.CallsToDonations < 0 || d.CallsToDonations > 1 {
		return nil, fmt.Errorf("%w: calls_to_donations must be between 0 and 1", ErrInvalidDonor)
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("register donor: %w", err)
	}
	return d, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Donor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Search(ctx context.Context, f SearchFilter) ([]*Donor, int, error) {
	if f.BloodType != "" && !ValidBloodType(f.BloodType) {
		return nil, 0, fmt.Errorf("%w: unknown blood type %q", ErrInvalidDonor, f.BloodType)
	}
	if f.Tier != "" && !f.Tier.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown tier %q", ErrInvalidDonor, f.Tier)
	}
	if f.Availability != "" && !f.Availability.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown availability %q", ErrInvalidDonor, f.Availability)
	}
	return s.repo.Search(ctx, f)
}

func (s *Service) SetAvailability(ctx context.Context, id uuid.UUID, a Availability) error {
	if !a.Valid() {
		return fmt.Errorf("%w: unknown availability %q", ErrInvalidDonor, a)
	}
	return s.repo.UpdateAvailability(ctx, id, a)
}

// RecordDonation writes the donation and flips the donor to unavailable.
// The repository applies the availability and cooldown condition atomically,
// so two concurrent calls for the same donor cannot both succeed.
func (s *Service) RecordDonation(ctx context.Context, rec *DonationRecord) (*DonationRecord, error) {
	if rec.DonorID == uuid.Nil {
		return nil, fmt.Errorf("%w: donor_id is required", ErrInvalidDonor)
	}
	if rec.Units <= 0 {
		return nil, fmt.Errorf("%w: units must be positive", ErrInvalidDonor)
	}
	if rec.DonatedAt.IsZero() {
		rec.DonatedAt = s.now()
	}
	ok, err := s.repo.RecordDonation(ctx, rec, s.cooldownDays)
	if err != nil {
		return nil, fmt.Errorf("record donation: %w", err)
	}
	if !ok {
		return nil, ErrNotEligible
	}
	return rec, nil
}

func (s *Service) Donations(ctx context.Context, donorID uuid.UUID, limit, offset int) ([]*DonationRecord, int, error) {
	return s.repo.ListDonations(ctx, donorID, limit, offset)
}

func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.repo.Statistics(ctx)
}

func (s *Service) TopDonors(ctx context.Context, limit int) ([]*Donor, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.TopDonors(ctx, limit)
}

func (s *Service) NeedingFollowup(ctx context.Context) ([]*Donor, error) {
	cutoff := s.now().AddDate(0, 0, -followupInactiveDays)
	return s.repo.NeedingFollowup(ctx, cutoff)
}

// PredictAvailability gives coordinators a rough probability that a donor
// would answer a call right now, with the contributing factors spelled out.
func (s *Service) PredictAvailability(ctx context.Context, id uuid.UUID) (*AvailabilityPrediction, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()

	p := float64(d.ResponseRate) / 100 * 0.5
	var factors []string

	if d.LastDonationDate != nil {
		days := int(now.Sub(*d.LastDonationDate).Hours() / 24)
		if days < s.cooldownDays {
			p -= 0.4
			factors = append(factors, fmt.Sprintf("in donation cooldown (%d of %d days)", days, s.cooldownDays))
		} else {
			p += 0.2
			factors = append(factors, "past donation cooldown")
		}
		if days <= 90 {
			p += 0.1
			factors = append(factors, "donated within the last 90 days")
		}
	} else {
		factors = append(factors, "no donation history")
	}

	switch d.Availability {
	case AvailabilityAvailable:
		p += 0.2
		factors = append(factors, "marked available")
	case AvailabilityUnavailable:
		p -= 0.3
		factors = append(factors, "marked unavailable")
	}

	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	confidence := "low"
	switch {
	case d.TotalDonations >= 5:
		confidence = "high"
	case d.TotalDonations >= 2:
		confidence = "medium"
	}

	return &AvailabilityPrediction{
		DonorID:     d.ID,
		Probability: p,
		Confidence:  confidence,
		Factors:     factors,
	}, nil
}
