package donor

import (
	"time"

	"github.com/google/uuid"
)

// Tier classifies how a donor participates in the network. Emergency donors
// take urgent calls, bridge donors are paired with specific patients for
// recurring transfusions, regular donors fill the rest.
type Tier string

const (
	TierEmergency Tier = "emergency"
	TierBridge    Tier = "bridge"
	TierRegular   Tier = "regular"
)

func (t Tier) Valid() bool {
	switch t {
	case TierEmergency, TierBridge, TierRegular:
		return true
	}
	return false
}

type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
	AvailabilityPending     Availability = "pending"
)

func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityUnavailable, AvailabilityPending:
		return true
	}
	return false
}

// Donor maps to the donor table. CallsToDonations is the fraction of calls
// that ended in an actual donation, between 0 and 1.
type Donor struct {
	ID               uuid.UUID    `db:"id" json:"id"`
	FirstName        string       `db:"first_name" json:"first_name"`
	LastName         string       `db:"last_name" json:"last_name"`
	BloodType        string       `db:"blood_type" json:"blood_type"`
	Region           string       `db:"region" json:"region"`
	Tier             Tier         `db:"tier" json:"tier"`
	Availability     Availability `db:"availability" json:"availability"`
	MedicallyCleared bool         `db:"medically_cleared" json:"medically_cleared"`
	Verified         bool         `db:"verified" json:"verified"`
	TotalDonations   int          `db:"total_donations" json:"total_donations"`
	LastDonationDate *time.Time   `db:"last_donation_date" json:"last_donation_date,omitempty"`
	LastActiveAt     *time.Time   `db:"last_active_at" json:"last_active_at,omitempty"`
	ResponseRate     int          `db:"response_rate" json:"response_rate"`
	CallsToDonations float64      `db:"calls_to_donations" json:"calls_to_donations"`
	Phone            string       `db:"phone" json:"phone"`
	Email            string       `db:"email" json:"email"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}

// Name returns the donor's display name.
func (d *Donor) Name() string {
	return d.FirstName + " " + d.LastName
}

// DonationRecord is one completed donation. RequestID links it back to the
// patient request it served, when there was one.
type DonationRecord struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	DonorID   uuid.UUID  `db:"donor_id" json:"donor_id"`
	RequestID *uuid.UUID `db:"request_id" json:"request_id,omitempty"`
	Units     int        `db:"units" json:"units"`
	Location  string     `db:"location" json:"location"`
	DonatedAt time.Time  `db:"donated_at" json:"donated_at"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Statistics summarizes the donor pool for dashboards.
type Statistics struct {
	Total            int            `json:"total"`
	Available        int            `json:"available"`
	Verified         int            `json:"verified"`
	ByBloodType      map[string]int `json:"by_blood_type"`
	ByRegion         map[string]int `json:"by_region"`
	ByTier           map[string]int `json:"by_tier"`
	AvgDonations    float64        `json:"avg_donations"`
	AvgResponseRate float64        `json:"avg_response_rate"`
	TotalDonations  int            `json:"total_donations"`
}

// AvailabilityPrediction estimates whether a donor would answer a call now.
type AvailabilityPrediction struct {
	DonorID     uuid.UUID `json:"donor_id"`
	Probability float64   `json:"probability"`
	Confidence  string    `json:"confidence"`
	Factors     []string  `json:"factors"`
}
