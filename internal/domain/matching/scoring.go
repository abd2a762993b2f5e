package matching

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/helplink/helplink/internal/domain/doctor"
	"github.com/helplink/helplink/internal/domain/donor"
	"github.com/helplink/helplink/internal/domain/request"
)

// Weights holds every scoring constant. The defaults are tuned for the care
// network's current pool; treat them as configuration, not law.
type Weights struct {
	SpecializationBlood     float64 `json:"specialization_blood"`
	SpecializationConsult   float64 `json:"specialization_consult"`
	SpecializationEmergency float64 `json:"specialization_emergency"`
	ExperiencePerYear       float64 `json:"experience_per_year"`
	ExperienceCap           float64 `json:"experience_cap"`
	LoadCap                 float64 `json:"load_cap"`
	TrainerCritical         float64 `json:"trainer_critical"`
	AvailabilityBonus       float64 `json:"availability_bonus"`

	HistoryPerDonation float64 `json:"history_per_donation"`
	HistoryCap         float64 `json:"history_cap"`
	ResponseCap        float64 `json:"response_cap"`
	ConversionCap      float64 `json:"conversion_cap"`
	TierEmergency      float64 `json:"tier_emergency"`
	TierBridge         float64 `json:"tier_bridge"`
	RecencyBonus       float64 `json:"recency_bonus"`
	RecencyWindowDays  int     `json:"recency_window_days"`
}

func DefaultWeights() Weights {
	return Weights{
		SpecializationBlood:     50,
		SpecializationConsult:   40,
		SpecializationEmergency: 60,
		ExperiencePerYear:       2,
		ExperienceCap:           30,
		LoadCap:                 20,
		TrainerCritical:         30,
		AvailabilityBonus:       10,

		HistoryPerDonation: 2,
		HistoryCap:         40,
		ResponseCap:        30,
		ConversionCap:      20,
		TierEmergency:      10,
		TierBridge:         5,
		RecencyBonus:       5,
		RecencyWindowDays:  7,
	}
}

// FactorScore is one named, capped contribution to a candidate's score.
type FactorScore struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Cap    float64 `json:"cap"`
}

// ScoreResult is computed fresh on every matching call and never persisted.
type ScoreResult struct {
	CandidateID uuid.UUID     `json:"candidate_id"`
	Total       float64       `json:"total"`
	Factors     []FactorScore `json:"factors"`
}

type doctorFactor struct {
	name string
	cap  float64
	fn   func(d *doctor.Doctor, req *request.Request) float64
}

func (w Weights) doctorFactors() []doctorFactor {
	return []doctorFactor{
		{
			name: "specialization",
			cap:  w.SpecializationEmergency,
			fn: func(d *doctor.Doctor, req *request.Request) float64 {
				switch {
				case req.Kind == request.KindEmergency && strings.EqualFold(d.Specialization, "Emergency"):
					return w.SpecializationEmergency
				case req.Kind == request.KindBloodRequest && strings.EqualFold(d.Specialization, "Hematology"):
					return w.SpecializationBlood
				case req.Kind == request.KindConsultation && strings.EqualFold(d.Specialization, "Hematology"):
					return w.SpecializationConsult
				}
				return 0
			},
		},
		{
			name: "experience",
			cap:  w.ExperienceCap,
			fn: func(d *doctor.Doctor, _ *request.Request) float64 {
				return w.ExperiencePerYear * float64(d.ExperienceYears)
			},
		},
		{
			name: "load",
			cap:  w.LoadCap,
			fn: func(d *doctor.Doctor, _ *request.Request) float64 {
				if d.MaxCapacity <= 0 {
					return 0
				}
				return (1 - float64(d.CurrentLoad)/float64(d.MaxCapacity)) * w.LoadCap
			},
		},
		{
			name: "trainer",
			cap:  w.TrainerCritical,
			fn: func(d *doctor.Doctor, req *request.Request) float64 {
				if d.Trainer && req.Priority == request.PriorityCritical {
					return w.TrainerCritical
				}
				return 0
			},
		},
		{
			name: "availability",
			cap:  w.AvailabilityBonus,
			fn: func(d *doctor.Doctor, _ *request.Request) float64 {
				if d.Available {
					return w.AvailabilityBonus
				}
				return 0
			},
		},
	}
}

// ScoreDoctor sums every factor's clamped contribution.
func (w Weights) ScoreDoctor(d *doctor.Doctor, req *request.Request) ScoreResult {
	res := ScoreResult{CandidateID: d.ID}
	for _, f := range w.doctorFactors() {
		pts := clamp(f.fn(d, req), f.cap)
		res.Factors = append(res.Factors, FactorScore{Name: f.name, Points: pts, Cap: f.cap})
		res.Total += pts
	}
	return res
}

type donorFactor struct {
	name string
	cap  float64
	fn   func(d *donor.Donor, urgency request.Priority, now time.Time) float64
}

func (w Weights) donorFactors() []donorFactor {
	return []donorFactor{
		{
			name: "history",
			cap:  w.HistoryCap,
			fn: func(d *donor.Donor, _ request.Priority, _ time.Time) float64 {
				return w.HistoryPerDonation * float64(d.TotalDonations)
			},
		},
		{
			name: "response",
			cap:  w.ResponseCap,
			fn: func(d *donor.Donor, _ request.Priority, _ time.Time) float64 {
				return float64(d.ResponseRate) / 100 * w.ResponseCap
			},
		},
		{
			name: "conversion",
			cap:  w.ConversionCap,
			fn: func(d *donor.Donor, _ request.Priority, _ time.Time) float64 {
				return d.CallsToDonations * w.ConversionCap
			},
		},
		{
			name: "tier",
			cap:  w.TierEmergency,
			fn: func(d *donor.Donor, urgency request.Priority, _ time.Time) float64 {
				urgent := urgency == request.PriorityCritical || urgency == request.PriorityHigh
				switch d.Tier {
				case donor.TierEmergency:
					if urgent {
						return w.TierEmergency
					}
					return w.TierBridge
				case donor.TierBridge:
					return w.TierBridge
				}
				return 0
			},
		},
		{
			name: "recency",
			cap:  w.RecencyBonus,
			fn: func(d *donor.Donor, _ request.Priority, now time.Time) float64 {
				if d.LastActiveAt != nil && daysBetween(now, *d.LastActiveAt) <= w.RecencyWindowDays {
					return w.RecencyBonus
				}
				return 0
			},
		},
	}
}

// ScoreDonor sums every factor's clamped contribution.
func (w Weights) ScoreDonor(d *donor.Donor, urgency request.Priority, now time.Time) ScoreResult {
	res := ScoreResult{CandidateID: d.ID}
	for _, f := range w.donorFactors() {
		pts := clamp(f.fn(d, urgency, now), f.cap)
		res.Factors = append(res.Factors, FactorScore{Name: f.name, Points: pts, Cap: f.cap})
		res.Total += pts
	}
	return res
}

func clamp(v, limit float64) float64 {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}

// sortRanked orders candidates by score descending, then historical volume
// descending, then id ascending so equal pools always rank identically.
func sortRanked(results []ScoreResult, volume func(id uuid.UUID) int) {
	sort.SliceStable(results, func(i, j int) bool {
		return rankLess(results[i], results[j], volume)
	})
}

// rankLess orders two scored candidates: total desc, then volume desc, then
// ID asc so repeated runs over the same pool agree.
func rankLess(a, b ScoreResult, volume func(id uuid.UUID) int) bool {
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	va, vb := volume(a.CandidateID), volume(b.CandidateID)
	if va != vb {
		return va > vb
	}
	return a.CandidateID.String() < b.CandidateID.String()
}
