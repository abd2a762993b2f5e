package matching

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/helplink/helplink/internal/domain/donor"
	"github.com/helplink/helplink/internal/domain/request"
)

// DonorPool is the slice of the donor repository the matcher needs. The
// repository returns only available, medically cleared donors; the cooldown
// filter is applied here because it depends on matcher configuration.
type DonorPool interface {
	ListCandidates(ctx context.Context, bloodTypes []string, region string) ([]*donor.Donor, error)
}

// DonorMatch pairs a donor with the score that ranked them.
type DonorMatch struct {
	Donor *donor.Donor `json:"donor"`
	Score ScoreResult  `json:"score"`
}

// Matcher produces ranked donor lists for a blood requirement. Matching is
// read-only; recording an actual donation is the donor service's job.
type Matcher struct {
	pool         DonorPool
	weights      Weights
	cooldownDays int
	listCap      int
	now          func() time.Time
}

func NewMatcher(pool DonorPool, weights Weights, cooldownDays, listCap int) *Matcher {
	return &Matcher{
		pool:         pool,
		weights:      weights,
		cooldownDays: cooldownDays,
		listCap:      listCap,
		now:          time.Now,
	}
}

// FindMatches filters by compatibility, exact region, and cooldown, scores
// the survivors, and returns at most min(listCap, units*3) donors in rank
// order. On critical and high urgency, emergency-tier donors rank ahead of
// everyone else regardless of score. An empty list is a normal outcome, not
// an error. Every call re-queries live state.
func (m *Matcher) FindMatches(ctx context.Context, bloodType, region string, urgency request.Priority, units int) ([]*DonorMatch, error) {
	if !KnownBloodType(bloodType) {
		return nil, fmt.Errorf("%w: unknown blood type %q", ErrInvalidQuery, bloodType)
	}
	if region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrInvalidQuery)
	}
	if units <= 0 {
		return nil, fmt.Errorf("%w: units must be positive", ErrInvalidQuery)
	}
	if urgency != "" && !urgency.Valid() {
		return nil, fmt.Errorf("%w: unknown urgency %q", ErrInvalidQuery, urgency)
	}

	pool, err := m.pool.ListCandidates(ctx, CompatibleDonorTypes(bloodType), region)
	if err != nil {
		return nil, err
	}

	now := m.now()
	byID := make(map[uuid.UUID]*donor.Donor, len(pool))
	var results []ScoreResult
	for _, d := range pool {
		if !IsEligible(d.LastDonationDate, m.cooldownDays, now) {
			continue
		}
		byID[d.ID] = d
		results = append(results, m.weights.ScoreDonor(d, urgency, now))
	}

	volume := func(id uuid.UUID) int { return byID[id].TotalDonations }
	if urgency == request.PriorityCritical || urgency == request.PriorityHigh {
		// Emergency-tier donors outrank everyone else on urgent requests;
		// score only orders within each group.
		sort.SliceStable(results, func(i, j int) bool {
			ei := byID[results[i].CandidateID].Tier == donor.TierEmergency
			ej := byID[results[j].CandidateID].Tier == donor.TierEmergency
			if ei != ej {
				return ei
			}
			return rankLess(results[i], results[j], volume)
		})
	} else {
		sortRanked(results, volume)
	}

	limit := units * 3
	if limit > m.listCap {
		limit = m.listCap
	}
	if len(results) > limit {
		results = results[:limit]
	}

	matches := make([]*DonorMatch, 0, len(results))
	for _, res := range results {
		matches = append(matches, &DonorMatch{Donor: byID[res.CandidateID], Score: res})
	}
	return matches, nil
}
