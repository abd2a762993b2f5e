package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/helplink/helplink/internal/domain/doctor"
	"github.com/helplink/helplink/internal/domain/request"
)

var (
	// ErrInvalidQuery means the match input failed validation before any
	// scoring happened.
	ErrInvalidQuery = errors.New("invalid match query")

	// ErrStaleCandidate means the selected candidate was taken by a
	// concurrent assignment and one recompute did not find a committable
	// alternative.
	ErrStaleCandidate = errors.New("candidate state changed during assignment")
)

// DoctorDirectory is the slice of the doctor repository the assigner needs.
type DoctorDirectory interface {
	ListAvailableByRegion(ctx context.Context, region string) ([]*doctor.Doctor, error)
	ReserveSlot(ctx context.Context, id uuid.UUID) (bool, error)
	ReleaseSlot(ctx context.Context, id uuid.UUID) error
}

// RequestStore is the slice of the request repository the assigner needs.
type RequestStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*request.Request, error)
	MarkAssigned(ctx context.Context, id, doctorID uuid.UUID, at time.Time) (bool, error)
}

// Notifier delivers the assignment event to the chosen doctor. Fire and
// forget: implementations log their own failures and never block or fail
// the assignment.
type Notifier interface {
	RequestAssigned(ctx context.Context, d *doctor.Doctor, req *request.Request)
}

// Assignment is the outcome of a successful assign call.
type Assignment struct {
	RequestID  uuid.UUID   `json:"request_id"`
	DoctorID   uuid.UUID   `json:"doctor_id"`
	DoctorName string      `json:"doctor_name"`
	Region     string      `json:"region"`
	FellBack   bool        `json:"fell_back"`
	Score      ScoreResult `json:"score"`
	AssignedAt time.Time   `json:"assigned_at"`
}

// Assigner picks one doctor for a pending request, searching the request's
// region first and its configured neighbors after.
type Assigner struct {
	doctors   DoctorDirectory
	requests  RequestStore
	notifier  Notifier
	adjacency AdjacencyMap
	weights   Weights
	now       func() time.Time
}

func NewAssigner(doctors DoctorDirectory, requests RequestStore, notifier Notifier, adjacency AdjacencyMap, weights Weights) *Assigner {
	return &Assigner{
		doctors:   doctors,
		requests:  requests,
		notifier:  notifier,
		adjacency: adjacency,
		weights:   weights,
		now:       time.Now,
	}
}

// Assign selects, commits, and announces a doctor for the request. A nil
// Assignment with nil error means no doctor is reachable and the request
// stays pending for manual escalation.
func (a *Assigner) Assign(ctx context.Context, requestID uuid.UUID) (*Assignment, error) {
	req, err := a.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Region == "" {
		return nil, fmt.Errorf("%w: request has no region", ErrInvalidQuery)
	}
	if req.Status != request.StatusPending {
		return nil, fmt.Errorf("%w: request is %s, not pending", ErrInvalidQuery, req.Status)
	}

	for attempt := 0; attempt < 2; attempt++ {
		cand, score, region, err := a.selectCandidate(ctx, req)
		if err != nil {
			return nil, err
		}
		if cand == nil {
			return nil, nil
		}

		ok, err := a.doctors.ReserveSlot(ctx, cand.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		at := a.now()
		ok, err = a.requests.MarkAssigned(ctx, req.ID, cand.ID, at)
		if err != nil {
			a.doctors.ReleaseSlot(ctx, cand.ID)
			return nil, err
		}
		if !ok {
			a.doctors.ReleaseSlot(ctx, cand.ID)
			return nil, ErrStaleCandidate
		}

		a.notifier.RequestAssigned(ctx, cand, req)
		return &Assignment{
			RequestID:  req.ID,
			DoctorID:   cand.ID,
			DoctorName: cand.Name(),
			Region:     region,
			FellBack:   region != req.Region,
			Score:      score,
			AssignedAt: at,
		}, nil
	}
	return nil, ErrStaleCandidate
}

// selectCandidate walks the request's region then each neighbor in order,
// stopping at the first region with a workable pool, and returns that pool's
// top-scored doctor.
func (a *Assigner) selectCandidate(ctx context.Context, req *request.Request) (*doctor.Doctor, ScoreResult, string, error) {
	regions := append([]string{req.Region}, a.adjacency.Neighbors(req.Region)...)
	for _, region := range regions {
		pool, err := a.doctors.ListAvailableByRegion(ctx, region)
		if err != nil {
			return nil, ScoreResult{}, "", err
		}

		byID := make(map[uuid.UUID]*doctor.Doctor, len(pool))
		var results []ScoreResult
		for _, d := range pool {
			if !d.Available || !d.HasCapacity() {
				continue
			}
			byID[d.ID] = d
			results = append(results, a.weights.ScoreDoctor(d, req))
		}
		if len(results) == 0 {
			continue
		}

		sortRanked(results, func(id uuid.UUID) int { return byID[id].ExperienceYears })
		top := results[0]
		return byID[top.CandidateID], top, region, nil
	}
	return nil, ScoreResult{}, "", nil
}
