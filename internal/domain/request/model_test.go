package request

import (
	"testing"

	"github.com/google/uuid"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusAssigned, true},
		{StatusPending, StatusCancelled, true},
		{StatusAssigned, StatusInProgress, true},
		{StatusAssigned, StatusCancelled, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},

		// No path back to pending, ever.
		{StatusAssigned, StatusPending, false},
		{StatusInProgress, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusPending, false},

		// Terminal states go nowhere.
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusAssigned, false},

		// No skipping ahead.
		{StatusPending, StatusInProgress, false},
		{StatusPending, StatusCompleted, false},
		{StatusAssigned, StatusCompleted, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRequest_Validate(t *testing.T) {
	valid := func() *Request {
		return &Request{
			PatientID: uuid.New(),
			Kind:      KindConsultation,
			Priority:  PriorityMedium,
			Region:    "Maharashtra",
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	r := valid()
	r.PatientID = uuid.Nil
	if err := r.Validate(); err == nil {
		t.Error("expected error for missing patient_id")
	}

	r = valid()
	r.Region = ""
	if err := r.Validate(); err == nil {
		t.Error("expected error for missing region")
	}

	r = valid()
	r.Kind = "surgery"
	if err := r.Validate(); err == nil {
		t.Error("expected error for unknown kind")
	}

	r = valid()
	r.Priority = "urgent"
	if err := r.Validate(); err == nil {
		t.Error("expected error for unknown priority")
	}

	r = valid()
	r.Kind = KindBloodRequest
	if err := r.Validate(); err == nil {
		t.Error("expected error for blood request without blood type")
	}

	r.Health = &HealthSnapshot{BloodType: "O+"}
	if err := r.Validate(); err != nil {
		t.Errorf("blood request with blood type rejected: %v", err)
	}
}
