package main

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/helplink/helplink/internal/domain/doctor"
	"github.com/helplink/helplink/internal/domain/request"
	"github.com/helplink/helplink/internal/platform/notification"
)

func TestTemplateNotifier_SendsAssignmentEmail(t *testing.T) {
	email := &notification.MockEmailSender{}
	sms := &notification.MockSMSSender{}
	mgr := notification.NewManager(email, sms, notification.NewTemplateEngine(), zerolog.Nop())

	n := &templateNotifier{mgr: mgr}

	reqID := uuid.New()
	d := &doctor.Doctor{
		ID:        uuid.New(),
		FirstName: "Asha",
		LastName:  "Kulkarni",
		Email:     "asha@example.org",
	}
	req := &request.Request{
		ID:       reqID,
		Kind:     request.KindBloodRequest,
		Priority: request.PriorityHigh,
		Region:   "Maharashtra",
	}

	n.RequestAssigned(context.Background(), d, req)

	calls := email.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 email, got %d", len(calls))
	}
	if calls[0].To != "asha@example.org" {
		t.Errorf("expected recipient asha@example.org, got %s", calls[0].To)
	}
	if !strings.Contains(calls[0].Body, "Asha Kulkarni") {
		t.Errorf("expected body to name the doctor, got %q", calls[0].Body)
	}
	if !strings.Contains(calls[0].Body, reqID.String()) {
		t.Errorf("expected body to carry the request id, got %q", calls[0].Body)
	}
	if !strings.Contains(calls[0].Body, "high") {
		t.Errorf("expected body to carry the priority, got %q", calls[0].Body)
	}
}

func TestTemplateNotifier_DeliveryFailureDoesNotPanic(t *testing.T) {
	email := &notification.MockEmailSender{ShouldFail: true, FailError: "smtp down"}
	sms := &notification.MockSMSSender{}
	mgr := notification.NewManager(email, sms, notification.NewTemplateEngine(), zerolog.Nop())

	n := &templateNotifier{mgr: mgr}

	d := &doctor.Doctor{ID: uuid.New(), FirstName: "Ravi", LastName: "Iyer", Email: "ravi@example.org"}
	req := &request.Request{ID: uuid.New(), Kind: request.KindConsultation, Priority: request.PriorityLow, Region: "Karnataka"}

	n.RequestAssigned(context.Background(), d, req)

	if len(email.Calls()) != 1 {
		t.Fatalf("expected the send to be attempted once, got %d", len(email.Calls()))
	}
}
