package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/helplink/helplink/internal/platform/auth"
)

type captureRecorder struct {
	entries []AuditEntry
	err     error
}

func (r *captureRecorder) RecordAccess(entry AuditEntry) error {
	r.entries = append(r.entries, entry)
	return r.err
}

func auditRequest(t *testing.T, method, target string, rec *captureRecorder, mutate ...func(*http.Request)) AuditEntry {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(req.Context(), auth.UserIDKey, "user-1")
	ctx = context.WithValue(ctx, auth.UserRolesKey, []string{"coordinator"})
	req = req.WithContext(ctx)
	for _, m := range mutate {
		m(req)
	}
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)
	c.Set("request_id", "req-abc")

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	mw := Audit(zerolog.Nop(), rec)
	if err := mw(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(rec.entries))
	}
	return rec.entries[0]
}

func TestAudit_DonorRead(t *testing.T) {
	rec := &captureRecorder{}
	entry := auditRequest(t, http.MethodGet, "/api/v1/donors/d-123", rec)

	if entry.UserID != "user-1" {
		t.Errorf("expected user-1, got %s", entry.UserID)
	}
	if entry.Resource != "donors" {
		t.Errorf("expected resource donors, got %s", entry.Resource)
	}
	if entry.Action != "read" {
		t.Errorf("expected action read, got %s", entry.Action)
	}
	if entry.RequestID != "req-abc" {
		t.Errorf("expected request id req-abc, got %s", entry.RequestID)
	}
	if entry.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", entry.StatusCode)
	}
}

func TestAudit_RequestAssignCreate(t *testing.T) {
	rec := &captureRecorder{}
	entry := auditRequest(t, http.MethodPost, "/api/v1/requests/r-1/assign", rec)

	if entry.Resource != "requests" {
		t.Errorf("expected resource requests, got %s", entry.Resource)
	}
	if entry.Action != "create" {
		t.Errorf("expected action create, got %s", entry.Action)
	}
	if len(entry.UserRoles) != 1 || entry.UserRoles[0] != "coordinator" {
		t.Errorf("expected roles [coordinator], got %v", entry.UserRoles)
	}
}

func TestAudit_SkipsNonAPIPaths(t *testing.T) {
	rec := &captureRecorder{}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	mw := Audit(zerolog.Nop(), rec)
	if err := mw(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.entries) != 0 {
		t.Errorf("expected no audit entries for /health, got %d", len(rec.entries))
	}
}

func TestAudit_RecorderError_DoesNotBreakRequest(t *testing.T) {
	rec := &captureRecorder{err: errors.New("storage down")}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/donors", nil)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	mw := Audit(zerolog.Nop(), rec)
	if err := mw(handler)(c); err != nil {
		t.Fatalf("request should succeed despite recorder failure: %v", err)
	}
	if res.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", res.Code)
	}
}

func TestAudit_NoRecorder(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors", nil)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	mw := Audit(zerolog.Nop())
	if err := mw(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestActionFromMethod(t *testing.T) {
	tests := []struct {
		method string
		want   string
	}{
		{http.MethodGet, "read"},
		{http.MethodHead, "read"},
		{http.MethodPost, "create"},
		{http.MethodPut, "update"},
		{http.MethodPatch, "update"},
		{http.MethodDelete, "delete"},
		{"OPTIONS", "read"},
	}

	for _, tt := range tests {
		if got := actionFromMethod(tt.method); got != tt.want {
			t.Errorf("actionFromMethod(%s) = %s, want %s", tt.method, got, tt.want)
		}
	}
}

func TestResourceFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/donors", "donors"},
		{"/api/v1/donors/d-1/donations", "donors"},
		{"/api/v1/requests/r-1/assign", "requests"},
		{"/api/v1/", "unknown"},
	}

	for _, tt := range tests {
		if got := resourceFromPath(tt.path); got != tt.want {
			t.Errorf("resourceFromPath(%s) = %s, want %s", tt.path, got, tt.want)
		}
	}
}
