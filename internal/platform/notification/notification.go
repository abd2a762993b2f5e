// Package notification delivers email/SMS messages for care-network events:
// request assignments, donor call-outs, donation confirmations, and follow-up
// nudges. Templates are rendered with simple {{key}} substitution; sent and
// failed messages are kept in memory for retry and inspection.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Channel is the delivery mechanism for a notification.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Status values for a notification's lifecycle.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Notification is a single outbound message.
type Notification struct {
	ID           string            `json:"id"`
	Channel      Channel           `json:"channel"`
	Recipient    string            `json:"recipient"`
	Subject      string            `json:"subject,omitempty"`
	Body         string            `json:"body"`
	TemplateID   string            `json:"template_id,omitempty"`
	TemplateData map[string]string `json:"template_data,omitempty"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// EmailSender sends email messages.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// SMSSender sends SMS messages.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// Template is a reusable message with {{key}} placeholders.
type Template struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Subject string  `json:"subject"`
	Body    string  `json:"body"`
	Channel Channel `json:"channel"`
}

// TemplateEngine stores templates and renders them with data maps.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine returns an engine with the care-network templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "request-assigned",
			Name:    "Request Assigned",
			Subject: "New {{kind}} request assigned to you",
			Body:    "Dr. {{doctor_name}}, a {{priority}} priority {{kind}} request from region {{region}} has been assigned to you. Request ID: {{request_id}}.",
			Channel: ChannelEmail,
		},
		{
			ID:      "donor-needed",
			Name:    "Donor Needed",
			Subject: "Blood donation needed: {{blood_type}} in {{region}}",
			Body:    "{{donor_name}}, a patient in {{region}} urgently needs {{blood_type}} blood ({{units}} units). Please confirm your availability.",
			Channel: ChannelSMS,
		},
		{
			ID:      "donation-recorded",
			Name:    "Donation Recorded",
			Subject: "Thank you for your donation",
			Body:    "{{donor_name}}, your donation of {{units}} unit(s) on {{date}} has been recorded. You will be eligible to donate again on {{next_eligible}}.",
			Channel: ChannelEmail,
		},
		{
			ID:      "donor-followup",
			Name:    "Donor Follow-up",
			Subject: "We miss you at the care network",
			Body:    "{{donor_name}}, it has been a while since your last donation. Patients in {{region}} still depend on {{blood_type}} donors like you.",
			Channel: ChannelEmail,
		},
		{
			ID:      "request-completed",
			Name:    "Request Completed",
			Subject: "Your care request is complete",
			Body:    "Your {{kind}} request has been completed by Dr. {{doctor_name}}. Request ID: {{request_id}}.",
			Channel: ChannelEmail,
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render substitutes {{key}} placeholders in the template with values from
// data. Placeholders without a matching key are left untouched.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (subject, body string, channel Channel, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", "", fmt.Errorf("template %q not found", templateID)
	}

	subject = t.Subject
	body = t.Body
	for k, v := range data {
		placeholder := "{{" + k + "}}"
		subject = strings.ReplaceAll(subject, placeholder, v)
		body = strings.ReplaceAll(body, placeholder, v)
	}
	return subject, body, t.Channel, nil
}

// LogEmailSender writes outgoing email to the log instead of a provider.
// Used until an SMTP or transactional email integration is configured.
type LogEmailSender struct {
	Logger zerolog.Logger
}

func (s *LogEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.Logger.Info().
		Str("channel", "email").
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("outgoing notification")
	return nil
}

// LogSMSSender writes outgoing SMS to the log instead of a gateway.
type LogSMSSender struct {
	Logger zerolog.Logger
}

func (s *LogSMSSender) SendSMS(_ context.Context, to, body string) error {
	s.Logger.Info().
		Str("channel", "sms").
		Str("to", to).
		Str("body", body).
		Msg("outgoing notification")
	return nil
}

// EmailCall records one SendEmail invocation.
type EmailCall struct {
	To      string
	Subject string
	Body    string
}

// MockEmailSender records calls instead of delivering.
type MockEmailSender struct {
	mu         sync.Mutex
	calls      []EmailCall
	ShouldFail bool
	FailError  string
}

func (m *MockEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, EmailCall{To: to, Subject: subject, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of the recorded email calls.
func (m *MockEmailSender) Calls() []EmailCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EmailCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// SMSCall records one SendSMS invocation.
type SMSCall struct {
	To   string
	Body string
}

// MockSMSSender records calls instead of delivering.
type MockSMSSender struct {
	mu         sync.Mutex
	calls      []SMSCall
	ShouldFail bool
	FailError  string
}

func (m *MockSMSSender) SendSMS(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SMSCall{To: to, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of the recorded SMS calls.
func (m *MockSMSSender) Calls() []SMSCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SMSCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Manager sends, stores, and retries notifications. Failures are logged and
// kept for retry; they never propagate to the caller of a matching flow.
type Manager struct {
	emailSender EmailSender
	smsSender   SMSSender
	templates   *TemplateEngine
	logger      zerolog.Logger

	mu            sync.RWMutex
	notifications map[string]*Notification
}

func NewManager(email EmailSender, sms SMSSender, tpl *TemplateEngine, logger zerolog.Logger) *Manager {
	return &Manager{
		emailSender:   email,
		smsSender:     sms,
		templates:     tpl,
		logger:        logger,
		notifications: make(map[string]*Notification),
	}
}

// Send dispatches the notification through its channel and records the
// outcome.
func (m *Manager) Send(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	n.CreatedAt = time.Now().UTC()
	n.Status = StatusPending

	sendErr := m.deliver(ctx, n)
	if sendErr != nil {
		n.Status = StatusFailed
		n.Error = sendErr.Error()
		m.logger.Warn().
			Str("notification_id", n.ID).
			Str("channel", string(n.Channel)).
			Str("recipient", n.Recipient).
			Err(sendErr).
			Msg("notification delivery failed")
	} else {
		n.Status = StatusSent
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
	}

	m.mu.Lock()
	m.notifications[n.ID] = n
	m.mu.Unlock()

	return sendErr
}

func (m *Manager) deliver(ctx context.Context, n *Notification) error {
	switch n.Channel {
	case ChannelEmail:
		return m.emailSender.SendEmail(ctx, n.Recipient, n.Subject, n.Body)
	case ChannelSMS:
		return m.smsSender.SendSMS(ctx, n.Recipient, n.Body)
	default:
		return fmt.Errorf("unsupported channel: %s", n.Channel)
	}
}

// SendFromTemplate renders a registered template and sends the result.
func (m *Manager) SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*Notification, error) {
	subject, body, channel, err := m.templates.Render(templateID, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	n := &Notification{
		Channel:      channel,
		Recipient:    recipient,
		Subject:      subject,
		Body:         body,
		TemplateID:   templateID,
		TemplateData: data,
	}
	if err := m.Send(ctx, n); err != nil {
		return n, err
	}
	return n, nil
}

// Get retrieves a notification by id.
func (m *Manager) Get(_ context.Context, id string) (*Notification, error) {
	m.mu.RLock()
	n, ok := m.notifications[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("notification %q not found", id)
	}
	return n, nil
}

// ListByRecipient returns up to limit notifications for a recipient.
func (m *Manager) ListByRecipient(_ context.Context, recipient string, limit int) ([]*Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Notification
	for _, n := range m.notifications {
		if n.Recipient == recipient {
			result = append(result, n)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

// Retry re-sends a failed notification.
func (m *Manager) Retry(ctx context.Context, id string) error {
	m.mu.RLock()
	n, ok := m.notifications[id]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("notification %q not found", id)
	}
	if n.Status != StatusFailed {
		return fmt.Errorf("notification %q is %s, only failed notifications can be retried", id, n.Status)
	}

	sendErr := m.deliver(ctx, n)

	m.mu.Lock()
	if sendErr != nil {
		n.Status = StatusFailed
		n.Error = sendErr.Error()
	} else {
		n.Status = StatusSent
		sentAt := time.Now().UTC()
		n.SentAt = &sentAt
		n.Error = ""
	}
	m.mu.Unlock()

	return sendErr
}

// Stats returns notification counts by status.
func (m *Manager) Stats(_ context.Context) map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[string]int)
	for _, n := range m.notifications {
		stats[n.Status]++
	}
	return stats
}

// Handler exposes notification operations over HTTP.
type Handler struct {
	manager *Manager
}

func NewHandler(mgr *Manager) *Handler {
	return &Handler{manager: mgr}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/notifications/send", h.HandleSend)
	g.POST("/notifications/send-template", h.HandleSendTemplate)
	g.GET("/notifications/stats", h.HandleStats)
	g.GET("/notifications/:id", h.HandleGet)
	g.GET("/notifications", h.HandleList)
	g.POST("/notifications/:id/retry", h.HandleRetry)
}

type sendRequest struct {
	Channel   Channel `json:"channel"`
	Recipient string  `json:"recipient"`
	Subject   string  `json:"subject"`
	Body      string  `json:"body"`
}

func (h *Handler) HandleSend(c echo.Context) error {
	var req sendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	n := &Notification{
		Channel:   req.Channel,
		Recipient: req.Recipient,
		Subject:   req.Subject,
		Body:      req.Body,
	}

	// The notification is returned even on failure so the caller sees the
	// id and error and can retry.
	h.manager.Send(c.Request().Context(), n)
	return c.JSON(http.StatusCreated, n)
}

type sendTemplateRequest struct {
	TemplateID string            `json:"template_id"`
	Recipient  string            `json:"recipient"`
	Data       map[string]string `json:"data"`
}

func (h *Handler) HandleSendTemplate(c echo.Context) error {
	var req sendTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	n, err := h.manager.SendFromTemplate(c.Request().Context(), req.TemplateID, req.Data, req.Recipient)
	if err != nil && n == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, n)
}

func (h *Handler) HandleGet(c echo.Context) error {
	n, err := h.manager.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) HandleList(c echo.Context) error {
	recipient := c.QueryParam("recipient")
	if recipient == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "recipient query parameter is required"})
	}

	list, err := h.manager.ListByRecipient(c.Request().Context(), recipient, 100)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) HandleRetry(c echo.Context) error {
	id := c.Param("id")
	if err := h.manager.Retry(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	n, _ := h.manager.Get(c.Request().Context(), id)
	return c.JSON(http.StatusOK, n)
}

func (h *Handler) HandleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.manager.Stats(c.Request().Context()))
}
