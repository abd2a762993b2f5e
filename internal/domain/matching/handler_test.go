package matching

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/helplink/helplink/internal/domain/doctor"
	"github.com/helplink/helplink/internal/domain/donor"
	"github.com/helplink/helplink/internal/domain/request"
)

func newHandlerFixture(dir *fakeDirectory, store *fakeRequestStore, donors []*donor.Donor) *Handler {
	a, _ := newAssignerFixture(dir, store)
	m := newMatcherFixture(&fakePool{donors: donors})
	return NewHandler(a, m)
}

func assignContext(e *echo.Echo, id string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/requests/"+id+"/assign", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/requests/:id/assign")
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c, rec
}

func TestHandlerAssignSuccess(t *testing.T) {
	d := regionDoctor("Maharashtra", 0, 10)
	dir := &fakeDirectory{doctors: []*doctor.Doctor{d}}
	r := pendingRequest("Maharashtra")
	store := &fakeRequestStore{requests: map[uuid.UUID]*request.Request{r.ID: r}}
	h := newHandlerFixture(dir, store, nil)

	c, rec := assignContext(echo.New(), r.ID.String())
	if err := h.Assign(c); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Assigned   bool       `json:"assigned"`
		Assignment Assignment `json:"assignment"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.Assigned || body.Assignment.DoctorID != d.ID {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestHandlerAssignNoDoctorLeavesPending(t *testing.T) {
	dir := &fakeDirectory{}
	r := pendingRequest("Maharashtra")
	store := &fakeRequestStore{requests: map[uuid.UUID]*request.Request{r.ID: r}}
	h := newHandlerFixture(dir, store, nil)

	c, rec := assignContext(echo.New(), r.ID.String())
	if err := h.Assign(c); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("an empty pool is not an error, status = %d", rec.Code)
	}
	var body struct {
		Assigned bool `json:"assigned"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Assigned {
		t.Error("expected assigned=false")
	}
	if r.Status != request.StatusPending {
		t.Errorf("request must stay pending, got %s", r.Status)
	}
}

func TestHandlerAssignErrorMapping(t *testing.T) {
	d := regionDoctor("Maharashtra", 0, 10)
	r := pendingRequest("Maharashtra")

	t.Run("bad id is 400", func(t *testing.T) {
		h := newHandlerFixture(&fakeDirectory{}, &fakeRequestStore{}, nil)
		c, _ := assignContext(echo.New(), "not-a-uuid")
		err := h.Assign(c)
		assertHTTPStatus(t, err, http.StatusBadRequest)
	})

	t.Run("unknown request is 404", func(t *testing.T) {
		h := newHandlerFixture(&fakeDirectory{}, &fakeRequestStore{requests: map[uuid.UUID]*request.Request{}}, nil)
		c, _ := assignContext(echo.New(), uuid.New().String())
		err := h.Assign(c)
		assertHTTPStatus(t, err, http.StatusNotFound)
	})

	t.Run("non-pending request is 400", func(t *testing.T) {
		done := pendingRequest("Maharashtra")
		done.Status = request.StatusCompleted
		store := &fakeRequestStore{requests: map[uuid.UUID]*request.Request{done.ID: done}}
		h := newHandlerFixture(&fakeDirectory{doctors: []*doctor.Doctor{d}}, store, nil)
		c, _ := assignContext(echo.New(), done.ID.String())
		err := h.Assign(c)
		assertHTTPStatus(t, err, http.StatusBadRequest)
	})

	t.Run("exhausted retry is 409", func(t *testing.T) {
		dir := &fakeDirectory{
			doctors:       []*doctor.Doctor{d},
			reserveDenied: map[uuid.UUID]int{d.ID: 2},
		}
		store := &fakeRequestStore{requests: map[uuid.UUID]*request.Request{r.ID: r}}
		h := newHandlerFixture(dir, store, nil)
		c, _ := assignContext(echo.New(), r.ID.String())
		err := h.Assign(c)
		assertHTTPStatus(t, err, http.StatusConflict)
	})
}

func TestHandlerFindDonors(t *testing.T) {
	d := poolDonor("O+", "Karnataka")
	h := newHandlerFixture(&fakeDirectory{}, &fakeRequestStore{}, []*donor.Donor{d})

	e := echo.New()
	q := url.Values{"blood_type": {"O+"}, "region": {"Karnataka"}, "urgency": {"high"}, "units": {"2"}}
	req := httptest.NewRequest(http.MethodGet, "/matches/donors?"+q.Encode(), nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.FindDonors(c); err != nil {
		t.Fatalf("FindDonors: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Count   int           `json:"count"`
		Matches []*DonorMatch `json:"matches"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Count != 1 || len(body.Matches) != 1 {
		t.Errorf("expected one match, got %+v", body)
	}
}

func TestHandlerFindDonorsInvalidQuery(t *testing.T) {
	h := newHandlerFixture(&fakeDirectory{}, &fakeRequestStore{}, nil)

	cases := []struct {
		name  string
		query url.Values
	}{
		{"unknown blood type", url.Values{"blood_type": {"C+"}, "region": {"Karnataka"}}},
		{"missing region", url.Values{"blood_type": {"O+"}}},
		{"bad units", url.Values{"blood_type": {"O+"}, "region": {"Karnataka"}, "units": {"abc"}}},
		{"bad urgency", url.Values{"blood_type": {"O+"}, "region": {"Karnataka"}, "urgency": {"urgent"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/matches/donors?"+tc.query.Encode(), nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			err := h.FindDonors(c)
			assertHTTPStatus(t, err, http.StatusBadRequest)
		})
	}
}

func assertHTTPStatus(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an HTTP error")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected echo.HTTPError, got %T", err)
	}
	if httpErr.Code != want {
		t.Errorf("status = %d, want %d", httpErr.Code, want)
	}
}
