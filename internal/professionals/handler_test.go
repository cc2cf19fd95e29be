package professionals

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func newHandlerRouter() (*chi.Mux, Repository) {
	repo := NewInMemoryRepository()
	h := NewHandler(repo, nil)
	r := chi.NewRouter()
	r.Post("/admin/professionals", h.Create)
	r.Get("/admin/professionals", h.List)
	r.Get("/admin/professionals/{professionalID}", h.Get)
	r.Put("/admin/professionals/{professionalID}/working-hours", h.UpdateWorkingHours)
	return r, repo
}

const createBody = `{
	"name": "Dr. Fulano",
	"contact_address": "+5583988807803",
	"services": [
		{"name": "Haircut", "duration_minutes": 30},
		{"name": "Beard trim", "duration_minutes": 15}
	],
	"working_hours": {
		"monday": {"open": "09:00", "close": "18:00"},
		"wednesday": {"open": "10:00", "close": "16:00"}
	}
}`

func TestHandlerCreateProfessional(t *testing.T) {
	router, repo := newHandlerRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/professionals", strings.NewReader(createBody)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp ProfessionalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Name != "Dr. Fulano" || len(resp.Services) != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.WorkingHours["monday"] != (WindowPayload{Open: "09:00", Close: "18:00"}) {
		t.Errorf("monday window = %+v", resp.WorkingHours["monday"])
	}

	stored, err := repo.GetByID(httptest.NewRequest(http.MethodGet, "/", nil).Context(), resp.ID)
	if err != nil {
		t.Fatalf("GetByID after create: %v", err)
	}
	if _, open := stored.WorkingHours[time.Wednesday]; !open {
		t.Error("wednesday window not persisted")
	}
	if _, open := stored.WorkingHours[time.Tuesday]; open {
		t.Error("tuesday should be closed")
	}
}

func TestHandlerCreateProfessionalValidation(t *testing.T) {
	router, _ := newHandlerRouter()

	cases := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", "{", http.StatusBadRequest},
		{"missing name", `{"contact_address":"+55"}`, http.StatusBadRequest},
		{"short service name", `{"name":"A","contact_address":"+55","services":[{"name":"ab","duration_minutes":30}]}`, http.StatusBadRequest},
		{"zero duration", `{"name":"A","contact_address":"+55","services":[{"name":"Haircut","duration_minutes":0}]}`, http.StatusBadRequest},
		{"unknown weekday", `{"name":"A","contact_address":"+55","working_hours":{"someday":{"open":"09:00","close":"18:00"}}}`, http.StatusBadRequest},
		{"inverted window", `{"name":"A","contact_address":"+55","working_hours":{"monday":{"open":"18:00","close":"09:00"}}}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/professionals", strings.NewReader(tc.body)))
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestHandlerCreateDuplicateContact(t *testing.T) {
	router, _ := newHandlerRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/professionals", strings.NewReader(createBody)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/professionals", strings.NewReader(createBody)))
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate contact status = %d, want 409", rec.Code)
	}
}

func TestHandlerGetAndList(t *testing.T) {
	router, _ := newHandlerRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/professionals", strings.NewReader(createBody)))
	var created ProfessionalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/professionals/"+created.ID.String(), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/professionals/"+uuid.NewString(), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("get unknown status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/professionals", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var all []ProfessionalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("list len = %d, want 1", len(all))
	}
}

func TestHandlerUpdateWorkingHours(t *testing.T) {
	router, repo := newHandlerRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/professionals", strings.NewReader(createBody)))
	var created ProfessionalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	update := `{"friday": {"open": "08:00", "close": "12:00"}}`
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut,
		"/admin/professionals/"+created.ID.String()+"/working-hours", strings.NewReader(update)))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	stored, err := repo.GetByID(httptest.NewRequest(http.MethodGet, "/", nil).Context(), created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(stored.WorkingHours) != 1 {
		t.Fatalf("working hours len = %d, want calendar replaced wholesale", len(stored.WorkingHours))
	}
	window, open := stored.WorkingHours[time.Friday]
	if !open || window.Open.String() != "08:00" {
		t.Errorf("friday window = %+v, open = %v", window, open)
	}
}
