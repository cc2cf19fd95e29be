package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/donglares/agendia-platform/internal/booking"
	"github.com/donglares/agendia-platform/internal/professionals"
	"github.com/donglares/agendia-platform/pkg/logging"
)

type noopSender struct{}

func (noopSender) SendText(context.Context, string, string) error { return nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.Default()
	repo := professionals.NewInMemoryRepository()
	bookingSvc := booking.NewService(repo, noopSender{}, nil, logger)

	return New(&Config{
		Logger:               logger,
		BookingHandler:       booking.NewHandler(bookingSvc, logger),
		ProfessionalsHandler: professionals.NewHandler(repo, logger),
		AdminAuthSecret:      "test-secret",
	})
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterAdminRequiresToken(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/professionals", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
}

func TestRouterAdminFlowThroughBooking(t *testing.T) {
	router := newTestRouter(t)

	claims := jwt.RegisteredClaims{
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	create := `{
		"name": "Dr. Fulano",
		"contact_address": "+5583988807803",
		"services": [{"name": "Haircut", "duration_minutes": 30}],
		"working_hours": {"monday": {"open": "09:00", "close": "18:00"}}
	}`
	req := httptest.NewRequest(http.MethodPost, "/admin/professionals", strings.NewReader(create))
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create professional status = %d: %s", rr.Code, rr.Body.String())
	}
	var prof professionals.ProfessionalResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &prof); err != nil {
		t.Fatalf("decode professional: %v", err)
	}

	// Public booking against the freshly created professional (2026-03-02 is
	// a Monday).
	book := `{
		"professional_id": "` + prof.ID.String() + `",
		"client_contact": "+5583999990000",
		"service_name": "Haircut",
		"start_time": "2026-03-02T10:00:00Z"
	}`
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(book)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create booking status = %d: %s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet,
		"/professionals/"+prof.ID.String()+"/agenda?date=2026-03-02", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("agenda status = %d: %s", rr.Code, rr.Body.String())
	}
	var agenda booking.AgendaResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &agenda); err != nil {
		t.Fatalf("decode agenda: %v", err)
	}
	if agenda.Count != 1 {
		t.Errorf("agenda count = %d, want 1", agenda.Count)
	}
}
