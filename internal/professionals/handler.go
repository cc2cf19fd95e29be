package professionals

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/donglares/agendia-platform/internal/schedule"
	"github.com/donglares/agendia-platform/pkg/logging"
)

// Handler handles HTTP requests for professional management.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new professionals handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("professionals: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ServicePayload describes one catalog entry in requests and responses.
type ServicePayload struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
}

// WindowPayload carries a day's open window as "HH:MM" strings.
type WindowPayload struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// CreateProfessionalRequest is the request body for creating a professional.
// Working-hours keys are lowercase weekday names; absent days are closed.
type CreateProfessionalRequest struct {
	Name           string                   `json:"name"`
	ContactAddress string                   `json:"contact_address"`
	Services       []ServicePayload         `json:"services"`
	WorkingHours   map[string]WindowPayload `json:"working_hours"`
}

// ProfessionalResponse is the API view of the aggregate.
type ProfessionalResponse struct {
	ID             uuid.UUID                `json:"id"`
	Name           string                   `json:"name"`
	ContactAddress string                   `json:"contact_address"`
	Services       []ServicePayload         `json:"services"`
	WorkingHours   map[string]WindowPayload `json:"working_hours"`
	BookingCount   int                      `json:"booking_count"`
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func parseWorkingHours(in map[string]WindowPayload) (schedule.WorkingHours, error) {
	hours := schedule.WorkingHours{}
	for name, wp := range in {
		day, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("professionals: unknown weekday %q", name)
		}
		window, err := schedule.NewWindow(wp.Open, wp.Close)
		if err != nil {
			return nil, err
		}
		hours[day] = window
	}
	return hours, nil
}

func toResponse(p *schedule.Professional) ProfessionalResponse {
	resp := ProfessionalResponse{
		ID:             p.ID,
		Name:           p.Name,
		ContactAddress: p.ContactAddress,
		Services:       make([]ServicePayload, 0, len(p.ServicesOffered)),
		WorkingHours:   make(map[string]WindowPayload, len(p.WorkingHours)),
		BookingCount:   len(p.Bookings),
	}
	for _, svc := range p.ServicesOffered {
		resp.Services = append(resp.Services, ServicePayload{
			Name:            svc.Name,
			DurationMinutes: svc.DurationMinutes,
		})
	}
	for day, window := range p.WorkingHours {
		resp.WorkingHours[strings.ToLower(day.String())] = WindowPayload{
			Open:  window.Open.String(),
			Close: window.Close.String(),
		}
	}
	return resp
}

// Create handles POST /admin/professionals.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProfessionalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := schedule.NewProfessional(req.Name, req.ContactAddress)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, sp := range req.Services {
		svc, err := schedule.NewService(sp.Name, sp.DurationMinutes)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := p.AddService(svc); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	hours, err := parseWorkingHours(req.WorkingHours)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	p.WorkingHours = hours

	if err := h.repo.Save(r.Context(), p); err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("professional created", "professional_id", p.ID, "name", p.Name)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toResponse(p))
}

// Get handles GET /admin/professionals/{professionalID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "professionalID"))
	if err != nil {
		http.Error(w, "invalid professional id", http.StatusBadRequest)
		return
	}
	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(p))
}

// List handles GET /admin/professionals.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]ProfessionalResponse, 0, len(all))
	for _, p := range all {
		out = append(out, toResponse(p))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// UpdateWorkingHours handles PUT /admin/professionals/{professionalID}/working-hours.
// The body replaces the whole calendar.
func (h *Handler) UpdateWorkingHours(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "professionalID"))
	if err != nil {
		http.Error(w, "invalid professional id", http.StatusBadRequest)
		return
	}
	var body map[string]WindowPayload
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	hours, err := parseWorkingHours(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	p.WorkingHours = hours
	if err := h.repo.Save(r.Context(), p); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(p))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrDuplicateContact):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrVersionConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("professional request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
