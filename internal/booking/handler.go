package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/donglares/agendia-platform/internal/professionals"
	"github.com/donglares/agendia-platform/internal/schedule"
	"github.com/donglares/agendia-platform/pkg/logging"
)

// Handler handles HTTP requests for bookings.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates a new booking handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// CreateBookingRequest is the request body for creating a booking.
type CreateBookingRequest struct {
	ProfessionalID uuid.UUID `json:"professional_id"`
	ClientContact  string    `json:"client_contact"`
	ServiceName    string    `json:"service_name"`
	StartTime      time.Time `json:"start_time"`
}

// Create handles POST /bookings.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode booking request", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	b, err := h.svc.Book(r.Context(), BookRequest{
		ProfessionalID: req.ProfessionalID,
		ClientContact:  req.ClientContact,
		ServiceName:    req.ServiceName,
		StartTime:      req.StartTime,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(b)
}

// AgendaResponse is the response for a day's agenda.
type AgendaResponse struct {
	Date     string              `json:"date"`
	Bookings []*schedule.Booking `json:"bookings"`
	Count    int                 `json:"count"`
}

// DayAgenda handles GET /professionals/{professionalID}/agenda?date=YYYY-MM-DD.
func (h *Handler) DayAgenda(w http.ResponseWriter, r *http.Request) {
	professionalID, err := uuid.Parse(chi.URLParam(r, "professionalID"))
	if err != nil {
		http.Error(w, "invalid professional id", http.StatusBadRequest)
		return
	}
	dateStr := r.URL.Query().Get("date")
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		http.Error(w, "invalid or missing date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	agenda, err := h.svc.DayAgenda(r.Context(), professionalID, day)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(AgendaResponse{
		Date:     dateStr,
		Bookings: agenda,
		Count:    len(agenda),
	})
}

// Cancel handles POST /professionals/{professionalID}/bookings/{bookingID}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, h.svc.CancelBooking)
}

// Complete handles POST /professionals/{professionalID}/bookings/{bookingID}/complete.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.applyTransition(w, r, h.svc.CompleteBooking)
}

func (h *Handler) applyTransition(w http.ResponseWriter, r *http.Request,
	apply func(ctx context.Context, professionalID, bookingID uuid.UUID) (*schedule.Booking, error)) {
	professionalID, err := uuid.Parse(chi.URLParam(r, "professionalID"))
	if err != nil {
		http.Error(w, "invalid professional id", http.StatusBadRequest)
		return
	}
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}

	b, err := apply(r.Context(), professionalID, bookingID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(b)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, professionals.ErrNotFound),
		errors.Is(err, ErrServiceNotOffered),
		errors.Is(err, ErrBookingNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, schedule.ErrSlotUnavailable):
		http.Error(w, err.Error(), http.StatusConflict)
	case schedule.IsInvalidTransition(err):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, schedule.ErrMissingService),
		errors.Is(err, schedule.ErrMissingStartTime):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("booking request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
