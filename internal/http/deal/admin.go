package deal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/deallock/deallock/internal/account"
	"github.com/deallock/deallock/internal/deal"
	"github.com/deallock/deallock/internal/http/auth"
)

// AdminRoutes mounts the review endpoints. The router wraps them in the
// admin guard; the service re-checks the role on every call regardless.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/deals", h.adminList)
	r.Get("/payment-proofs", h.adminPaymentProofs)
	r.Delete("/deals/{id}", h.delete)
	r.Post("/deals/{id}/approve", h.approve)
	r.Post("/deals/{id}/reject", h.reject)
	r.Post("/deals/{id}/payment-confirmed", h.confirmPayment)
	r.Post("/deals/{id}/payment-not-received", h.rejectPayment)
	r.Post("/deals/{id}/secured", h.secure)
}

func (h *Handler) adminList(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	filter := deal.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := deal.Status(s)
		filter.Status = &status
	}

	if s := r.URL.Query().Get("start"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			http.Error(w, "invalid start date", http.StatusBadRequest)
			return
		}

		filter.Start = &t
	}

	if s := r.URL.Query().Get("end"); s != "" {
		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			http.Error(w, "invalid end date", http.StatusBadRequest)
			return
		}

		// The range is inclusive of the end day.
		end := t.AddDate(0, 0, 1)
		filter.End = &end
	}

	deals, err := h.svc.ListAll(r.Context(), actor, filter)
	if err != nil {
		writeDealError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(deals)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) adminPaymentProofs(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	deals, err := h.svc.ListPaymentProofs(r.Context(), actor)
	if err != nil {
		writeDealError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(deals)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Approve)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Reject)
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.ConfirmPayment)
}

func (h *Handler) rejectPayment(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.RejectPayment)
}

func (h *Handler) secure(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Secure)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, actor account.Actor, id uuid.UUID) error) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	if err := fn(r.Context(), actor, id); err != nil {
		writeDealError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
