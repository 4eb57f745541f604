package deal

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/deallock/deallock/internal/account"
	"github.com/deallock/deallock/internal/deal"
	"github.com/deallock/deallock/internal/http/auth"
)

// Uploads larger than this are rejected before they reach the store.
const maxUploadBytes = 10 << 20

type Handler struct {
	svc *deal.Service
}

func NewHandler(svc *deal.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	// Cancelling a deal and deleting it are the same unconditional removal.
	r.Post("/{id}/cancel", h.delete)
	r.Get("/{id}/photo", h.photo)
	r.Get("/{id}/payment-proof", h.paymentProof)
	r.Post("/{id}/payment-proof", h.uploadPaymentProof)
	r.Post("/{id}/pay", h.markPaid)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	value, err := parseNaira(r.FormValue("value"))
	if err != nil {
		http.Error(w, "invalid value", http.StatusBadRequest)
		return
	}

	params := deal.CreateParams{
		Title:       r.FormValue("title"),
		ClientName:  r.FormValue("client_name"),
		Link:        r.FormValue("link"),
		Description: r.FormValue("description"),
		Value:       value,
	}

	photo, contentType, err := readUpload(r, "item_photo")
	if err != nil {
		http.Error(w, "reading item photo", http.StatusBadRequest)
		return
	}

	params.Photo = photo
	params.PhotoContentType = contentType

	d, err := h.svc.Create(r.Context(), actor, params)
	if err != nil {
		if errors.Is(err, deal.ErrValidation) {
			http.Error(w, "title and client name are required", http.StatusBadRequest)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(d)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}

	deals, err := h.svc.ListForOwner(r.Context(), actor)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(deals)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	d, err := h.svc.Get(r.Context(), actor, id)
	if err != nil {
		writeDealError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(d)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		writeDealError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) photo(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	data, contentType, err := h.svc.Photo(r.Context(), actor, id)
	if err != nil {
		writeDealError(w, err)
		return
	}

	writeBlob(w, data, contentType)
}

func (h *Handler) paymentProof(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	data, contentType, err := h.svc.PaymentProof(r.Context(), actor, id)
	if err != nil {
		writeDealError(w, err)
		return
	}

	writeBlob(w, data, contentType)
}

func (h *Handler) uploadPaymentProof(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	proof, contentType, err := readUpload(r, "payment_proof")
	if err != nil {
		http.Error(w, "reading payment proof", http.StatusBadRequest)
		return
	}

	if err := h.svc.UploadPaymentProof(r.Context(), actor, id, proof, contentType); err != nil {
		writeDealError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}

	if err := h.svc.MarkPaid(r.Context(), actor, id); err != nil {
		writeDealError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) actorAndID(w http.ResponseWriter, r *http.Request) (account.Actor, uuid.UUID, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return account.Actor{}, uuid.Nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return account.Actor{}, uuid.Nil, false
	}

	return actor, id, true
}

func writeDealError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, deal.ErrNotFound):
		http.Error(w, "deal not found", http.StatusNotFound)
	case errors.Is(err, deal.ErrForbidden):
		http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
	case errors.Is(err, deal.ErrInvalidState):
		http.Error(w, "operation not allowed in current state", http.StatusConflict)
	case errors.Is(err, deal.ErrValidation):
		http.Error(w, "invalid input", http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeBlob(w http.ResponseWriter, data []byte, contentType string) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))

	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write blob", "error", err)
	}
}

// parseNaira converts a decimal naira amount to kobo.
func parseNaira(s string) (int64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}

	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("amount out of range")
	}

	return int64(math.Round(v * 100)), nil
}

// readUpload pulls one optional file field out of a parsed multipart form.
// A missing field is not an error; the caller decides whether it is required.
func readUpload(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}

		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, "", err
	}

	return data, header.Header.Get("Content-Type"), nil
}
