package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/internal/logging"
	"github.com/septivank/earthquake-catalog/internal/urlstate"
	"go.uber.org/zap"
)

type handler struct {
	catalog Catalog
	logger  *zap.Logger
}

// GET /api/v1/earthquakes
func (h *handler) list(w http.ResponseWriter, r *http.Request) {
	req, err := urlstate.Decode(r.URL.Query())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	result, err := h.catalog.Query(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GET /api/v1/earthquakes/{id}
func (h *handler) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// POST /api/v1/earthquakes
func (h *handler) create(w http.ResponseWriter, r *http.Request) {
	var in earthquake.CreateInput
	if err := decodeBody(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	rec, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// PATCH /api/v1/earthquakes/{id}
func (h *handler) update(w http.ResponseWriter, r *http.Request) {
	var in earthquake.UpdateInput
	if err := decodeBody(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}

	rec, err := h.catalog.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// DELETE /api/v1/earthquakes/{id}
func (h *handler) delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.catalog.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", earthquake.ErrValidation, err)
	}
	return nil
}

// ErrorBody is the envelope of every failed response.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const unavailableMessage = "earthquake store is temporarily unavailable, please retry"

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := earthquake.Code(err)
	status := statusFor(code)
	message := err.Error()

	logger := logging.WithRequestID(h.logger, middleware.GetReqID(r.Context()))
	switch status {
	case http.StatusServiceUnavailable:
		logger.Warn("store unavailable", zap.Error(err))
		message = unavailableMessage
	case http.StatusInternalServerError:
		logger.Error("request failed", zap.Error(err))
		message = "internal error"
	}

	writeJSON(w, status, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

func statusFor(code string) int {
	switch code {
	case earthquake.CodeValidation, earthquake.CodeInvalidLocation,
		earthquake.CodeInvalidMagnitude, earthquake.CodeInvalidDate:
		return http.StatusBadRequest
	case earthquake.CodeNotFound:
		return http.StatusNotFound
	case earthquake.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
