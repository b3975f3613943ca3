package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/okian/drunkyet/internal/app"
	"github.com/okian/drunkyet/pkg/logger"
)

// CalculateDependencies defines the interface for calculation dependencies.
type CalculateDependencies interface {
	Calculate(ctx context.Context, c app.Calculation) (app.Result, error)
}

// calculateRequest mirrors the OpenAPI schema for POST /api/calculate.
// Pointers distinguish missing fields from zero values.
type calculateRequest struct {
	Weight        *float64 `json:"weight"`
	WeightUnit    string   `json:"weight_unit"`
	Gender        *string  `json:"gender"`
	Sex           *string  `json:"sex"`
	CurrentDrinks *float64 `json:"current_drinks"`
}

func (r calculateRequest) validate() error {
	switch {
	case r.Weight == nil:
		return errors.New("missing weight")
	case r.CurrentDrinks == nil:
		return errors.New("missing current_drinks")
	}
	return nil
}

// calculation converts the request; sex wins over the legacy gender key.
func (r calculateRequest) calculation() app.Calculation {
	c := app.Calculation{
		Weight:        *r.Weight,
		WeightUnit:    r.WeightUnit,
		CurrentDrinks: *r.CurrentDrinks,
	}
	switch {
	case r.Sex != nil:
		c.Sex = *r.Sex
	case r.Gender != nil:
		c.Sex = *r.Gender
	}
	return c
}

// CalculateHandler handles calculation requests.
type CalculateHandler struct {
	deps         CalculateDependencies
	maxBodyBytes int64
	logger       logger.Logger
}

// NewCalculateHandler creates a new calculate handler.
func NewCalculateHandler(deps CalculateDependencies, maxBodyBytes int64) *CalculateHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &CalculateHandler{deps: deps, maxBodyBytes: maxBodyBytes, logger: logger.Named("api.calculate")}
}

// HandleCalculate handles POST /api/calculate requests.
func (h *CalculateHandler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	const op = "api.calculate"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", NewKind(op, ErrPayloadTooLarge))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("no data provided")))
		return
	}

	var req calculateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("invalid JSON body")))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.Calculate(r.Context(), req.calculation())
	if err != nil {
		if app.IsInvalidInput(err) {
			writeError(w, http.StatusBadRequest, "invalid_input", WrapKind(op, ErrBadRequest, err))
			return
		}
		h.logger.Error(r.Context(), "calculation failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error",
			WrapKind(op, ErrInternal, errors.New("an internal server error occurred")))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
