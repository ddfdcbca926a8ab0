package apperr

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/georgemunganga/storefront-api/internal/infrastructure/logger"
)

// Envelope is the body of every non-2xx response.
type Envelope struct {
	RequestID   string `json:"requestId"`
	ErrorCode   string `json:"errorCode"`
	Description string `json:"Description"`
}

// Responder writes JSON bodies and error envelopes.
type Responder struct {
	duplicateStatus int
	logger          *zap.Logger
}

// NewResponder builds a Responder. duplicateStatus is the status used for
// DUPLICATE_REQUEST, 503 or 409.
func NewResponder(duplicateStatus int, log *zap.Logger) *Responder {
	if duplicateStatus == 0 {
		duplicateStatus = http.StatusServiceUnavailable
	}
	return &Responder{duplicateStatus: duplicateStatus, logger: log}
}

// Status maps a kind to its HTTP status.
func (r *Responder) Status(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindDuplicateRequest:
		return r.duplicateStatus
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// JSON writes body with the given status.
func (r *Responder) JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		r.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// Error writes the envelope for err. An empty requestID falls back to the
// server request id carried by the request context.
func (r *Responder) Error(w http.ResponseWriter, req *http.Request, requestID string, err error) {
	if requestID == "" {
		requestID = logger.GetRequestID(req.Context())
	}

	kind := KindOf(err)
	status := r.Status(kind)

	log := logger.FromContextOr(req.Context(), r.logger)
	if status >= http.StatusInternalServerError && kind != KindDuplicateRequest {
		log.Error("request failed", zap.String("error_code", string(kind)), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.String("error_code", string(kind)), zap.String("reason", err.Error()))
	}

	r.JSON(w, status, Envelope{
		RequestID:   requestID,
		ErrorCode:   string(kind),
		Description: err.Error(),
	})
}
