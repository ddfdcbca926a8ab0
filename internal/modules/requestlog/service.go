package requestlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/georgemunganga/storefront-api/internal/infrastructure/logger"
	"github.com/georgemunganga/storefront-api/internal/infrastructure/recordstore"
	"github.com/georgemunganga/storefront-api/internal/shared/apperr"
)

// Service is the idempotency log for item submissions.
type Service interface {
	// Lookup returns the recorded outcome for requestID, or a NOT_FOUND error.
	Lookup(ctx context.Context, requestID string) (*ProcessedRequest, error)
	// Record stores the request and response snapshots. A second record for
	// the same id fails with DUPLICATE_REQUEST.
	Record(ctx context.Context, requestID string, request, response any) (*ProcessedRequest, error)
	// Reserve claims requestID while a submission is in flight.
	Reserve(ctx context.Context, requestID string) bool
	Release(ctx context.Context, requestID string)
}

type service struct {
	repo     Repository
	reserver Reserver
	logger   *zap.Logger
}

// NewService creates the idempotency log. A nil reserver disables in-flight reservations.
func NewService(repo Repository, reserver Reserver, log *zap.Logger) Service {
	if reserver == nil {
		reserver = NoopReserver{}
	}
	return &service{repo: repo, reserver: reserver, logger: log}
}

func (s *service) Lookup(ctx context.Context, requestID string) (*ProcessedRequest, error) {
	pr, err := s.repo.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, recordstore.ErrNotFound) {
			return nil, apperr.NotFound("Request with ID %s has not been processed", requestID)
		}
		return nil, apperr.Persistence("failed to look up request", err)
	}
	return pr, nil
}

func (s *service) Record(ctx context.Context, requestID string, request, response any) (*ProcessedRequest, error) {
	reqData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encode request snapshot: %w", err)
	}
	respData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("encode response snapshot: %w", err)
	}

	pr := &ProcessedRequest{RequestID: requestID, RequestData: reqData, ResponseData: respData}
	if err := s.repo.Create(ctx, pr); err != nil {
		if errors.Is(err, recordstore.ErrUniqueViolation) {
			return nil, apperr.DuplicateRequest(requestID)
		}
		return nil, apperr.Persistence("failed to record request", err)
	}
	return pr, nil
}

// Reserve treats a reserver failure as acquired; the unique indexes still
// reject a duplicate at write time.
func (s *service) Reserve(ctx context.Context, requestID string) bool {
	ok, err := s.reserver.Reserve(ctx, requestID)
	if err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("in-flight reservation unavailable",
			zap.String("idempotency_key", requestID), zap.Error(err))
		return true
	}
	return ok
}

func (s *service) Release(ctx context.Context, requestID string) {
	if err := s.reserver.Release(ctx, requestID); err != nil {
		logger.FromContextOr(ctx, s.logger).Warn("failed to release in-flight reservation",
			zap.String("idempotency_key", requestID), zap.Error(err))
	}
}
