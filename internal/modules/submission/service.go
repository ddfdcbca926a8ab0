// Package submission implements the idempotent post-item workflow and the
// store-scoped item delete.
package submission

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/georgemunganga/storefront-api/internal/infrastructure/logger"
	"github.com/georgemunganga/storefront-api/internal/infrastructure/metrics"
	"github.com/georgemunganga/storefront-api/internal/modules/requestlog"
	"github.com/georgemunganga/storefront-api/internal/modules/store"
	"github.com/georgemunganga/storefront-api/internal/shared/apperr"
	"github.com/georgemunganga/storefront-api/internal/shared/validation"
)

const itemCreatedMessage = "Item created successfully"

// Service defines item submission and removal.
type Service interface {
	// PostItem runs the workflow: duplicate check, store check, validation,
	// then the item insert and the idempotency record in one transaction.
	PostItem(ctx context.Context, storeID string, sub *Submission) (*PostItemResponse, error)
	// RemoveItem deletes an item only if it belongs to the given store.
	RemoveItem(ctx context.Context, storeID, itemID string) error
}

// Transactor runs fn in a database transaction carried by ctx.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// outcome is the response snapshot stored in the idempotency log.
type outcome struct {
	ItemCode string `json:"itemCode"`
	Message  string `json:"message"`
}

type service struct {
	stores   store.Service
	requests requestlog.Service
	tx       Transactor
	validate *validation.Validator
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService creates the submission workflow. m may be nil.
func NewService(
	stores store.Service,
	requests requestlog.Service,
	tx Transactor,
	validate *validation.Validator,
	m *metrics.Metrics,
	log *zap.Logger,
) Service {
	validate.RegisterCustomTypeFunc(amountValue, Amount{})
	return &service{
		stores:   stores,
		requests: requests,
		tx:       tx,
		validate: validate,
		metrics:  m,
		logger:   log,
	}
}

func (s *service) PostItem(ctx context.Context, storeID string, sub *Submission) (*PostItemResponse, error) {
	resp, err := s.postItem(ctx, storeID, sub)
	s.metrics.Submission(outcomeOf(err))
	return resp, err
}

func (s *service) postItem(ctx context.Context, storeID string, sub *Submission) (*PostItemResponse, error) {
	req := sub.Payload
	log := logger.FromContextOr(ctx, s.logger).With(
		zap.String("idempotency_key", req.RequestID),
		zap.String("store_id", storeID),
	)

	// Without a request id there is nothing to deduplicate on.
	if req.RequestID == "" {
		return nil, s.validatePayload(sub)
	}

	// 1. Duplicate check
	if _, err := s.requests.Lookup(ctx, req.RequestID); err == nil {
		log.Warn("duplicate request rejected")
		return nil, apperr.DuplicateRequest(req.RequestID)
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, err
	}
	if !s.requests.Reserve(ctx, req.RequestID) {
		log.Warn("request already in flight")
		return nil, apperr.DuplicateRequest(req.RequestID)
	}
	defer s.requests.Release(context.WithoutCancel(ctx), req.RequestID)

	// 2. Store existence
	st, err := s.stores.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	// 3. Payload validation
	if err := s.validatePayload(sub); err != nil {
		log.Debug("payload rejected", zap.Error(err))
		return nil, err
	}

	// 4-5. Persist the item and record the outcome atomically
	it := newItem(st.ID, req)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.stores.CreateItem(ctx, it); err != nil {
			return err
		}
		_, err := s.requests.Record(ctx, req.RequestID, sub.Raw, outcome{
			ItemCode: it.ID.String(),
			Message:  itemCreatedMessage,
		})
		return err
	})
	if err != nil {
		if apperr.Is(err, apperr.KindDuplicateRequest) {
			log.Warn("duplicate request lost the race at write time")
			return nil, err
		}
		if apperr.KindOf(err) == apperr.KindInternal {
			err = apperr.Persistence("failed to create item", err)
		}
		return nil, err
	}

	log.Info("item created", zap.String("item_id", it.ID.String()))
	return &PostItemResponse{
		RequestID:   req.RequestID,
		ItemCode:    it.ID.String(),
		Description: itemCreatedMessage,
	}, nil
}

func (s *service) RemoveItem(ctx context.Context, storeID, itemID string) error {
	st, err := s.stores.GetStore(ctx, storeID)
	if err != nil {
		return err
	}
	it, err := s.stores.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if it.StoreID != st.ID {
		return apperr.NotFound("Item with ID %s not found in store %s", itemID, storeID)
	}
	return s.stores.DeleteItem(ctx, itemID)
}

// validatePayload returns the first validation failure of the submission.
func (s *service) validatePayload(sub *Submission) error {
	if e := sub.typeErr; e != nil {
		if e.Field == "" {
			return apperr.Validation("", "Payload must be a JSON object")
		}
		return apperr.Validation(e.Field, fmt.Sprintf("Field '%s' must be %s", e.Field, typeName(e.Type.Kind())))
	}
	req := sub.Payload
	if req.Price.set && req.Price.invalid {
		return apperr.Validation("Price", "Field 'Price' must be a number or numeric string")
	}
	if err := s.validate.Struct(req); err != nil {
		return err
	}
	for _, tag := range req.Tags {
		if !tag.Valid() {
			return apperr.Validation("tags", "Field 'tags' must contain only strings or numbers")
		}
	}
	return nil
}

func newItem(storeID uuid.UUID, req PostItemRequest) *store.Item {
	it := &store.Item{
		StoreID:   storeID,
		RequestID: req.RequestID,
		Item:      req.Item,
		Size:      req.Size,
		Tags:      req.Tags,
		OnOffer:   *req.OnOffer,
		Price:     req.Price.Decimal(),
		Discount:  *req.Discount,
	}
	if req.Description != nil {
		it.Description = *req.Description
	}
	return it
}

func outcomeOf(err error) string {
	if err == nil {
		return metrics.OutcomeCreated
	}
	switch apperr.KindOf(err) {
	case apperr.KindDuplicateRequest:
		return metrics.OutcomeDuplicate
	case apperr.KindNotFound:
		return metrics.OutcomeStoreNotFound
	case apperr.KindValidation:
		return metrics.OutcomeValidationFailed
	default:
		return metrics.OutcomeFailed
	}
}
