package requestlog

import "context"

// Repository defines processed request storage. GetByRequestID returns
// recordstore.ErrNotFound when the id was never recorded.
type Repository interface {
	Create(ctx context.Context, pr *ProcessedRequest) error
	GetByRequestID(ctx context.Context, requestID string) (*ProcessedRequest, error)
}
