package requestlog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/storefront-api/internal/infrastructure/recordstore"
)

var columns = []string{"id", "request_id", "request_data", "response_data", "created_at"}

type sqlRepository struct {
	table *recordstore.Table[ProcessedRequest]
}

// NewSQLRepository stores processed requests in the processed_requests table.
func NewSQLRepository(db *recordstore.DB) Repository {
	return &sqlRepository{table: recordstore.NewTable(db, "processed_requests", columns, scanProcessedRequest)}
}

func scanProcessedRequest(scan func(dest ...any) error) (*ProcessedRequest, error) {
	pr := &ProcessedRequest{}
	var request, response []byte
	if err := scan(&pr.ID, &pr.RequestID, &request, &response, &pr.CreatedAt); err != nil {
		return nil, err
	}
	pr.RequestData = request
	pr.ResponseData = response
	return pr, nil
}

func (r *sqlRepository) Create(ctx context.Context, pr *ProcessedRequest) error {
	pr.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	id, err := r.table.Insert(ctx,
		[]string{"request_id", "request_data", "response_data", "created_at"},
		pr.RequestID, string(pr.RequestData), string(pr.ResponseData), pr.CreatedAt)
	if err != nil {
		return err
	}
	pr.ID, err = uuid.Parse(id)
	return err
}

func (r *sqlRepository) GetByRequestID(ctx context.Context, requestID string) (*ProcessedRequest, error) {
	return r.table.First(ctx, recordstore.Eq("request_id", requestID))
}
