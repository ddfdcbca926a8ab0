// Package requestlog records processed item submissions by client request id
// and guards request ids that are still in flight.
package requestlog

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProcessedRequest is the stored outcome of one completed submission.
type ProcessedRequest struct {
	ID           uuid.UUID       `json:"id"`
	RequestID    string          `json:"request_id"`
	RequestData  json.RawMessage `json:"request_data"`
	ResponseData json.RawMessage `json:"response_data"`
	CreatedAt    time.Time       `json:"created_at"`
}
