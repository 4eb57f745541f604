package notification

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one in-app message for one account. Rows are created by
// the fan-out service only and mutated only by MarkAllRead.
type Notification struct {
	ID        int64
	AccountID uuid.UUID
	Message   string
	Read      bool
	CreatedAt time.Time
}
