package entity

import (
	"time"

	"github.com/joseph-ayodele/port-compliance/constants"
)

// Notification is one entry of an operator's notification feed.
type Notification struct {
	Timestamp time.Time                  `json:"timestamp"`
	Message   string                     `json:"mensagem"`
	Kind      constants.NotificationKind `json:"tipo"`
}
