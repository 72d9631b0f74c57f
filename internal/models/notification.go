package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotifKind string

const (
	NotifContentFlagged   NotifKind = "content_flagged"
	NotifContentReported  NotifKind = "content_reported"
	NotifContentRemoved   NotifKind = "content_removed"
	NotifStrikeIssued     NotifKind = "strike_issued"
	NotifAccountSuspended NotifKind = "account_suspended"
)

var notifTitles = map[NotifKind]string{
	NotifContentFlagged:   "Your content is under review",
	NotifContentReported:  "Your content was reported",
	NotifContentRemoved:   "Your content was removed",
	NotifStrikeIssued:     "You received a strike",
	NotifAccountSuspended: "Your account was suspended",
}

func (k NotifKind) Title() string {
	if t, ok := notifTitles[k]; ok {
		return t
	}
	return string(k)
}

// Text renders the body of a notification from its payload.
func (k NotifKind) Text(payload map[string]interface{}) string {
	str := func(key string) string {
		if v, ok := payload[key]; ok && v != nil {
			return fmt.Sprint(v)
		}
		return ""
	}
	switch k {
	case NotifContentFlagged:
		return fmt.Sprintf("Your %s was sent to moderators for review.", str("contentType"))
	case NotifContentReported:
		return fmt.Sprintf("Your %s was reported as %s.", str("contentType"), str("category"))
	case NotifContentRemoved:
		return fmt.Sprintf("Your %s was removed: %s", str("contentType"), str("reason"))
	case NotifStrikeIssued:
		return fmt.Sprintf("You received a %s strike: %s", str("severity"), str("reason"))
	case NotifAccountSuspended:
		if r := str("reason"); r != "" {
			return "Your account was suspended: " + r
		}
		return "Your account was suspended."
	}
	return ""
}

type Notification struct {
	ID        uuid.UUID              `json:"id"`
	UserID    uuid.UUID              `json:"userId" db:"user_id"`
	Kind      NotifKind              `json:"kind"`
	Title     string                 `json:"title"`
	Text      string                 `json:"text"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"createdAt" db:"created_at"`
}
