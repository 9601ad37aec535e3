package broadcast

import (
	"errors"
	"time"
)

var (
	errMailDisabled = errors.New("mail is disabled, nothing to broadcast")
	errEmptyTitle   = errors.New("announcement title is required")
)

// AnnounceDTO describes one content announcement to fan out.
type AnnounceDTO struct {
	Platform    string     `json:"platform" binding:"required"`
	Title       string     `json:"title"    binding:"required"`
	URL         string     `json:"url"`
	Excerpt     string     `json:"excerpt"` // markdown
	PublishedAt *time.Time `json:"published_at"`
}

// broadcastResult is stored as the task result after a fan-out finishes.
type broadcastResult struct {
	NotificationID string `json:"notification_id"`
	Recipients     int    `json:"recipients"`
	Sent           int    `json:"sent"`
}
