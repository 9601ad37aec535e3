package models

import "time"

// NotificationModel is the write-once audit record of an announcement
// broadcast. Rows are created after the fan-out finishes and never updated.
type NotificationModel struct {
	Base
	Platform    string     `json:"platform"     gorm:"index;not null"`
	Title       string     `json:"title"        gorm:"not null"`
	URL         string     `json:"url"`
	Excerpt     string     `json:"excerpt"      gorm:"type:text"`
	PublishedAt *time.Time `json:"published_at"`
	SentAt      time.Time  `json:"sent_at"`
	SentCount   int        `json:"sent_count"`
}

func (NotificationModel) TableName() string { return "notifications" }
