package models

import "time"

// SubscriberModel holds one newsletter subscriber keyed by normalized email.
// Token is only set while the subscription is pending; verification clears it
// and mints UnsubscribeToken, the per-recipient token used in broadcast
// unsubscribe links. The unique indexes back the O(1) lookups for both flows.
type SubscriberModel struct {
	Base
	Email            string     `json:"email"       gorm:"uniqueIndex;not null"`
	Token            string     `json:"-"           gorm:"uniqueIndex"`
	UnsubscribeToken *string    `json:"-"           gorm:"uniqueIndex"`
	Verified         bool       `json:"verified"    gorm:"default:false"`
	VerifiedAt       *time.Time `json:"verified_at"`
}

func (SubscriberModel) TableName() string { return "subscribers" }
