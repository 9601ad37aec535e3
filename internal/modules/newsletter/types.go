package newsletter

import "errors"

var (
	errAlreadySubscribed = errors.New("email is already subscribed")
	errSubscribeConflict = errors.New("another subscription for this email is in flight")
	errTokenInvalid      = errors.New("invalid or expired token")
)

type SubscribeDTO struct {
	Email string `json:"email" binding:"required,email"`
}

type BatchUnsubscribeDTO struct {
	Emails []string `json:"emails"`
	All    bool     `json:"all"`
}
