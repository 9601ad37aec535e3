package review

import "errors"

var (
	errInappropriateContent = errors.New("submission contains inappropriate content")
	errInvalidName          = errors.New("name contains unsupported characters")
	errInvalidRating        = errors.New("rating must be between 1 and 5")
	errReviewNotFound       = errors.New("review not found")
)

type SubmitReviewDTO struct {
	Name    string `json:"name"    binding:"required"`
	Company string `json:"company"`
	Role    string `json:"role"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment" binding:"required"`
}

type SetApprovalDTO struct {
	Approved *bool `json:"approved" binding:"required"`
}

// Stats summarizes the approved reviews. Average is formatted to one
// decimal; an empty set reports the fixed placeholder instead of a computed
// value.
type Stats struct {
	Count   int64  `json:"count"`
	Average string `json:"average"`
}
