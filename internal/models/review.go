package models

// ReviewModel is a visitor-submitted testimonial. New rows always start
// unapproved and only show up publicly after moderation.
type ReviewModel struct {
	Base
	Name     string `json:"name"     gorm:"not null"`
	Company  string `json:"company"`
	Role     string `json:"role"`
	Title    string `json:"title"`
	Rating   int    `json:"rating"   gorm:"not null"`
	Comment  string `json:"comment"  gorm:"type:text;not null"`
	Approved bool   `json:"approved" gorm:"index;default:false"`
}

func (ReviewModel) TableName() string { return "reviews" }
