package review

import (
	"errors"

	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"gorm.io/gorm"
)

// ReviewStore is the persistence surface for the moderation workflow.
type ReviewStore interface {
	Create(r *models.ReviewModel) error
	GetByID(id string) (*models.ReviewModel, error)
	ListByApproval(approved bool, q pagination.Query) ([]models.ReviewModel, response.Pagination, error)
	SetApproval(id string, approved bool) (int64, error)
	Delete(id string) (int64, error)
	// ApprovedStats returns the count and mean rating over approved reviews.
	ApprovedStats() (count int64, avg float64, err error)
}

type gormReviewStore struct{ db *gorm.DB }

func NewStore(db *gorm.DB) ReviewStore { return &gormReviewStore{db: db} }

func (s *gormReviewStore) Create(r *models.ReviewModel) error {
	return s.db.Create(r).Error
}

func (s *gormReviewStore) GetByID(id string) (*models.ReviewModel, error) {
	var r models.ReviewModel
	if err := s.db.Where("id = ?", id).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (s *gormReviewStore) ListByApproval(approved bool, q pagination.Query) ([]models.ReviewModel, response.Pagination, error) {
	var reviews []models.ReviewModel
	page, err := pagination.Paginate(
		s.db.Model(&models.ReviewModel{}).Where("approved = ?", approved).Order("created_at DESC"),
		q, &reviews)
	return reviews, page, err
}

func (s *gormReviewStore) SetApproval(id string, approved bool) (int64, error) {
	result := s.db.Model(&models.ReviewModel{}).
		Where("id = ?", id).
		Update("approved", approved)
	return result.RowsAffected, result.Error
}

func (s *gormReviewStore) Delete(id string) (int64, error) {
	result := s.db.Where("id = ?", id).Delete(&models.ReviewModel{})
	return result.RowsAffected, result.Error
}

func (s *gormReviewStore) ApprovedStats() (int64, float64, error) {
	var row struct {
		Count int64
		Avg   float64
	}
	err := s.db.Model(&models.ReviewModel{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS avg").
		Where("approved = ?", true).
		Scan(&row).Error
	return row.Count, row.Avg, err
}
