package newsletter

import (
	"errors"
	"time"

	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriberStore is the persistence surface the workflow needs. Lookup
// methods return (nil, nil) when no row matches. Deletes are hard deletes:
// the row must vacate the unique email index so the address can subscribe
// again later.
type SubscriberStore interface {
	GetByEmail(email string) (*models.SubscriberModel, error)
	GetByToken(token string) (*models.SubscriberModel, error)
	// CreateIfAbsent inserts the subscriber unless a row with the same email
	// already exists; it reports whether the insert happened.
	CreateIfAbsent(sub *models.SubscriberModel) (bool, error)
	Save(sub *models.SubscriberModel) error
	// MarkVerified flips the row to verified, clears the one-shot
	// verification token, and stores the minted unsubscribe token.
	MarkVerified(id, unsubscribeToken string, at time.Time) error
	DeleteByEmail(email string) (int64, error)
	DeleteByUnsubscribeToken(token string) (int64, error)
	DeleteBatch(emails []string, all bool) (int64, error)
	ListActive() ([]models.SubscriberModel, error)
	List(q pagination.Query) ([]models.SubscriberModel, response.Pagination, error)
}

type gormSubscriberStore struct{ db *gorm.DB }

func NewStore(db *gorm.DB) SubscriberStore { return &gormSubscriberStore{db: db} }

func (s *gormSubscriberStore) GetByEmail(email string) (*models.SubscriberModel, error) {
	var sub models.SubscriberModel
	if err := s.db.Where("email = ?", email).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (s *gormSubscriberStore) GetByToken(token string) (*models.SubscriberModel, error) {
	var sub models.SubscriberModel
	if err := s.db.Where("token = ?", token).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (s *gormSubscriberStore) CreateIfAbsent(sub *models.SubscriberModel) (bool, error) {
	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(sub)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *gormSubscriberStore) Save(sub *models.SubscriberModel) error {
	return s.db.Save(sub).Error
}

func (s *gormSubscriberStore) MarkVerified(id, unsubscribeToken string, at time.Time) error {
	return s.db.Model(&models.SubscriberModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"verified":          true,
			"verified_at":       at,
			"token":             nil,
			"unsubscribe_token": unsubscribeToken,
		}).Error
}

// Deletes bypass the soft-delete scope: a tombstone would keep occupying the
// unique email index and block CreateIfAbsent on a later resubscribe.

func (s *gormSubscriberStore) DeleteByEmail(email string) (int64, error) {
	result := s.db.Unscoped().Where("email = ?", email).Delete(&models.SubscriberModel{})
	return result.RowsAffected, result.Error
}

func (s *gormSubscriberStore) DeleteByUnsubscribeToken(token string) (int64, error) {
	result := s.db.Unscoped().Where("unsubscribe_token = ?", token).Delete(&models.SubscriberModel{})
	return result.RowsAffected, result.Error
}

func (s *gormSubscriberStore) DeleteBatch(emails []string, all bool) (int64, error) {
	query := s.db.Unscoped().Model(&models.SubscriberModel{})
	if !all {
		if len(emails) == 0 {
			return 0, nil
		}
		query = query.Where("email IN ?", emails)
	} else {
		query = query.Where("1 = 1")
	}
	result := query.Delete(&models.SubscriberModel{})
	return result.RowsAffected, result.Error
}

func (s *gormSubscriberStore) ListActive() ([]models.SubscriberModel, error) {
	var subs []models.SubscriberModel
	err := s.db.Where("verified = ?", true).Find(&subs).Error
	return subs, err
}

func (s *gormSubscriberStore) List(q pagination.Query) ([]models.SubscriberModel, response.Pagination, error) {
	var subs []models.SubscriberModel
	page, err := pagination.Paginate(
		s.db.Model(&models.SubscriberModel{}).Order("created_at DESC"), q, &subs)
	return subs, page, err
}
