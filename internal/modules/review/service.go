package review

import (
	"fmt"
	"strings"

	"github.com/folio-space/core/internal/config"
	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
)

// placeholderAverage is what an empty approved set reports; a policy
// constant, not a computed value.
const placeholderAverage = "5.0"

// ConfigSource yields the current site options.
type ConfigSource interface {
	Get() (*config.SiteConfig, error)
}

type Service struct {
	store  ReviewStore
	cfgSvc ConfigSource
}

func NewService(store ReviewStore, cfgSvc ConfigSource) *Service {
	return &Service{store: store, cfgSvc: cfgSvc}
}

// Submit runs the validation pipeline and persists the review unapproved.
// First failure wins: denylist, then name charset, then rating.
func (s *Service) Submit(dto *SubmitReviewDTO) (*models.ReviewModel, error) {
	extraWords := s.extraDenyWords()

	fields := strings.Join([]string{dto.Name, dto.Company, dto.Role, dto.Comment}, "\n")
	if containsDenyWord(fields, extraWords) {
		return nil, errInappropriateContent
	}
	if !validName(dto.Name) {
		return nil, errInvalidName
	}
	if !validRating(dto.Rating) {
		return nil, errInvalidRating
	}

	r := &models.ReviewModel{
		Name:     strings.TrimSpace(dto.Name),
		Company:  strings.TrimSpace(dto.Company),
		Role:     strings.TrimSpace(dto.Role),
		Title:    deriveTitle(dto.Role, dto.Company),
		Rating:   dto.Rating,
		Comment:  strings.TrimSpace(dto.Comment),
		Approved: false,
	}
	if err := s.store.Create(r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListApproved is the public listing, newest first.
func (s *Service) ListApproved(q pagination.Query) ([]models.ReviewModel, response.Pagination, error) {
	return s.store.ListByApproval(true, q)
}

// ListPending is the moderation queue, newest first.
func (s *Service) ListPending(q pagination.Query) ([]models.ReviewModel, response.Pagination, error) {
	return s.store.ListByApproval(false, q)
}

// SetApproval flips the moderation flag. Setting the current value again is
// a no-op success.
func (s *Service) SetApproval(id string, approved bool) error {
	existing, err := s.store.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return errReviewNotFound
	}
	_, err = s.store.SetApproval(id, approved)
	return err
}

// Delete removes a review regardless of its state.
func (s *Service) Delete(id string) error {
	affected, err := s.store.Delete(id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return errReviewNotFound
	}
	return nil
}

// GetStats reports count and mean rating over approved reviews only.
func (s *Service) GetStats() (*Stats, error) {
	count, avg, err := s.store.ApprovedStats()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return &Stats{Count: 0, Average: placeholderAverage}, nil
	}
	return &Stats{Count: count, Average: fmt.Sprintf("%.1f", avg)}, nil
}

func (s *Service) extraDenyWords() []string {
	if s.cfgSvc == nil {
		return nil
	}
	cfg, err := s.cfgSvc.Get()
	if err != nil || cfg == nil {
		return nil
	}
	return cfg.Review.ExtraDenyWords
}
