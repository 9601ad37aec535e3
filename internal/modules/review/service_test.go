package review

import (
	"fmt"
	"testing"

	"github.com/folio-space/core/internal/config"
	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReviewStore struct {
	reviews map[string]*models.ReviewModel
	nextID  int
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{reviews: map[string]*models.ReviewModel{}}
}

func (f *fakeReviewStore) Create(r *models.ReviewModel) error {
	f.nextID++
	r.ID = fmt.Sprintf("review-%d", f.nextID)
	cp := *r
	f.reviews[r.ID] = &cp
	return nil
}

func (f *fakeReviewStore) GetByID(id string) (*models.ReviewModel, error) {
	if r, ok := f.reviews[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeReviewStore) ListByApproval(approved bool, q pagination.Query) ([]models.ReviewModel, response.Pagination, error) {
	var out []models.ReviewModel
	for _, r := range f.reviews {
		if r.Approved == approved {
			out = append(out, *r)
		}
	}
	return out, response.Pagination{Total: int64(len(out))}, nil
}

func (f *fakeReviewStore) SetApproval(id string, approved bool) (int64, error) {
	if r, ok := f.reviews[id]; ok {
		r.Approved = approved
		return 1, nil
	}
	return 0, nil
}

func (f *fakeReviewStore) Delete(id string) (int64, error) {
	if _, ok := f.reviews[id]; ok {
		delete(f.reviews, id)
		return 1, nil
	}
	return 0, nil
}

func (f *fakeReviewStore) ApprovedStats() (int64, float64, error) {
	var count int64
	var sum int
	for _, r := range f.reviews {
		if r.Approved {
			count++
			sum += r.Rating
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return count, float64(sum) / float64(count), nil
}

type staticConfigSource struct{ cfg *config.SiteConfig }

func (s staticConfigSource) Get() (*config.SiteConfig, error) { return s.cfg, nil }

func newTestService(store ReviewStore) *Service {
	return NewService(store, staticConfigSource{cfg: config.DefaultSiteConfig()})
}

func validSubmission() *SubmitReviewDTO {
	return &SubmitReviewDTO{
		Name:    "Jane Doe",
		Company: "Acme",
		Role:    "CTO",
		Rating:  5,
		Comment: "A pleasure to work with, shipped on time.",
	}
}

func TestSubmitStartsUnapproved(t *testing.T) {
	store := newFakeReviewStore()
	svc := newTestService(store)

	r, err := svc.Submit(validSubmission())
	require.NoError(t, err)

	assert.False(t, r.Approved, "new submissions wait for moderation")
	assert.Equal(t, "CTO at Acme", r.Title)
	assert.NotEmpty(t, r.ID)
}

func TestSubmitValidationOrder(t *testing.T) {
	svc := newTestService(newFakeReviewStore())

	dto := validSubmission()
	dto.Comment = "total spam"
	dto.Name = "Jane2"
	dto.Rating = 0
	_, err := svc.Submit(dto)
	assert.ErrorIs(t, err, errInappropriateContent, "denylist check runs first")

	dto = validSubmission()
	dto.Name = "Jane2"
	dto.Rating = 0
	_, err = svc.Submit(dto)
	assert.ErrorIs(t, err, errInvalidName)

	dto = validSubmission()
	dto.Rating = 6
	_, err = svc.Submit(dto)
	assert.ErrorIs(t, err, errInvalidRating)
}

func TestSubmitDenylistCoversAllFields(t *testing.T) {
	svc := newTestService(newFakeReviewStore())

	for _, mutate := range []func(*SubmitReviewDTO){
		func(d *SubmitReviewDTO) { d.Company = "Spam Inc" },
		func(d *SubmitReviewDTO) { d.Role = "chief spam officer" },
		func(d *SubmitReviewDTO) { d.Comment = "buy viagra" },
	} {
		dto := validSubmission()
		mutate(dto)
		_, err := svc.Submit(dto)
		assert.ErrorIs(t, err, errInappropriateContent)
	}
}

func TestSubmitExtraDenyWordsFromOptions(t *testing.T) {
	cfg := config.DefaultSiteConfig()
	cfg.Review.ExtraDenyWords = []string{"crypto"}
	svc := NewService(newFakeReviewStore(), staticConfigSource{cfg: cfg})

	dto := validSubmission()
	dto.Comment = "great crypto opportunity"
	_, err := svc.Submit(dto)
	assert.ErrorIs(t, err, errInappropriateContent)
}

func TestSetApproval(t *testing.T) {
	store := newFakeReviewStore()
	svc := newTestService(store)

	r, err := svc.Submit(validSubmission())
	require.NoError(t, err)

	require.NoError(t, svc.SetApproval(r.ID, true))
	got, _ := store.GetByID(r.ID)
	assert.True(t, got.Approved)

	// setting the same value again is a no-op success
	require.NoError(t, svc.SetApproval(r.ID, true))

	err = svc.SetApproval("missing", true)
	assert.ErrorIs(t, err, errReviewNotFound)
}

func TestDelete(t *testing.T) {
	store := newFakeReviewStore()
	svc := newTestService(store)

	r, err := svc.Submit(validSubmission())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(r.ID))
	assert.ErrorIs(t, svc.Delete(r.ID), errReviewNotFound)
}

func TestGetStatsEmptyUsesPlaceholder(t *testing.T) {
	svc := newTestService(newFakeReviewStore())

	stats, err := svc.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Count)
	assert.Equal(t, "5.0", stats.Average)
}

func TestGetStatsAveragesApprovedOnly(t *testing.T) {
	store := newFakeReviewStore()
	svc := newTestService(store)

	ratings := []int{5, 4, 2}
	for _, rating := range ratings {
		dto := validSubmission()
		dto.Rating = rating
		r, err := svc.Submit(dto)
		require.NoError(t, err)
		if rating >= 4 {
			require.NoError(t, svc.SetApproval(r.ID, true))
		}
	}

	stats, err := svc.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Count)
	assert.Equal(t, "4.5", stats.Average)
}
