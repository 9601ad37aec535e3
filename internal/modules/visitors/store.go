package visitors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/folio-space/core/internal/models"
	pkgredis "github.com/folio-space/core/internal/pkg/redis"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	counterKey  = "visitor_count"
	dedupKeyFmt = "folio:visit:%s:%s" // date, ip
	dedupTTL    = 24 * time.Hour
)

// CounterStore persists the running total.
type CounterStore interface {
	// Increment adds one to the counter, seeding the row at zero first.
	Increment() error
	// Raw returns the stored value, "" when no row exists yet.
	Raw() (string, error)
}

// VisitMarker remembers which IPs already visited on a given day.
type VisitMarker interface {
	// Mark records the visit and reports whether it is the first one today.
	Mark(ctx context.Context, day, ip string) (bool, error)
}

type gormCounterStore struct{ db *gorm.DB }

func NewStore(db *gorm.DB) CounterStore { return &gormCounterStore{db: db} }

func (s *gormCounterStore) Increment() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&models.OptionModel{Name: counterKey, Value: "0"}).Error; err != nil {
			return err
		}
		return tx.Model(&models.OptionModel{}).
			Where("name = ?", counterKey).
			Update("value", gorm.Expr("CAST(value AS SIGNED) + 1")).Error
	})
}

func (s *gormCounterStore) Raw() (string, error) {
	var opt models.OptionModel
	if err := s.db.Where("name = ?", counterKey).First(&opt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return opt.Value, nil
}

type redisVisitMarker struct{ rdb *pkgredis.Client }

func NewMarker(rdb *pkgredis.Client) VisitMarker { return &redisVisitMarker{rdb: rdb} }

func (m *redisVisitMarker) Mark(ctx context.Context, day, ip string) (bool, error) {
	if m.rdb == nil {
		return true, nil
	}
	key := fmt.Sprintf(dedupKeyFmt, day, ip)
	return m.rdb.SetNX(ctx, key, "1", dedupTTL)
}
