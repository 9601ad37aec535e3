package visitors

import (
	"context"
	"strconv"
	"time"
)

type Service struct {
	store  CounterStore
	marker VisitMarker
}

func NewService(store CounterStore, marker VisitMarker) *Service {
	return &Service{store: store, marker: marker}
}

// Hit counts one visit. The same IP only counts once per calendar day; a
// failed dedup check still counts the hit. Returns the current total either
// way.
func (s *Service) Hit(ctx context.Context, ip string) (int64, error) {
	fresh := true
	if ip != "" {
		first, err := s.marker.Mark(ctx, time.Now().Format("2006-01-02"), ip)
		if err == nil {
			fresh = first
		}
	}

	if fresh {
		if err := s.store.Increment(); err != nil {
			return 0, err
		}
	}
	return s.Count()
}

// Count reads the stored total; a missing row or an unparseable value reads
// as zero.
func (s *Service) Count() (int64, error) {
	raw, err := s.store.Raw()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, nil
	}
	return n, nil
}
