package visitors

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounterStore struct {
	count  int64
	hasRow bool
	raw    string // overrides the formatted count when set
}

func (f *fakeCounterStore) Increment() error {
	f.count++
	f.hasRow = true
	return nil
}

func (f *fakeCounterStore) Raw() (string, error) {
	if !f.hasRow {
		return "", nil
	}
	if f.raw != "" {
		return f.raw, nil
	}
	return strconv.FormatInt(f.count, 10), nil
}

type fakeVisitMarker struct {
	seen map[string]bool
	err  error
}

func newFakeVisitMarker() *fakeVisitMarker {
	return &fakeVisitMarker{seen: map[string]bool{}}
}

func (f *fakeVisitMarker) Mark(ctx context.Context, day, ip string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	key := day + "/" + ip
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func TestHitCountsOncePerIPPerDay(t *testing.T) {
	store := &fakeCounterStore{}
	svc := NewService(store, newFakeVisitMarker())
	ctx := context.Background()

	n, err := svc.Hit(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = svc.Hit(ctx, "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "a repeat visit the same day does not count")

	n, err = svc.Hit(ctx, "198.51.100.4")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestHitCountsWhenDedupFails(t *testing.T) {
	store := &fakeCounterStore{}
	marker := newFakeVisitMarker()
	marker.err = errors.New("redis down")
	svc := NewService(store, marker)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Hit(ctx, "203.0.113.7")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(2), store.count, "a broken dedup marker never drops hits")
}

func TestHitWithoutIPAlwaysCounts(t *testing.T) {
	store := &fakeCounterStore{}
	svc := NewService(store, newFakeVisitMarker())
	ctx := context.Background()

	_, err := svc.Hit(ctx, "")
	require.NoError(t, err)
	_, err = svc.Hit(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), store.count)
}

func TestCountMissingRowReadsZero(t *testing.T) {
	svc := NewService(&fakeCounterStore{}, newFakeVisitMarker())

	n, err := svc.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCountUnparseableValueReadsZero(t *testing.T) {
	store := &fakeCounterStore{hasRow: true, raw: "not-a-number"}
	svc := NewService(store, newFakeVisitMarker())

	n, err := svc.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}
