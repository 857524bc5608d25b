package routes

import (
	"context"
	"errors"
	"expert-api/internal/directory"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	ds      *directory.Dataset
	experts []directory.Expert
	err     error
	calls   atomic.Int32
	gate    chan struct{}
}

func (f *fakeSource) Dataset(ctx context.Context, staleOK bool) (*directory.Dataset, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.ds, nil
}

func (f *fakeSource) Experts(ctx context.Context, staleOK bool) ([]directory.Expert, error) {
	return f.experts, nil
}

type memStore struct {
	mu       sync.Mutex
	manifest *Manifest
	menu     *Menu
	saves    int
}

func (s *memStore) Save(_ context.Context, m *Manifest, menu *Menu) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manifest, s.menu = m, menu
	s.saves++
	return nil
}

func (s *memStore) Load(context.Context) (*Manifest, *Menu, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manifest, s.menu, nil
}

func texasSource() *fakeSource {
	return &fakeSource{
		ds:      texasDataset(),
		experts: []directory.Expert{{Entity: ent("e1", "Ann", "ann"), RegionID: "r1", SkillIDs: []string{"s1"}}},
	}
}

func TestServiceReportsNoManifestBeforeGeneration(t *testing.T) {
	svc := NewService(texasSource(), nil)

	_, err := svc.Manifest()
	assert.ErrorIs(t, err, ErrNoManifest)
	_, err = svc.Menu()
	assert.ErrorIs(t, err, ErrNoManifest)
	_, _, err = svc.Lookup("/texas")
	assert.ErrorIs(t, err, ErrNoManifest)
	_, ok := svc.Stats()
	assert.False(t, ok)
}

func TestServiceRegenerate(t *testing.T) {
	store := &memStore{}
	svc := NewService(texasSource(), store)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	m, err := svc.Regenerate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, m.Count())
	assert.Equal(t, fixed, m.GeneratedAt())

	p, ok, err := svc.Lookup("/Texas/Web-Design/WordPress/")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, p.ExpertCount)

	menu, err := svc.Menu()
	require.NoError(t, err)
	require.Len(t, menu.Regions, 1)

	stats, ok := svc.Stats()
	require.True(t, ok)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, store.saves)
}

func TestServiceKeepsPreviousManifestOnFailure(t *testing.T) {
	src := texasSource()
	svc := NewService(src, nil)
	first, err := svc.Regenerate(context.Background())
	require.NoError(t, err)

	src.err = errors.New("upstream down")
	_, err = svc.Regenerate(context.Background())
	require.Error(t, err)

	cur, err := svc.Manifest()
	require.NoError(t, err)
	assert.Same(t, first, cur)
}

func TestServiceSharesConcurrentRegeneration(t *testing.T) {
	src := texasSource()
	src.gate = make(chan struct{})
	svc := NewService(src, nil)

	var wg sync.WaitGroup
	results := make([]*Manifest, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := svc.Regenerate(context.Background())
			assert.NoError(t, err)
			results[i] = m
		}(i)
	}
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.LessOrEqual(t, src.calls.Load(), int32(5))
	cur, _ := svc.Manifest()
	shared := 0
	for _, m := range results {
		require.NotNil(t, m)
		if m == cur {
			shared++
		}
	}
	assert.Positive(t, shared)
}

func TestServiceWarmFromStore(t *testing.T) {
	built := Build([]Route{{Path: "/texas/web-design", Params: Params{
		Kind: KindRegionCategory, Region: "Texas", RegionSlug: "texas", RegionID: "r1",
		Category: "Web Design", CategorySlug: "web-design", CategoryID: "c1", ExpertCount: 2,
	}}}, time.Now())
	store := &memStore{manifest: built}
	svc := NewService(texasSource(), store)

	ok, err := svc.Warm(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	m, err := svc.Manifest()
	require.NoError(t, err)
	assert.Same(t, built, m)

	// menu missing from the store is derived on demand
	menu, err := svc.Menu()
	require.NoError(t, err)
	require.Len(t, menu.Categories, 1)
	assert.Equal(t, 2, menu.Categories[0].TotalExperts)

	ok, err = svc.Warm(context.Background())
	require.NoError(t, err)
	assert.False(t, ok, "already holding a manifest")
}

func TestServiceWarmWithoutStore(t *testing.T) {
	svc := NewService(texasSource(), NewRedisStore(nil, "", 0))

	ok, err := svc.Warm(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
