package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gabriel/manga-site-adapters/internal/connectors"
	"github.com/gabriel/manga-site-adapters/internal/models"
	"github.com/gabriel/manga-site-adapters/internal/notifications"
)

type healthRecord struct {
	healthy bool
	errText string
}

type fakeRepo struct {
	sources  []models.Source
	recorded map[string]healthRecord
}

func (f *fakeRepo) List() ([]models.Source, error) {
	return f.sources, nil
}

func (f *fakeRepo) RecordHealth(key string, healthy bool, errText string, _ time.Time) error {
	if f.recorded == nil {
		f.recorded = map[string]healthRecord{}
	}
	f.recorded[key] = healthRecord{healthy: healthy, errText: errText}
	return nil
}

type fakeConnector struct {
	key    string
	health error
}

func (f fakeConnector) Key() string                       { return f.key }
func (f fakeConnector) Name() string                      { return "Source " + f.key }
func (f fakeConnector) Kind() string                      { return connectors.KindYAML }
func (f fakeConnector) Lang() string                      { return "en" }
func (f fakeConnector) BaseURL() string                   { return "" }
func (f fakeConnector) NSFW() bool                        { return false }
func (f fakeConnector) SupportsLatest() bool              { return false }
func (f fakeConnector) Filters() []models.Filter          { return nil }
func (f fakeConnector) HealthCheck(context.Context) error { return f.health }
func (f fakeConnector) Popular(context.Context, int) (models.ListingPage, error) {
	return models.ListingPage{}, nil
}
func (f fakeConnector) Latest(context.Context, int) (models.ListingPage, error) {
	return models.ListingPage{}, connectors.ErrUnsupported
}
func (f fakeConnector) Search(context.Context, int, string, []models.FilterSelection) (models.ListingPage, error) {
	return models.ListingPage{}, nil
}
func (f fakeConnector) Details(context.Context, models.MangaSummary) (models.MangaDetails, error) {
	return models.MangaDetails{}, nil
}
func (f fakeConnector) Chapters(context.Context, models.MangaSummary) ([]models.Chapter, error) {
	return nil, nil
}
func (f fakeConnector) Pages(context.Context, models.Chapter) ([]models.Page, error) {
	return nil, nil
}

type fakeNotifier struct {
	messages []notifications.Message
}

func (f *fakeNotifier) Notify(_ context.Context, message notifications.Message) error {
	f.messages = append(f.messages, message)
	return nil
}

func boolPtr(value bool) *bool {
	return &value
}

func newTestRegistry(t *testing.T, items ...fakeConnector) *connectors.Registry {
	t.Helper()
	registry := connectors.NewRegistry()
	for _, item := range items {
		if err := registry.Register(item); err != nil {
			t.Fatalf("register %s: %v", item.key, err)
		}
	}
	return registry
}

func TestProberRunOnce_NotifiesOnTransitions(t *testing.T) {
	repo := &fakeRepo{sources: []models.Source{
		{Key: "down", Enabled: true, Healthy: boolPtr(true)},
		{Key: "back", Enabled: true, Healthy: boolPtr(false)},
		{Key: "steady", Enabled: true, Healthy: boolPtr(true)},
	}}
	registry := newTestRegistry(t,
		fakeConnector{key: "down", health: errors.New("unexpected status 503")},
		fakeConnector{key: "back"},
		fakeConnector{key: "steady"},
	)
	notifier := &fakeNotifier{}

	prober := NewProber(repo, registry, notifier, ProberConfig{Interval: time.Minute}, nil)
	if err := prober.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once failed: %v", err)
	}

	if len(repo.recorded) != 3 {
		t.Fatalf("expected 3 health records, got %d", len(repo.recorded))
	}
	if record := repo.recorded["down"]; record.healthy || record.errText != "unexpected status 503" {
		t.Fatalf("unexpected record for down: %+v", record)
	}
	if len(notifier.messages) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifier.messages))
	}
	if notifier.messages[0].Title != "Source back is reachable again" {
		t.Fatalf("unexpected first notification: %+v", notifier.messages[0])
	}
	if notifier.messages[1].Title != "Source down is unreachable" {
		t.Fatalf("unexpected second notification: %+v", notifier.messages[1])
	}
}

func TestProberRunOnce_SkipsDisabledSources(t *testing.T) {
	repo := &fakeRepo{sources: []models.Source{{Key: "off", Enabled: false}}}
	registry := newTestRegistry(t, fakeConnector{key: "off", health: errors.New("down")})
	notifier := &fakeNotifier{}

	prober := NewProber(repo, registry, notifier, ProberConfig{}, nil)
	if err := prober.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once failed: %v", err)
	}
	if len(repo.recorded) != 0 || len(notifier.messages) != 0 {
		t.Fatalf("expected disabled source to be skipped")
	}
}

func TestProberRunOnce_FirstCheckOnlyNotifiesWhenDown(t *testing.T) {
	repo := &fakeRepo{}
	registry := newTestRegistry(t,
		fakeConnector{key: "fresh"},
		fakeConnector{key: "broken", health: errors.New("dial tcp: connection refused")},
	)
	notifier := &fakeNotifier{}

	prober := NewProber(repo, registry, notifier, ProberConfig{}, nil)
	if err := prober.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once failed: %v", err)
	}
	if len(notifier.messages) != 1 || notifier.messages[0].Context["source"] != "broken" {
		t.Fatalf("expected one notification for broken, got %+v", notifier.messages)
	}
}

func TestProberStartStopsWithContext(t *testing.T) {
	prober := NewProber(&fakeRepo{}, newTestRegistry(t), nil, ProberConfig{Interval: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	prober.Start(ctx)
	cancel()

	select {
	case <-prober.stopCh:
	case <-time.After(2 * time.Second):
		t.Fatalf("prober did not stop")
	}
}
