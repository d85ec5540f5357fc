package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabriel/manga-site-adapters/internal/connectors"
	"github.com/gabriel/manga-site-adapters/internal/models"
	"github.com/gabriel/manga-site-adapters/internal/notifications"
)

type healthRepository interface {
	List() ([]models.Source, error)
	RecordHealth(key string, healthy bool, errText string, checkedAt time.Time) error
}

// Prober periodically checks every enabled source and records the outcome.
// A notification goes out whenever a source changes between reachable and
// unreachable; a source seen for the first time only notifies when it is down.
type Prober struct {
	repo         healthRepository
	registry     *connectors.Registry
	notifier     notifications.Notifier
	interval     time.Duration
	checkTimeout time.Duration
	logger       *slog.Logger
	now          func() time.Time
	stopCh       chan struct{}
}

type ProberConfig struct {
	Interval     time.Duration
	CheckTimeout time.Duration
}

func NewProber(repo healthRepository, registry *connectors.Registry, notifier notifications.Notifier, cfg ProberConfig, logger *slog.Logger) *Prober {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Minute
	}
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = 15 * time.Second
	}
	if notifier == nil {
		notifier = notifications.NoopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Prober{
		repo:         repo,
		registry:     registry,
		notifier:     notifier,
		interval:     cfg.Interval,
		checkTimeout: cfg.CheckTimeout,
		logger:       logger,
		now:          time.Now,
		stopCh:       make(chan struct{}),
	}
}

func (p *Prober) Start(ctx context.Context) {
	p.logger.Info("health prober started", "interval", p.interval.String())
	ticker := time.NewTicker(p.interval)
	go func() {
		defer ticker.Stop()
		if err := p.RunOnce(ctx); err != nil {
			p.logger.Warn("health prober initial run failed", "error", err)
		}
		for {
			select {
			case <-ctx.Done():
				p.logger.Info("health prober stopped")
				close(p.stopCh)
				return
			case <-ticker.C:
				if err := p.RunOnce(ctx); err != nil {
					p.logger.Warn("health prober cycle failed", "error", err)
				}
			}
		}
	}()
}

func (p *Prober) StopWait(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	select {
	case <-p.stopCh:
	case <-time.After(timeout):
	}
}

func (p *Prober) RunOnce(ctx context.Context) error {
	sources, err := p.repo.List()
	if err != nil {
		return fmt.Errorf("load sources for probing: %w", err)
	}
	known := make(map[string]models.Source, len(sources))
	for _, source := range sources {
		known[source.Key] = source
	}

	for _, connector := range p.registry.All() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		source, isKnown := known[connector.Key()]
		if isKnown && !source.Enabled {
			p.logger.Debug("skipping disabled source", "source", connector.Key())
			continue
		}

		checkCtx, cancel := context.WithTimeout(ctx, p.checkTimeout)
		status := connectors.CheckHealth(checkCtx, connector)
		cancel()

		checkedAt := p.now().UTC()
		if err := p.repo.RecordHealth(status.Key, status.Healthy, status.Error, checkedAt); err != nil {
			p.logger.Warn("record source health failed", "source", status.Key, "error", err)
			continue
		}

		if !status.Healthy {
			p.logger.Warn("source unhealthy", "source", status.Key, "error", status.Error)
		}

		message, changed := transition(source.Healthy, status, checkedAt)
		if !changed {
			continue
		}
		if err := p.notifier.Notify(ctx, message); err != nil {
			p.logger.Warn("health notification failed", "source", status.Key, "error", err)
		}
	}

	return nil
}

func transition(previous *bool, status connectors.HealthStatus, checkedAt time.Time) (notifications.Message, bool) {
	switch {
	case previous == nil && !status.Healthy:
		return notifications.SourceDown(status, checkedAt), true
	case previous == nil:
		return notifications.Message{}, false
	case *previous && !status.Healthy:
		return notifications.SourceDown(status, checkedAt), true
	case !*previous && status.Healthy:
		return notifications.SourceRecovered(status, checkedAt), true
	default:
		return notifications.Message{}, false
	}
}
