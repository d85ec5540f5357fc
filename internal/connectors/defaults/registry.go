package defaults

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel/manga-site-adapters/internal/connectors"
	"github.com/gabriel/manga-site-adapters/internal/connectors/sites"
	"github.com/gabriel/manga-site-adapters/internal/connectors/sitetemplate"
	"github.com/gabriel/manga-site-adapters/internal/fetch"
)

type Options struct {
	SitesPath         string
	Timeout           time.Duration
	UserAgent         string
	RequestsPerSecond float64
}

// NewRegistry registers the built-in sites and then every enabled YAML site
// in SitesPath. A broken YAML file does not stop the others from loading; the
// returned error reports it alongside a usable registry.
func NewRegistry(opts Options) (*connectors.Registry, error) {
	newFetcher := fetcherFactory(opts)

	registry := connectors.NewRegistry()
	builtin, err := sites.Connectors(newFetcher)
	if err != nil {
		return nil, err
	}
	for _, connector := range builtin {
		if err := registry.Register(connector); err != nil {
			return nil, fmt.Errorf("register builtin site %q: %w", connector.Key(), err)
		}
	}

	loaded, loadErr := sitetemplate.LoadFromDir(opts.SitesPath, newFetcher)
	failures := make([]string, 0)
	if loadErr != nil {
		failures = append(failures, loadErr.Error())
	}
	for _, connector := range loaded {
		if err := registry.Register(connector); err != nil {
			failures = append(failures, fmt.Sprintf("register yaml site %q: %v", connector.Key(), err))
		}
	}

	if len(failures) > 0 {
		return registry, errors.New(strings.Join(failures, " | "))
	}
	return registry, nil
}

// fetcherFactory gives every site its own client so one slow site cannot
// use up another site's request budget.
func fetcherFactory(opts Options) sitetemplate.FetcherFactory {
	return func(cfg sitetemplate.Config) sitetemplate.Fetcher {
		rps := opts.RequestsPerSecond
		if cfg.RequestsPerSecond > 0 {
			rps = cfg.RequestsPerSecond
		}
		return fetch.NewClient(fetch.Options{
			Timeout:           opts.Timeout,
			UserAgent:         opts.UserAgent,
			RequestsPerSecond: rps,
		})
	}
}
