// Package sites holds the configurations of the sites compiled into the
// binary. Sites added at runtime live in YAML files instead.
package sites

import (
	"fmt"

	"github.com/gabriel/manga-site-adapters/internal/connectors"
	"github.com/gabriel/manga-site-adapters/internal/connectors/sitetemplate"
)

func All() []sitetemplate.Config {
	return []sitetemplate.Config{
		BainianManga(),
		Sekaikomik(),
	}
}

func Connectors(newFetcher sitetemplate.FetcherFactory, opts ...sitetemplate.Option) ([]connectors.Connector, error) {
	configs := All()
	built := make([]connectors.Connector, 0, len(configs))
	for _, cfg := range configs {
		var fetcher sitetemplate.Fetcher
		if newFetcher != nil {
			fetcher = newFetcher(cfg)
		}
		connector, err := sitetemplate.NewConnector(cfg, connectors.KindBuiltin, fetcher, opts...)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", cfg.Key, err)
		}
		built = append(built, connector)
	}
	return built, nil
}
