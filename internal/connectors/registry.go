package connectors

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

type Registry struct {
	mu         sync.RWMutex
	connectors map[string]Connector
	hosts      map[string]string
}

type Descriptor struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	Lang           string `json:"lang"`
	BaseURL        string `json:"baseUrl"`
	NSFW           bool   `json:"nsfw"`
	SupportsLatest bool   `json:"supportsLatest"`
}

type HealthStatus struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

func NewRegistry() *Registry {
	return &Registry{
		connectors: map[string]Connector{},
		hosts:      map[string]string{},
	}
}

func Describe(connector Connector) Descriptor {
	return Descriptor{
		Key:            connector.Key(),
		Name:           connector.Name(),
		Kind:           connector.Kind(),
		Lang:           connector.Lang(),
		BaseURL:        connector.BaseURL(),
		NSFW:           connector.NSFW(),
		SupportsLatest: connector.SupportsLatest(),
	}
}

func (r *Registry) Register(connector Connector) error {
	if connector == nil {
		return fmt.Errorf("connector is nil")
	}

	key := normalizeKey(connector.Key())
	if key == "" {
		return fmt.Errorf("connector key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.connectors[key]; exists {
		return fmt.Errorf("connector %q already registered", key)
	}

	r.connectors[key] = connector
	if host := hostKey(connector.BaseURL()); host != "" {
		if _, taken := r.hosts[host]; !taken {
			r.hosts[host] = key
		}
	}
	return nil
}

// Get accepts a connector key, a site host, or any URL on that host.
func (r *Registry) Get(key string) (Connector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	normalized := normalizeKey(key)
	if connector, ok := r.connectors[normalized]; ok {
		return connector, true
	}

	host := hostKey(normalized)
	if host == "" {
		return nil, false
	}
	connectorKey, ok := r.hosts[host]
	if !ok {
		return nil, false
	}
	connector, ok := r.connectors[connectorKey]
	return connector, ok
}

func (r *Registry) All() []Connector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]Connector, 0, len(r.connectors))
	for _, connector := range r.connectors {
		items = append(items, connector)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Key() < items[j].Key()
	})
	return items
}

func (r *Registry) List() []Descriptor {
	list := r.All()
	items := make([]Descriptor, 0, len(list))
	for _, connector := range list {
		items = append(items, Describe(connector))
	}
	return items
}

func (r *Registry) Health(ctx context.Context) []HealthStatus {
	list := r.All()

	statuses := make([]HealthStatus, 0, len(list))
	for _, connector := range list {
		statuses = append(statuses, CheckHealth(ctx, connector))
	}

	return statuses
}

func CheckHealth(ctx context.Context, connector Connector) HealthStatus {
	err := connector.HealthCheck(ctx)
	status := HealthStatus{
		Key:     connector.Key(),
		Name:    connector.Name(),
		Kind:    connector.Kind(),
		Healthy: err == nil,
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status
}

func normalizeKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func hostKey(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || !strings.Contains(trimmed, ".") {
		return ""
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}

	host := strings.ToLower(parsed.Hostname())
	for _, prefix := range []string{"www.", "m."} {
		host = strings.TrimPrefix(host, prefix)
	}
	return host
}
