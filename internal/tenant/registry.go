package tenant

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// SiteConfig describes one branded reading site served by this deployment.
type SiteConfig struct {
	SiteID            string `json:"site_id"`
	SiteName          string `json:"site_name"`
	Domain            string `json:"domain"`
	PremiumPriceCents int    `json:"premium_price_cents"`
	PaymentProvider   string `json:"payment_provider"`
}

type SitesFile struct {
	Sites []SiteConfig `json:"sites"`
}

// Registry holds the site configs, loaded once at startup and injected where
// needed. Read-mostly; safe under concurrent reads.
type Registry struct {
	mu    sync.RWMutex
	sites map[string]*SiteConfig
}

func NewRegistry() *Registry {
	return &Registry{
		sites: make(map[string]*SiteConfig),
	}
}

func LoadFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sites config: %w", err)
	}

	var file SitesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sites config: %w", err)
	}

	registry := NewRegistry()
	for i := range file.Sites {
		registry.Register(&file.Sites[i])
	}
	return registry, nil
}

func (r *Registry) Register(cfg *SiteConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sites[cfg.SiteID] = cfg
}

func (r *Registry) Get(siteID string) *SiteConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sites[siteID]
}

func (r *Registry) Exists(siteID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sites[siteID]
	return ok
}

func (r *Registry) All() []*SiteConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]*SiteConfig, 0, len(r.sites))
	for _, cfg := range r.sites {
		result = append(result, cfg)
	}
	return result
}
