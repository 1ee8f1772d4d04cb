// Package registry loads the feed and source configuration. The config ships
// embedded so binaries are self-contained; a path can override it for local
// development, and ${VAR} references are expanded from the environment.
package registry

import (
	"context"
	"embed"
	"fmt"
	"os"
	"time"

	"github.com/rebelcode/iris/internal/engine"
	"github.com/rebelcode/iris/internal/media"
	"github.com/rebelcode/iris/internal/providers"
	"gopkg.in/yaml.v3"
)

//go:embed config/feeds.yaml
var feedsYAML embed.FS

// Registry holds the configuration for all feeds and their sources.
type Registry struct {
	API   APIConfig    `yaml:"api"`
	Cache CacheConfig  `yaml:"cache"`
	Feeds []FeedConfig `yaml:"feeds"`
}

// APIConfig points at the remote media API.
type APIConfig struct {
	BaseURL string                `yaml:"base_url"`
	Token   string                `yaml:"token,omitempty"` // e.g. ${IRIS_API_TOKEN}
	Fetch   providers.FetchConfig `yaml:"fetch,omitempty"`
}

// CacheConfig tunes the local response cache.
type CacheConfig struct {
	Path       string `yaml:"path,omitempty"` // default iris-cache.db
	TTLMinutes int    `yaml:"ttl_minutes,omitempty"`
}

// FeedConfig defines one feed: which sources it aggregates and its display
// options.
type FeedConfig struct {
	ID      string         `yaml:"id"`
	Name    string         `yaml:"name,omitempty"`
	Sources []SourceConfig `yaml:"sources"`
	Options map[string]any `yaml:"options,omitempty"`
}

// SourceConfig defines a single source within a feed.
type SourceConfig struct {
	Kind string `yaml:"kind"` // "account", "hashtag", "story", "tagged", "listing"
	Name string `yaml:"name"`

	// For account sources
	AccountType string `yaml:"account_type,omitempty"` // "personal" or "business"

	// For hashtag sources
	Order string `yaml:"order,omitempty"` // "recent" or "top"

	// For listing sources scraped from HTML
	URL       string                   `yaml:"url,omitempty"`
	Selectors providers.SelectorConfig `yaml:"selectors,omitempty"`
	NextPage  string                   `yaml:"next_page,omitempty"`
	MaxPages  int                      `yaml:"max_pages,omitempty"`
}

// LoadRegistry reads the embedded feeds.yaml, or the file at path when one
// is given and exists.
func LoadRegistry(path string) (*Registry, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	}
	if path == "" || err != nil {
		data, err = feedsYAML.ReadFile("config/feeds.yaml")
		if err != nil {
			return nil, fmt.Errorf("reading embedded config: %w", err)
		}
	}

	expanded := os.ExpandEnv(string(data))

	var reg Registry
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	for _, feed := range reg.Feeds {
		if feed.ID == "" {
			return nil, fmt.Errorf("config contains a feed with no id")
		}
		for _, src := range feed.Sources {
			if _, err := buildSource(src); err != nil {
				return nil, fmt.Errorf("feed %s: %w", feed.ID, err)
			}
		}
	}

	return &reg, nil
}

// Feed resolves a configured feed by id.
func (r *Registry) Feed(id string) (*engine.Feed, error) {
	for _, fc := range r.Feeds {
		if fc.ID != id {
			continue
		}

		sources := make([]engine.Source, 0, len(fc.Sources))
		for _, sc := range fc.Sources {
			source, err := buildSource(sc)
			if err != nil {
				return nil, fmt.Errorf("feed %s: %w", id, err)
			}
			sources = append(sources, source)
		}
		return engine.NewFeed(sources, fc.Options), nil
	}
	return nil, fmt.Errorf("no feed with id %q", id)
}

// FeedIDs lists the configured feed ids in config order.
func (r *Registry) FeedIDs() []string {
	ids := make([]string, 0, len(r.Feeds))
	for _, fc := range r.Feeds {
		ids = append(ids, fc.ID)
	}
	return ids
}

// ListingSources returns the configured HTML listing sources paired with
// providers that can scrape them, keyed by source key.
func (r *Registry) ListingSources() map[string]*providers.HTMLProvider {
	out := make(map[string]*providers.HTMLProvider)
	for _, fc := range r.Feeds {
		for _, sc := range fc.Sources {
			if sc.Kind != "listing" {
				continue
			}
			source, err := buildSource(sc)
			if err != nil {
				continue
			}
			out[source.Key] = providers.NewHTMLProvider(sc.Selectors, sc.NextPage, sc.MaxPages)
		}
	}
	return out
}

// BuildProvider assembles the live provider stack described by the config:
// a rate-limited API provider for the API-served source types, plus the
// per-source HTML providers for listing sources.
func (r *Registry) BuildProvider() engine.Provider {
	fetcher := providers.NewRateLimitedFetcher(r.API.Fetch)
	api := providers.NewAPIProvider(fetcher, r.API.BaseURL, r.API.Token)

	listings := r.ListingSources()
	listing := engine.ProviderFunc(func(ctx context.Context, source engine.Source, limit, offset int) *engine.Result {
		p, ok := listings[source.Key]
		if !ok {
			return engine.Empty()
		}
		return p.GetItems(ctx, source, limit, offset)
	})

	return engine.NewDelegateProvider(map[string]engine.Provider{
		media.TypePersonalAccount: api,
		media.TypeBusinessAccount: api,
		media.TypeRecentHashtag:   api,
		media.TypePopularHashtag:  api,
		media.TypeUserStory:       api,
		media.TypeTaggedAccount:   api,
		media.TypeListingPage:     listing,
	})
}

// CachePath returns the configured cache location, defaulting to a local
// file.
func (r *Registry) CachePath() string {
	if r.Cache.Path == "" {
		return "iris-cache.db"
	}
	return r.Cache.Path
}

// CacheTTL returns the configured cache lifetime, defaulting to an hour.
func (r *Registry) CacheTTL() time.Duration {
	if r.Cache.TTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(r.Cache.TTLMinutes) * time.Minute
}

func buildSource(sc SourceConfig) (engine.Source, error) {
	if sc.Name == "" {
		return engine.Source{}, fmt.Errorf("source of kind %q has no name", sc.Kind)
	}

	switch sc.Kind {
	case "account":
		return media.AccountSource(sc.Name, sc.AccountType), nil
	case "hashtag":
		return media.HashtagSource(sc.Name, sc.Order), nil
	case "story":
		return media.StorySource(sc.Name), nil
	case "tagged":
		return media.TaggedSource(sc.Name), nil
	case "listing":
		if sc.URL == "" {
			return engine.Source{}, fmt.Errorf("listing source %q has no url", sc.Name)
		}
		return media.ListingSource(sc.Name, sc.URL), nil
	default:
		return engine.Source{}, fmt.Errorf("unknown source kind %q", sc.Kind)
	}
}
