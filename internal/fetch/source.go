package fetch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pders01/noticeboard/internal/config"
	"github.com/pders01/noticeboard/internal/notice"
)

// Source produces the current candidate notice list.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]notice.RawNotice, error)
}

// Factory builds a Source for configurations it recognises.
type Factory interface {
	// Kind is the value of source.kind this factory is registered for.
	Kind() string

	// CanHandle reports whether the factory can build a source from cfg.
	CanHandle(cfg config.SourceConfig) bool

	// Priority breaks ties when several factories can handle one config
	// (higher wins).
	Priority() int

	New(cfg *config.Config, client *http.Client) (Source, error)
}

// Registry picks the factory for a configuration.
type Registry struct {
	factories []Factory
	client    *http.Client
}

// NewRegistry returns a registry with the built-in github and feed sources.
func NewRegistry(client *http.Client) *Registry {
	r := &Registry{client: client}
	r.Register(githubFactory{})
	r.Register(feedFactory{})
	return r
}

// Register adds a factory to the registry
func (r *Registry) Register(f Factory) {
	r.factories = append(r.factories, f)
}

// Find returns the highest priority factory that can handle cfg.
func (r *Registry) Find(cfg config.SourceConfig) Factory {
	var best Factory
	highest := -1

	for _, f := range r.factories {
		if f.CanHandle(cfg) && f.Priority() > highest {
			best = f
			highest = f.Priority()
		}
	}

	return best
}

// Build creates the source described by cfg.Source.
func (r *Registry) Build(cfg *config.Config) (Source, error) {
	f := r.Find(cfg.Source)
	if f == nil {
		return nil, fmt.Errorf("no source for kind %q", cfg.Source.Kind)
	}
	return f.New(cfg, r.client)
}

// Kinds lists the registered source kinds in registration order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for _, f := range r.factories {
		kinds = append(kinds, f.Kind())
	}
	return kinds
}

// NewHTTPClient returns the client shared by all sources.
func NewHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.HTTP.Timeout}
}
