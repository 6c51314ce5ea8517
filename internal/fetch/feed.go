package fetch

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"net/http"
	"slices"
	"sync"

	"github.com/mmcdole/gofeed"

	"github.com/pders01/noticeboard/internal/config"
	"github.com/pders01/noticeboard/internal/notice"
	"github.com/pders01/noticeboard/internal/validation"
)

// FeedSource reads notices from an RSS or Atom status history feed. It
// sends conditional requests and reuses the previous list on 304.
type FeedSource struct {
	client    *http.Client
	parser    *gofeed.Parser
	url       string
	userAgent string

	mu           sync.Mutex
	etag         string
	lastModified string
	last         []notice.RawNotice
}

func NewFeedSource(cfg *config.Config, client *http.Client) (*FeedSource, error) {
	validator := validation.NewURLValidator()
	if cfg.HTTP.AllowPrivate {
		validator = validation.NewPermissiveURLValidator()
	}
	feedURL, err := validator.ValidateAndNormalize(cfg.Source.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed URL: %w", err)
	}

	return &FeedSource{
		client:    client,
		parser:    gofeed.NewParser(),
		url:       feedURL,
		userAgent: cfg.HTTP.UserAgent,
	}, nil
}

func (s *FeedSource) Name() string { return config.SourceFeed }

func (s *FeedSource) Fetch(ctx context.Context) ([]notice.RawNotice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, networkError(s.Name(), fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	s.mu.Lock()
	if s.etag != "" {
		req.Header.Set("If-None-Match", s.etag)
	}
	if s.lastModified != "" {
		req.Header.Set("If-Modified-Since", s.lastModified)
	}
	s.mu.Unlock()

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, networkError(s.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		s.mu.Lock()
		defer s.mu.Unlock()
		return slices.Clone(s.last), nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(s.Name(), resp.StatusCode)
	}

	parsed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, decodeError(s.Name(), err)
	}

	notices := fromFeed(parsed)

	s.mu.Lock()
	s.etag = resp.Header.Get("ETag")
	s.lastModified = resp.Header.Get("Last-Modified")
	s.last = notices
	s.mu.Unlock()

	return slices.Clone(notices), nil
}

func fromFeed(feed *gofeed.Feed) []notice.RawNotice {
	notices := make([]notice.RawNotice, 0, len(feed.Items))
	for i, item := range feed.Items {
		if item == nil {
			continue
		}
		n := notice.RawNotice{
			ID:     stableID(item),
			Number: i + 1,
			Title:  item.Title,
			Body:   itemBody(item),
			URL:    item.Link,
			State:  "open",
		}
		for _, c := range item.Categories {
			n.Labels = append(n.Labels, notice.Label{Name: c})
		}
		if item.PublishedParsed != nil {
			n.CreatedAt = *item.PublishedParsed
		}
		if item.UpdatedParsed != nil {
			n.UpdatedAt = *item.UpdatedParsed
		} else {
			n.UpdatedAt = n.CreatedAt
		}
		notices = append(notices, n)
	}
	return notices
}

func itemBody(item *gofeed.Item) string {
	if item.Content != "" {
		return item.Content
	}
	return item.Description
}

// stableID hashes the item's GUID (or link, or title) into a positive id so
// that dismissals survive refetches.
func stableID(item *gofeed.Item) int64 {
	key := item.GUID
	if key == "" {
		key = item.Link
	}
	if key == "" {
		key = item.Title
	}
	h := fnv.New64a()
	h.Write([]byte(key))
	return int64(h.Sum64() & math.MaxInt64)
}

type feedFactory struct{}

func (feedFactory) Kind() string { return config.SourceFeed }

func (feedFactory) CanHandle(cfg config.SourceConfig) bool {
	return cfg.Kind == config.SourceFeed && cfg.FeedURL != ""
}

func (feedFactory) Priority() int { return 50 }

func (feedFactory) New(cfg *config.Config, client *http.Client) (Source, error) {
	return NewFeedSource(cfg, client)
}
