package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v74/github"

	"github.com/pders01/noticeboard/internal/config"
	"github.com/pders01/noticeboard/internal/notice"
	"github.com/pders01/noticeboard/internal/validation"
)

// Query holds the search parameters. Values are opaque and only joined into
// the search string.
type Query struct {
	Owner      string
	Repository string
	Author     string
	State      string
	Labels     []string
}

// String renders the GitHub issue search expression, omitting empty parts.
func (q Query) String() string {
	var parts []string
	switch {
	case q.Owner != "" && q.Repository != "":
		parts = append(parts, fmt.Sprintf("repo:%s/%s", q.Owner, q.Repository))
	case q.Owner != "":
		parts = append(parts, "user:"+q.Owner)
	}
	parts = append(parts, "is:issue")
	if q.Author != "" {
		parts = append(parts, "author:"+q.Author)
	}
	if q.State != "" {
		parts = append(parts, "state:"+q.State)
	}
	if len(q.Labels) > 0 {
		parts = append(parts, "label:"+strings.Join(q.Labels, ","))
	}
	return strings.Join(parts, " ")
}

// GitHubSource searches issues through the GitHub search API.
type GitHubSource struct {
	client  *github.Client
	query   Query
	perPage int
}

func NewGitHubSource(cfg *config.Config, httpClient *http.Client) (*GitHubSource, error) {
	validator := validation.NewURLValidator()
	if cfg.HTTP.AllowPrivate {
		validator = validation.NewPermissiveURLValidator()
	}
	endpoint, err := validator.ValidateAndNormalize(cfg.Source.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid source endpoint: %w", err)
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}
	baseURL, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing source endpoint: %w", err)
	}

	client := github.NewClient(httpClient)
	if cfg.Source.Token != "" {
		client = client.WithAuthToken(cfg.Source.Token)
	}
	client.BaseURL = baseURL
	if cfg.HTTP.UserAgent != "" {
		client.UserAgent = cfg.HTTP.UserAgent
	}

	perPage := cfg.Source.PerPage
	if perPage <= 0 {
		perPage = 30
	}

	return &GitHubSource{
		client: client,
		query: Query{
			Owner:      cfg.Source.Owner,
			Repository: cfg.Source.Repository,
			Author:     cfg.Source.Author,
			State:      cfg.Source.State,
			Labels:     cfg.Source.Labels,
		},
		perPage: perPage,
	}, nil
}

func (s *GitHubSource) Name() string { return config.SourceGitHub }

func (s *GitHubSource) Query() Query { return s.query }

func (s *GitHubSource) Fetch(ctx context.Context) ([]notice.RawNotice, error) {
	opts := &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: s.perPage},
	}

	result, resp, err := s.client.Search.Issues(ctx, s.query.String(), opts)
	if err != nil {
		return nil, s.classify(err, resp)
	}

	notices := make([]notice.RawNotice, 0, len(result.Issues))
	for _, issue := range result.Issues {
		if issue == nil || issue.ID == nil {
			continue
		}
		notices = append(notices, fromIssue(issue))
	}
	return notices, nil
}

// classify maps a go-github error onto the fetch taxonomy. A response means
// the server answered: a non-2xx status is an HTTP error, anything else
// failed while decoding the body.
func (s *GitHubSource) classify(err error, resp *github.Response) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return networkError(s.Name(), err)
	}
	if resp != nil && resp.Response != nil {
		code := resp.StatusCode
		if code < 200 || code > 299 {
			return statusError(s.Name(), code)
		}
		return decodeError(s.Name(), err)
	}
	return networkError(s.Name(), err)
}

func fromIssue(issue *github.Issue) notice.RawNotice {
	n := notice.RawNotice{
		ID:        issue.GetID(),
		Number:    issue.GetNumber(),
		Title:     issue.GetTitle(),
		Body:      issue.GetBody(),
		URL:       issue.GetHTMLURL(),
		State:     issue.GetState(),
		CreatedAt: issue.GetCreatedAt().Time,
		UpdatedAt: issue.GetUpdatedAt().Time,
	}
	for _, l := range issue.Labels {
		if l == nil {
			continue
		}
		n.Labels = append(n.Labels, notice.Label{
			ID:    l.GetID(),
			Name:  l.GetName(),
			Color: l.GetColor(),
		})
	}
	return n
}

type githubFactory struct{}

func (githubFactory) Kind() string { return config.SourceGitHub }

func (githubFactory) CanHandle(cfg config.SourceConfig) bool {
	return cfg.Kind == config.SourceGitHub && cfg.Endpoint != ""
}

func (githubFactory) Priority() int { return 50 }

func (githubFactory) New(cfg *config.Config, client *http.Client) (Source, error) {
	return NewGitHubSource(cfg, client)
}
