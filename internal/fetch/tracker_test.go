package fetch

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/noticeboard/internal/config"
	"github.com/pders01/noticeboard/internal/notice"
)

type fetchResult struct {
	notices []notice.RawNotice
	err     error
}

// blockingSource hands each Fetch call a channel the test resolves.
type blockingSource struct {
	calls chan chan fetchResult
}

func newBlockingSource() *blockingSource {
	return &blockingSource{calls: make(chan chan fetchResult, 4)}
}

func (s *blockingSource) Name() string { return "stub" }

func (s *blockingSource) Fetch(ctx context.Context) ([]notice.RawNotice, error) {
	reply := make(chan fetchResult, 1)
	s.calls <- reply
	select {
	case r := <-reply:
		return r.notices, r.err
	case <-ctx.Done():
		return nil, networkError(s.Name(), ctx.Err())
	}
}

type staticSource struct {
	notices []notice.RawNotice
	err     error
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) Fetch(context.Context) ([]notice.RawNotice, error) {
	return s.notices, s.err
}

func TestTracker_RefreshSuccess(t *testing.T) {
	source := &staticSource{notices: []notice.RawNotice{{ID: 1}, {ID: 2}}}
	tracker := NewTracker(source)

	require.NoError(t, tracker.Refresh(context.Background()))
	assert.Len(t, tracker.Notices(), 2)
	assert.False(t, tracker.Loading())
	assert.NoError(t, tracker.LastError())
	assert.False(t, tracker.FetchedAt().IsZero())
}

func TestTracker_ErrorKeepsPreviousList(t *testing.T) {
	source := &staticSource{notices: []notice.RawNotice{{ID: 1}}}
	tracker := NewTracker(source)
	require.NoError(t, tracker.Refresh(context.Background()))

	source.err = statusError("static", http.StatusBadGateway)
	source.notices = nil
	err := tracker.Refresh(context.Background())

	assert.ErrorIs(t, err, ErrHTTPStatus)
	assert.ErrorIs(t, tracker.LastError(), ErrHTTPStatus)
	assert.Len(t, tracker.Notices(), 1)

	// The next attempt clears the error.
	source.err = nil
	source.notices = []notice.RawNotice{{ID: 3}}
	require.NoError(t, tracker.Refresh(context.Background()))
	assert.NoError(t, tracker.LastError())
	assert.Equal(t, int64(3), tracker.Notices()[0].ID)
}

func TestTracker_LoadingWhileInFlight(t *testing.T) {
	source := newBlockingSource()
	tracker := NewTracker(source)

	done := make(chan error, 1)
	go func() { done <- tracker.Refresh(context.Background()) }()

	reply := <-source.calls
	assert.True(t, tracker.Loading())

	reply <- fetchResult{notices: []notice.RawNotice{{ID: 9}}}
	require.NoError(t, <-done)
	assert.False(t, tracker.Loading())
	assert.Len(t, tracker.Notices(), 1)
}

func TestTracker_NewRefreshSupersedesOld(t *testing.T) {
	source := newBlockingSource()
	tracker := NewTracker(source)

	firstDone := make(chan error, 1)
	go func() { firstDone <- tracker.Refresh(context.Background()) }()
	<-source.calls

	secondDone := make(chan error, 1)
	go func() { secondDone <- tracker.Refresh(context.Background()) }()
	second := <-source.calls

	// The first fetch is cancelled and must not touch state.
	select {
	case err := <-firstDone:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("first refresh was not cancelled")
	}
	assert.True(t, tracker.Loading())
	assert.NoError(t, tracker.LastError())

	second <- fetchResult{notices: []notice.RawNotice{{ID: 2}}}
	require.NoError(t, <-secondDone)
	assert.Equal(t, int64(2), tracker.Notices()[0].ID)
	assert.False(t, tracker.Loading())
}

func TestTracker_CloseRevokesPendingResult(t *testing.T) {
	source := newBlockingSource()
	tracker := NewTracker(source)

	done := make(chan error, 1)
	go func() { done <- tracker.Refresh(context.Background()) }()
	<-source.calls

	tracker.Close()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("refresh did not return after Close")
	}
	assert.Empty(t, tracker.Notices())
	assert.NoError(t, tracker.LastError())
	assert.False(t, tracker.Loading())

	assert.ErrorIs(t, tracker.Refresh(context.Background()), ErrClosed)
}

func TestTracker_CallerCancellation(t *testing.T) {
	source := newBlockingSource()
	tracker := NewTracker(source)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tracker.Refresh(ctx) }()
	<-source.calls
	cancel()

	err := <-done
	assert.True(t, errors.Is(err, context.Canceled))
	assert.NoError(t, tracker.LastError())
	assert.False(t, tracker.Loading())
}

func TestTracker_NoticesIsACopy(t *testing.T) {
	tracker := NewTracker(&staticSource{notices: []notice.RawNotice{{ID: 1, Title: "a"}}})
	require.NoError(t, tracker.Refresh(context.Background()))

	list := tracker.Notices()
	list[0].Title = "changed"
	assert.Equal(t, "a", tracker.Notices()[0].Title)
}

type stubFactory struct {
	kind     string
	priority int
}

func (f stubFactory) Kind() string                           { return f.kind }
func (f stubFactory) CanHandle(cfg config.SourceConfig) bool { return cfg.Kind == f.kind }
func (f stubFactory) Priority() int                          { return f.priority }
func (f stubFactory) New(*config.Config, *http.Client) (Source, error) {
	return &staticSource{}, nil
}

func TestRegistry(t *testing.T) {
	cfg := config.TestConfig()
	registry := NewRegistry(NewHTTPClient(cfg))

	assert.Equal(t, []string{config.SourceGitHub, config.SourceFeed}, registry.Kinds())

	source, err := registry.Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, config.SourceGitHub, source.Name())

	cfg.Source.Kind = config.SourceFeed
	cfg.Source.FeedURL = "http://127.0.0.1:1/feed"
	source, err = registry.Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, config.SourceFeed, source.Name())

	registry.Register(stubFactory{kind: config.SourceFeed, priority: 100})
	source, err = registry.Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, "static", source.Name())

	cfg.Source.Kind = "unknown"
	_, err = registry.Build(cfg)
	assert.Error(t, err)
}
