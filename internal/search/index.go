package search

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/noticeboard/internal/debuglog"
	"github.com/pders01/noticeboard/internal/notice"
)

// ErrClosed is returned by an index after Close.
var ErrClosed = errors.New("search index closed")

// MinQueryLength is the shortest query that is sent to the index.
const MinQueryLength = 2

// Index is an in-memory bleve index over the current notice list. It is
// rebuilt wholesale whenever the list changes.
type Index struct {
	mu      sync.RWMutex
	idx     bleve.Index
	notices map[string]notice.RawNotice
}

// NewIndex returns an empty index.
func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("creating index: %w", err)
	}
	return &Index{idx: idx, notices: map[string]notice.RawNotice{}}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	desc := bleve.NewTextFieldMapping()
	desc.Analyzer = standard.Name
	desc.Store = false

	tags := bleve.NewTextFieldMapping()
	tags.Analyzer = standard.Name
	tags.Store = false

	services := bleve.NewTextFieldMapping()
	services.Analyzer = standard.Name
	services.Store = false

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("description", desc)
	dm.AddFieldMappingsAt("tags", tags)
	dm.AddFieldMappingsAt("services", services)

	im.DefaultMapping = dm
	return im
}

// Rebuild replaces the indexed documents with notices.
func (x *Index) Rebuild(notices []notice.RawNotice) error {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}

	byID := make(map[string]notice.RawNotice, len(notices))
	batch := idx.NewBatch()
	for _, n := range notices {
		id := docID(n.ID)
		byID[id] = n
		if err := batch.Index(id, document(n)); err != nil {
			_ = idx.Close()
			return fmt.Errorf("indexing notice %d: %w", n.ID, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return fmt.Errorf("indexing notices: %w", err)
	}

	x.mu.Lock()
	old := x.idx
	x.idx = idx
	x.notices = byID
	x.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	debuglog.Debugf("search index rebuilt with %d notices", len(byID))
	return nil
}

func document(n notice.RawNotice) map[string]any {
	tags := n.Tags()
	meta := notice.ParseMetadata(n.Body)

	services := notice.AffectedServicesFromTags(tags)
	services = append(services, meta.ExpectedDown...)
	services = append(services, meta.ExpectedDegraded...)

	return map[string]any{
		"title":       n.Title,
		"description": meta.Description,
		"tags":        strings.Join(tags, " "),
		"services":    strings.Join(services, " "),
	}
}

// Search matches every query term against title^4, description^2, tags and
// services, with prefix variants slightly below each exact match.
func (x *Index) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < MinQueryLength {
		return []*Result{}, nil
	}
	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	var qs []bleveQuery.Query
	for _, tok := range terms {
		qs = append(qs, fieldQueries(tok, "title", 4.0, 3.5)...)
		qs = append(qs, fieldQueries(tok, "description", 2.0, 1.8)...)
		qs = append(qs, fieldQueries(tok, "tags", 1.0, 0.8)...)
		qs = append(qs, fieldQueries(tok, "services", 1.0, 0.8)...)
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)

	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.idx == nil {
		return nil, ErrClosed
	}

	res, err := x.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("searching notices: %w", err)
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		n, ok := x.notices[h.ID]
		if !ok {
			continue
		}
		out = append(out, &Result{
			Notice:  n,
			Score:   h.Score,
			Snippet: findBestSnippet(notice.ParseMetadata(n.Body).Description, terms, 120),
		})
	}
	return out, nil
}

func fieldQueries(tok, field string, boost, prefixBoost float64) []bleveQuery.Query {
	m := bleve.NewMatchQuery(tok)
	m.SetField(field)
	m.SetBoost(boost)

	p := bleve.NewPrefixQuery(strings.ToLower(tok))
	p.SetField(field)
	p.SetBoost(prefixBoost)

	return []bleveQuery.Query{m, p}
}

// DocCount reports total documents in the index.
func (x *Index) DocCount() (int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.idx == nil {
		return 0, ErrClosed
	}
	n, err := x.idx.DocCount()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.idx == nil {
		return nil
	}
	err := x.idx.Close()
	x.idx = nil
	return err
}

func docID(id int64) string { return strconv.FormatInt(id, 10) }
