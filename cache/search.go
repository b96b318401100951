package cache

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/vinayprograms/pagesum/render"
)

// Hit is a search result.
type Hit struct {
	Entry
	Score float64 `json:"score"`
}

type searchDoc struct {
	URL     string `json:"url"`
	Summary string `json:"summary"`
}

func buildIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name

	docMapping.AddFieldMappingsAt("summary", textFieldMapping)
	docMapping.AddFieldMappingsAt("url", textFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name
	return indexMapping
}

// Search ranks cached summaries against a free-text query. The window is
// small, so an in-memory index is built per call. An empty query returns
// every entry, newest first.
func (c *Cache) Search(queryText string, limit int) ([]Hit, error) {
	entries, err := c.Entries()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = MaxEntries
	}

	if strings.TrimSpace(queryText) == "" {
		hits := make([]Hit, 0, len(entries))
		for i := len(entries) - 1; i >= 0 && len(hits) < limit; i-- {
			hits = append(hits, Hit{Entry: entries[i]})
		}
		return hits, nil
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("cache: create index: %w", err)
	}
	defer index.Close()

	batch := index.NewBatch()
	for i, e := range entries {
		doc := searchDoc{URL: e.URL, Summary: render.PlainText(e.Summary)}
		if err := batch.Index(strconv.Itoa(i), doc); err != nil {
			return nil, fmt.Errorf("cache: index entry: %w", err)
		}
	}
	if err := index.Batch(batch); err != nil {
		return nil, fmt.Errorf("cache: index: %w", err)
	}

	summaryQuery := bleve.NewMatchQuery(queryText)
	summaryQuery.SetField("summary")
	urlQuery := bleve.NewMatchQuery(queryText)
	urlQuery.SetField("url")

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(summaryQuery, urlQuery))
	req.Size = limit

	res, err := index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("cache: search: %w", err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		i, err := strconv.Atoi(h.ID)
		if err != nil || i < 0 || i >= len(entries) {
			continue
		}
		hits = append(hits, Hit{Entry: entries[i], Score: h.Score})
	}
	return hits, nil
}
