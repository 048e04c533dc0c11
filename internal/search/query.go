package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/phrazzld/taskdesk/internal/domain"
	"github.com/phrazzld/taskdesk/internal/store"
)

// textField holds every analyzed field of a document and is searched by
// terms that name no field.
const textField = "text"

// newTaskMapping indexes id as an exact term and title, description and
// text as analyzed text.
func newTaskMapping() mapping.IndexMapping {
	doc := bleve.NewDocumentStaticMapping()
	doc.AddFieldMappingsAt("id", exactField())
	doc.AddFieldMappingsAt("title", analyzedField())
	doc.AddFieldMappingsAt("description", analyzedField())
	doc.AddFieldMappingsAt(textField, analyzedField())
	return indexMapping(doc)
}

func newJobMapping() mapping.IndexMapping {
	doc := bleve.NewDocumentStaticMapping()
	doc.AddFieldMappingsAt("id", exactField())
	doc.AddFieldMappingsAt("jobTitle", analyzedField())
	doc.AddFieldMappingsAt("minSalary", exactField())
	doc.AddFieldMappingsAt("maxSalary", exactField())
	doc.AddFieldMappingsAt(textField, analyzedField())
	return indexMapping(doc)
}

func indexMapping(doc *mapping.DocumentMapping) mapping.IndexMapping {
	m := bleve.NewIndexMapping()
	m.DefaultMapping = doc
	m.DefaultField = textField
	m.DefaultAnalyzer = standard.Name
	return m
}

func exactField() *mapping.FieldMapping {
	f := bleve.NewTextFieldMapping()
	f.Analyzer = keyword.Name
	f.IncludeInAll = false
	return f
}

func analyzedField() *mapping.FieldMapping {
	f := bleve.NewTextFieldMapping()
	f.Analyzer = standard.Name
	f.IncludeInAll = false
	return f
}

func taskDocument(t domain.Task) map[string]interface{} {
	return map[string]interface{}{
		"id":          strconv.FormatInt(t.ID, 10),
		"title":       t.Title,
		"description": t.Description,
		textField:     strings.TrimSpace(t.Title + " " + t.Description),
	}
}

func jobDocument(j domain.Job) map[string]interface{} {
	doc := map[string]interface{}{
		"id":       strconv.FormatInt(j.ID, 10),
		"jobTitle": j.JobTitle,
		textField:  j.JobTitle,
	}
	if j.MinSalary != nil {
		doc["minSalary"] = strconv.FormatInt(*j.MinSalary, 10)
	}
	if j.MaxSalary != nil {
		doc["maxSalary"] = strconv.FormatInt(*j.MaxSalary, 10)
	}
	return doc
}

// parseQuery turns a query string into a bleve query. An empty query or
// "*" matches everything.
func parseQuery(raw string) (query.Query, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" {
		return bleve.NewMatchAllQuery(), nil
	}
	q, err := bleve.NewQueryStringQuery(raw).Parse()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidQuery, err)
	}
	return q, nil
}

// matchingIDs returns the IDs of up to limit documents matching q.
func matchingIDs(idx bleve.Index, q query.Query, limit int) ([]int64, error) {
	if limit == 0 {
		return nil, nil
	}
	res, err := idx.Search(bleve.NewSearchRequestOptions(q, limit, 0, false))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	ids := make([]int64, 0, len(res.Hits))
	for _, hit := range res.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected document id %q: %w", hit.ID, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
