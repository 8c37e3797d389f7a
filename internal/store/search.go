package store

import (
	"context"
	"strings"

	"github.com/rcliao/lovejourney/internal/model"
)

// SearchParams holds parameters for searching records.
type SearchParams struct {
	Query string
	// Collection limits the search to memories or plans; empty searches both.
	Collection Collection
	// Tag keeps only memories carrying it. Plans have no tags and are
	// skipped when Tag is set.
	Tag   string
	Limit int
}

// SearchResult groups matches by collection.
type SearchResult struct {
	Memories []model.Memory `json:"memories"`
	Plans    []model.Plan   `json:"plans"`
}

// Search finds memories whose title, content or tags, and plans whose title
// or description, contain the query (case-insensitive).
func (d *DB) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	q := strings.ToLower(strings.TrimSpace(p.Query))

	release, err := d.acquire("")
	if err != nil {
		return nil, unavailable("search", err)
	}
	defer release()

	res := &SearchResult{Memories: []model.Memory{}, Plans: []model.Plan{}}

	if p.Collection == "" || p.Collection == CollectionMemories {
		memories, err := d.memories(ctx)
		if err != nil {
			return nil, err
		}
		for _, m := range memories {
			if len(res.Memories) >= limit {
				break
			}
			if p.Tag != "" && !hasTag(m.Tags, p.Tag) {
				continue
			}
			if q == "" || contains(q, m.Title, m.Content) || contains(q, m.Tags...) {
				res.Memories = append(res.Memories, m)
			}
		}
	}

	if (p.Collection == "" || p.Collection == CollectionPlans) && p.Tag == "" {
		plans, err := d.plans(ctx)
		if err != nil {
			return nil, err
		}
		for _, pl := range plans {
			if len(res.Plans) >= limit {
				break
			}
			if q == "" || contains(q, pl.Title, pl.Description) {
				res.Plans = append(res.Plans, pl)
			}
		}
	}

	return res, nil
}

func contains(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
