// Package search queries the conversation archive.
package search

import (
	"github.com/jasperwreed/chat2html/internal/models"
	"github.com/jasperwreed/chat2html/internal/storage"
)

type Searcher struct {
	store *storage.SQLiteStore
}

func NewSearcher(store *storage.SQLiteStore) *Searcher {
	return &Searcher{store: store}
}

func (s *Searcher) Search(query string, limit int) ([]models.SearchResult, error) {
	return s.store.Search(query, limit)
}

// SearchWithFilters narrows results by "sender" and "title". Non-string
// filter values are ignored.
func (s *Searcher) SearchWithFilters(query string, limit int, filters map[string]interface{}) ([]models.SearchResult, error) {
	results, err := s.store.Search(query, limit)
	if err != nil {
		return nil, err
	}

	if sender, ok := filters["sender"].(string); ok && sender != "" {
		results = filter(results, func(r models.SearchResult) bool {
			return r.Sender == sender
		})
	}

	if title, ok := filters["title"].(string); ok && title != "" {
		results = filter(results, func(r models.SearchResult) bool {
			return r.Conversation.Title == title
		})
	}

	return results, nil
}

func filter(results []models.SearchResult, keep func(models.SearchResult) bool) []models.SearchResult {
	filtered := []models.SearchResult{}
	for _, r := range results {
		if keep(r) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
