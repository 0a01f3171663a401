package news

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/newsreel/models"
	"github.com/mohammad-safakhou/newsreel/news/newsapi"
)

// DefaultLimit is how many headlines an operator gets to choose from.
const DefaultLimit = 10

// removedTitle is what NewsAPI puts in place of withdrawn articles.
const removedTitle = "[Removed]"

// Source lists raw articles from a news provider
type Source interface {
	TopHeadlines(ctx context.Context) ([]newsapi.Article, error)
}

// Result is the outcome of one successful fetch. Dropped counts provider items that were
// discarded (no title, withdrawn, duplicate, over the limit).
type Result struct {
	Headlines []models.Headline `json:"headlines"`
	Dropped   int               `json:"dropped"`
}

// Partial reports whether the provider returned items that did not make it into the list.
func (r Result) Partial() bool { return r.Dropped > 0 }

// Titles lists the headline titles in order.
func (r Result) Titles() []string {
	out := make([]string, len(r.Headlines))
	for i, h := range r.Headlines {
		out[i] = h.Title
	}
	return out
}

// Retriever turns provider articles into the operator's headline list
type Retriever struct {
	NewsClient Source
	Limit      int
}

// NewRetriever creates a new news retriever
func NewRetriever(newsClient Source, limit int) Retriever {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Retriever{NewsClient: newsClient, Limit: limit}
}

// Fetch returns up to Limit headlines in provider order. A failed call yields an empty Result
// and the cause; a call that produced nothing usable yields models.ErrNoHeadlines.
func (r Retriever) Fetch(ctx context.Context) (Result, error) {
	articles, err := r.NewsClient.TopHeadlines(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch headlines: %w", err)
	}

	limit := r.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	res := Result{Headlines: make([]models.Headline, 0, min(limit, len(articles)))}
	seen := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		title := strings.TrimSpace(a.Title)
		if title == "" || title == removedTitle {
			res.Dropped++
			continue
		}
		if _, dup := seen[title]; dup {
			res.Dropped++
			continue
		}
		if len(res.Headlines) == limit {
			res.Dropped++
			continue
		}
		seen[title] = struct{}{}
		res.Headlines = append(res.Headlines, models.Headline{
			Title:       title,
			ImageURL:    strings.TrimSpace(a.URLToImage),
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: a.PublishedAt,
		})
	}

	if len(res.Headlines) == 0 {
		return Result{Dropped: res.Dropped}, models.ErrNoHeadlines
	}
	return res, nil
}
