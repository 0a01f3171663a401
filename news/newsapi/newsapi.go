package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const DefaultEndpoint = "https://newsapi.org/v2/top-headlines"

type Article struct {
	Source struct {
		Name string `json:"name"`
	} `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
}

type response struct {
	Status       string    `json:"status"`
	Code         string    `json:"code"`
	Message      string    `json:"message"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

// APIError is returned when NewsAPI rejects the request (bad key, rate limit, ...).
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("newsapi error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("newsapi error: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

type NewsAPI struct {
	APIKey     string
	Endpoint   string
	Language   string
	PageSize   int
	HTTPClient *http.Client
}

// TopHeadlines lists the current top headlines for the configured language.
func (n NewsAPI) TopHeadlines(ctx context.Context) ([]Article, error) {
	endpoint := n.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	pageSize := n.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	params := url.Values{}
	if n.Language != "" {
		params.Add("language", n.Language)
	}
	params.Add("pageSize", strconv.Itoa(pageSize))
	params.Add("apiKey", n.APIKey)

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := n.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		// the request URL carries the key
		if uerr, ok := err.(*url.Error); ok {
			err = uerr.Err
		}
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var result response
	decodeErr := json.Unmarshal(body, &result)

	if resp.StatusCode != http.StatusOK || result.Status == "error" {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil {
			apiErr.Code = result.Code
			apiErr.Message = result.Message
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}

	return result.Articles, nil
}
