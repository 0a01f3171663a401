package newsapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTopHeadlinesQueryAndDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("language") != "en" || q.Get("pageSize") != "10" || q.Get("apiKey") != "news-key" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","totalResults":2,"articles":[
			{"source":{"name":"Gazette"},"title":"City Council Approves New Park","urlToImage":"https://example.com/img.jpg","publishedAt":"2025-03-01T10:00:00Z"},
			{"source":{"name":"Wire"},"title":"Storm Moves East","urlToImage":null}
		]}`))
	}))
	defer srv.Close()

	client := NewsAPI{APIKey: "news-key", Endpoint: srv.URL, Language: "en", PageSize: 10}
	articles, err := client.TopHeadlines(context.Background())
	if err != nil {
		t.Fatalf("TopHeadlines: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[0].URLToImage != "https://example.com/img.jpg" || articles[0].Source.Name != "Gazette" {
		t.Fatalf("unexpected first article %+v", articles[0])
	}
	if articles[1].URLToImage != "" {
		t.Fatalf("expected null image to decode as empty, got %q", articles[1].URLToImage)
	}
}

func TestTopHeadlinesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`))
	}))
	defer srv.Close()

	_, err := NewsAPI{APIKey: "bad", Endpoint: srv.URL}.TopHeadlines(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Code != "apiKeyInvalid" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
}

func TestTopHeadlinesMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := NewsAPI{APIKey: "k", Endpoint: srv.URL}.TopHeadlines(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestTopHeadlinesNetworkErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	_, err := NewsAPI{APIKey: "secret-key", Endpoint: endpoint}.TopHeadlines(context.Background())
	if err == nil {
		t.Fatalf("expected network error")
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Fatalf("error leaks api key: %v", err)
	}
}
