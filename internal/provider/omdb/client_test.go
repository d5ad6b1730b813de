package omdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cinefill/internal/catalog"
	"cinefill/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(config.OMDB{APIKey: "test-key", BaseURL: srv.URL}, 5*time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestSearchReturnsSingleSummary(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("t") != "Blade Runner" || q.Get("y") != "1982" || q.Get("apikey") != "test-key" {
			t.Errorf("unexpected params: %v", q)
		}
		if q.Get("type") != "movie" {
			t.Errorf("type = %q", q.Get("type"))
		}
		w.Write([]byte(`{"Response":"True","Title":"Blade Runner","Year":"1982","imdbID":"tt0083658"}`))
	}))

	summaries, err := client.Search(context.Background(), "Blade Runner", 1982)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one summary, got %d", len(summaries))
	}
	if summaries[0].ID != "tt0083658" || summaries[0].ReleaseDate != "1982" {
		t.Fatalf("unexpected summary: %+v", summaries[0])
	}
}

func TestSearchNoMatchIsEmptyNotError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	}))

	summaries, err := client.Search(context.Background(), "No Such Film", 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("expected no summaries, got %+v", summaries)
	}
}

func TestDetailsMapsFieldsAndDropsPlaceholders(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("i"); got != "tt0083658" {
			t.Errorf("i = %q", got)
		}
		w.Write([]byte(`{
			"Response": "True",
			"Title": "Blade Runner",
			"Year": "1982",
			"Released": "25 Jun 1982",
			"Director": "Ridley Scott",
			"Actors": "Harrison Ford, Rutger Hauer",
			"Plot": "N/A",
			"imdbID": "tt0083658"
		}`))
	}))

	result, err := client.Details(context.Background(), "tt0083658")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if result.Fields[catalog.FieldDirector] != "Ridley Scott" {
		t.Errorf("director = %q", result.Fields[catalog.FieldDirector])
	}
	if result.Fields[catalog.FieldOverview] != "" {
		t.Errorf("N/A plot should map to empty, got %q", result.Fields[catalog.FieldOverview])
	}
	if result.Fields[catalog.FieldReleaseDate] != "25 Jun 1982" {
		t.Errorf("release date = %q", result.Fields[catalog.FieldReleaseDate])
	}
}

func TestDetailsNoMatchReturnsNil(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
	}))

	result, err := client.Details(context.Background(), "tt9999999")
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil result, got %+v", result)
	}
}
