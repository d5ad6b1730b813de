package answer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cinefill/internal/catalog"
	"cinefill/internal/config"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func testMovies() []*catalog.Movie {
	return []*catalog.Movie{
		{
			ID:        1,
			Title:     "Heat",
			Year:      intPtr(1995),
			AvgRating: floatPtr(4.12),
			Genres:    "Crime, Thriller",
			Director:  "Michael Mann",
			CastList:  "Al Pacino (Vincent Hanna)",
		},
	}
}

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append(opts, WithSleeper(func(time.Duration) {}))
	client, err := NewClient(config.LLM{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "test-model",
	}, opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestGenerateSendsGroundedPrompt(t *testing.T) {
	var got chatRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"Heat (1995) is Michael Mann's crime epic."}}]}`))
	}))

	answer, err := client.Generate(context.Background(), "What should I watch for a heist film?", testMovies())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(answer, "Heat") {
		t.Fatalf("answer = %q", answer)
	}
	if got.Model != "test-model" || len(got.Messages) != 2 {
		t.Fatalf("request = %+v", got)
	}
	user := got.Messages[1].Content
	for _, fragment := range []string{"Heat (1995)", "rating 4.12", "Michael Mann", "heist film"} {
		if !strings.Contains(user, fragment) {
			t.Errorf("prompt missing %q:\n%s", fragment, user)
		}
	}
}

func TestEndpointAcceptsRootAndFullURLs(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		want    string
	}{
		{"api root", "/api/v1", "/api/v1/chat/completions"},
		{"api root trailing slash", "/api/v1/", "/api/v1/chat/completions"},
		{"full endpoint", "/api/v1/chat/completions", "/api/v1/chat/completions"},
		{"bare host", "", "/chat/completions"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotPath string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
			}))
			t.Cleanup(srv.Close)
			client, err := NewClient(config.LLM{
				APIKey:  "test-key",
				BaseURL: srv.URL + tc.baseURL,
				Model:   "test-model",
			}, WithSleeper(func(time.Duration) {}))
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}
			if _, err := client.Generate(context.Background(), "question", testMovies()); err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if gotPath != tc.want {
				t.Errorf("request path = %q, want %q", gotPath, tc.want)
			}
		})
	}
}

func TestGenerateRetriesOnServerError(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))

	answer, err := client.Generate(context.Background(), "question", testMovies())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if answer != "ok" || calls != 3 {
		t.Fatalf("answer=%q calls=%d", answer, calls)
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))

	if _, err := client.Generate(context.Background(), "question", testMovies()); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("client errors must not retry, got %d calls", calls)
	}
}

func TestGenerateRequiresSupport(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	if _, err := client.Generate(context.Background(), "question", nil); err == nil {
		t.Fatal("expected error for missing support")
	}
	if _, err := client.Generate(context.Background(), "  ", testMovies()); err == nil {
		t.Fatal("expected error for empty question")
	}
}

func TestPromptCapsSupportingItems(t *testing.T) {
	movies := make([]*catalog.Movie, 0, 15)
	for i := 0; i < 15; i++ {
		movies = append(movies, &catalog.Movie{Title: "Movie", Year: intPtr(2000 + i)})
	}
	prompt := buildUserPrompt("q", movies)
	if got := strings.Count(prompt, "\n- "); got != maxSupportingItems {
		t.Fatalf("prompt should cap bullets at %d, found %d", maxSupportingItems, got)
	}
}
