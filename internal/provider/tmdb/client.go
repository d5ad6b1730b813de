// Package tmdb implements the provider gateway against The Movie Database.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cinefill/internal/catalog"
	"cinefill/internal/config"
	"cinefill/internal/provider"
)

const castLimit = 10

// searchResult represents a single TMDB search match.
type searchResult struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
}

// searchResponse models the TMDB paginated search response.
type searchResponse struct {
	Page         int            `json:"page"`
	Results      []searchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

type creditsPayload struct {
	Cast []struct {
		Name      string `json:"name"`
		Character string `json:"character"`
	} `json:"cast"`
	Crew []struct {
		Name string `json:"name"`
		Job  string `json:"job"`
	} `json:"crew"`
}

// detailsPayload models the TMDB movie details response with credits
// appended.
type detailsPayload struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Overview    string         `json:"overview"`
	ReleaseDate string         `json:"release_date"`
	IMDBID      string         `json:"imdb_id"`
	Credits     creditsPayload `json:"credits"`
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ provider.Gateway = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB client from the enrichment configuration.
func New(cfg config.TMDB, timeout time.Duration, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(cfg.Language),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name identifies this gateway in logs and summaries.
func (c *Client) Name() string { return "tmdb" }

// Search performs a TMDB movie search, filtered by primary release year when
// year is positive.
func (c *Client) Search(ctx context.Context, query string, year int) ([]provider.Summary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, provider.Permanent("tmdb", errors.New("query must not be empty"))
	}
	endpoint, err := url.Parse(c.baseURL + "/search/movie")
	if err != nil {
		return nil, provider.Permanent("tmdb", fmt.Errorf("parse tmdb url: %w", err))
	}
	params := url.Values{}
	params.Set("query", query)
	// Adult titles stay searchable: dropping them silently shrinks the
	// candidate pool and older catalog entries stop matching.
	params.Set("include_adult", "true")
	if c.language != "" {
		params.Set("language", c.language)
	}
	if year > 0 {
		params.Set("primary_release_year", strconv.Itoa(year))
	}

	var payload searchResponse
	if err := c.get(ctx, endpoint, params, &payload); err != nil {
		return nil, err
	}
	summaries := make([]provider.Summary, 0, len(payload.Results))
	for _, r := range payload.Results {
		summaries = append(summaries, provider.Summary{
			ID:          strconv.FormatInt(r.ID, 10),
			Title:       r.Title,
			ReleaseDate: r.ReleaseDate,
		})
	}
	return summaries, nil
}

// Details fetches movie details (credits included) by TMDB ID and maps them
// onto catalog fields.
func (c *Client) Details(ctx context.Context, id string) (*provider.Result, error) {
	movieID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || movieID <= 0 {
		return nil, provider.Permanent("tmdb", fmt.Errorf("invalid movie id %q", id))
	}
	endpoint, err := url.Parse(fmt.Sprintf("%s/movie/%d", c.baseURL, movieID))
	if err != nil {
		return nil, provider.Permanent("tmdb", fmt.Errorf("parse tmdb url: %w", err))
	}
	params := url.Values{}
	params.Set("append_to_response", "credits")
	if c.language != "" {
		params.Set("language", c.language)
	}

	var payload detailsPayload
	if err := c.get(ctx, endpoint, params, &payload); err != nil {
		return nil, err
	}

	fields := catalog.Fields{
		catalog.FieldExternalID:     strconv.FormatInt(payload.ID, 10),
		catalog.FieldCanonicalTitle: strings.TrimSpace(payload.Title),
		catalog.FieldOverview:       strings.TrimSpace(payload.Overview),
		catalog.FieldReleaseDate:    strings.TrimSpace(payload.ReleaseDate),
		catalog.FieldDirector:       director(payload.Credits),
		catalog.FieldCast:           topCast(payload.Credits),
	}
	return &provider.Result{
		ID:          strconv.FormatInt(payload.ID, 10),
		Title:       payload.Title,
		ReleaseDate: payload.ReleaseDate,
		Fields:      fields,
	}, nil
}

// get executes an authenticated GET and decodes the JSON body into out.
// Read access tokens (v4, JWT-shaped) go in the Authorization header; legacy
// v3 keys travel as the api_key query parameter.
func (c *Client) get(ctx context.Context, endpoint *url.URL, params url.Values, out any) error {
	bearer := strings.HasPrefix(c.apiKey, "eyJ")
	if !bearer {
		params.Set("api_key", c.apiKey)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return provider.Permanent("tmdb", fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if bearer {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return provider.Transient("tmdb", fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return provider.StatusError("tmdb", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return provider.Permanent("tmdb", fmt.Errorf("decode tmdb response: %w", err))
	}
	return nil
}

func director(credits creditsPayload) string {
	for _, member := range credits.Crew {
		if member.Job == "Director" {
			return strings.TrimSpace(member.Name)
		}
	}
	return ""
}

// topCast formats the leading cast members as "Name (Character)" entries.
func topCast(credits creditsPayload) string {
	entries := make([]string, 0, castLimit)
	for _, member := range credits.Cast {
		if len(entries) == castLimit {
			break
		}
		name := strings.TrimSpace(member.Name)
		if name == "" {
			continue
		}
		if character := strings.TrimSpace(member.Character); character != "" {
			entries = append(entries, fmt.Sprintf("%s (%s)", name, character))
		} else {
			entries = append(entries, name)
		}
	}
	return strings.Join(entries, ", ")
}
