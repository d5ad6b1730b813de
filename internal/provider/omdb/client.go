// Package omdb implements the provider gateway against the OMDb API.
//
// OMDb has no list-style search endpoint worth ranking: the "t" title lookup
// returns at most one match, so Search yields zero or one summary and
// Details re-fetches by IMDb id.
package omdb

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

// payload models the OMDb JSON response for both title and id lookups.
type payload struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
	Title    string `json:"Title"`
	Year     string `json:"Year"`
	Released string `json:"Released"`
	Director string `json:"Director"`
	Actors   string `json:"Actors"`
	Plot     string `json:"Plot"`
	IMDBID   string `json:"imdbID"`
}

// Client provides access to the OMDb API.
type Client struct {
	apiKey     string
	baseURL    string
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

// New creates an OMDb client from the enrichment configuration.
func New(cfg config.OMDB, timeout time.Duration, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("omdb api key required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("omdb base url required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Name identifies this gateway in logs and summaries.
func (c *Client) Name() string { return "omdb" }

// Search looks a title up by name, optionally pinned to a year. A "movie not
// found" response is an empty result set, not an error.
func (c *Client) Search(ctx context.Context, query string, year int) ([]provider.Summary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, provider.Permanent("omdb", errors.New("query must not be empty"))
	}
	params := url.Values{}
	params.Set("t", query)
	params.Set("type", "movie")
	params.Set("plot", "short")
	if year > 0 {
		params.Set("y", strconv.Itoa(year))
	}

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	return []provider.Summary{{
		ID:          body.IMDBID,
		Title:       body.Title,
		ReleaseDate: body.Year,
	}}, nil
}

// Details fetches full details by IMDb id and maps them onto catalog fields.
func (c *Client) Details(ctx context.Context, id string) (*provider.Result, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, provider.Permanent("omdb", errors.New("imdb id must not be empty"))
	}
	params := url.Values{}
	params.Set("i", id)
	params.Set("plot", "short")

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	fields := catalog.Fields{
		catalog.FieldExternalID:     body.IMDBID,
		catalog.FieldCanonicalTitle: clean(body.Title),
		catalog.FieldOverview:       clean(body.Plot),
		catalog.FieldReleaseDate:    clean(body.Released),
		catalog.FieldDirector:       clean(body.Director),
		catalog.FieldCast:           clean(body.Actors),
	}
	return &provider.Result{
		ID:          body.IMDBID,
		Title:       body.Title,
		ReleaseDate: body.Year,
		Fields:      fields,
	}, nil
}

// get executes an authenticated GET; a Response:"False" body comes back as
// (nil, nil) so callers treat it as no match.
func (c *Client) get(ctx context.Context, params url.Values) (*payload, error) {
	endpoint, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return nil, provider.Permanent("omdb", fmt.Errorf("parse omdb url: %w", err))
	}
	params.Set("apikey", c.apiKey)
	params.Set("r", "json")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, provider.Permanent("omdb", fmt.Errorf("build request: %w", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, provider.Transient("omdb", fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, provider.StatusError("omdb", resp.StatusCode)
	}
	var body payload
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, provider.Permanent("omdb", fmt.Errorf("decode omdb response: %w", err))
	}
	if !strings.EqualFold(body.Response, "True") {
		return nil, nil
	}
	return &body, nil
}

// clean drops OMDb's "N/A" placeholder so unknown values stay unset in the
// catalog.
func clean(value string) string {
	value = strings.TrimSpace(value)
	if value == "N/A" {
		return ""
	}
	return value
}
