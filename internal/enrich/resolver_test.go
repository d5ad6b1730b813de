package enrich

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"cinefill/internal/catalog"
	"cinefill/internal/provider"
)

// fakeGateway scripts search results per (query, year) pair and details per
// id, and records every call for assertions.
type fakeGateway struct {
	mu          sync.Mutex
	searches    map[string][]provider.Summary
	searchErrs  map[string]error
	details     map[string]*provider.Result
	detailsErrs map[string]error
	searchLog   []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		searches:    map[string][]provider.Summary{},
		searchErrs:  map[string]error{},
		details:     map[string]*provider.Result{},
		detailsErrs: map[string]error{},
	}
}

func searchKey(query string, year int) string {
	return fmt.Sprintf("%s|%d", query, year)
}

func (f *fakeGateway) Name() string { return "fake" }

func (f *fakeGateway) Search(ctx context.Context, query string, year int) ([]provider.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := searchKey(query, year)
	f.searchLog = append(f.searchLog, key)
	if err := f.searchErrs[key]; err != nil {
		return nil, err
	}
	return f.searches[key], nil
}

func (f *fakeGateway) Details(ctx context.Context, id string) (*provider.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.detailsErrs[id]; err != nil {
		return nil, err
	}
	return f.details[id], nil
}

func resultWithDate(id, date string) *provider.Result {
	return &provider.Result{
		ID:          id,
		ReleaseDate: date,
		Fields: catalog.Fields{
			catalog.FieldExternalID:  id,
			catalog.FieldReleaseDate: date,
		},
	}
}

func TestResolveExactPhaseFirstCandidateWins(t *testing.T) {
	gw := newFakeGateway()
	gw.searches[searchKey("Star Wars", 1977)] = []provider.Summary{
		{ID: "11", Title: "Star Wars", ReleaseDate: "1977-05-25"},
	}
	gw.details["11"] = resultWithDate("11", "1977-05-25")

	decision, err := NewResolver(gw, nil).Resolve(context.Background(), "Star Wars (1977)", 1977)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if decision == nil {
		t.Fatal("expected a decision")
	}
	if decision.Phase != PhaseExact || decision.Distance != 0 {
		t.Fatalf("decision = %+v", decision)
	}
	if decision.Result.ID != "11" {
		t.Fatalf("result id = %s", decision.Result.ID)
	}
	// The stripped title is tried before the raw one.
	if gw.searchLog[0] != searchKey("Star Wars", 1977) {
		t.Fatalf("first search = %s", gw.searchLog[0])
	}
}

func TestResolveFallsBackToNearestPhase(t *testing.T) {
	gw := newFakeGateway()
	// Year-filtered searches find nothing.
	gw.searches[searchKey("Heat", 0)] = []provider.Summary{
		{ID: "90", ReleaseDate: "1989-01-01"},
		{ID: "91", ReleaseDate: "1996-06-01"},
	}
	gw.details["91"] = resultWithDate("91", "1996-06-01")

	decision, err := NewResolver(gw, nil).Resolve(context.Background(), "Heat", 1995)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if decision == nil || decision.Phase != PhaseNearest {
		t.Fatalf("decision = %+v", decision)
	}
	if decision.Result.ID != "91" || decision.Distance != 1 {
		t.Fatalf("expected nearest result 91 at distance 1, got %+v", decision)
	}
}

func TestResolveNearestPhaseShortCircuitsOnZero(t *testing.T) {
	gw := newFakeGateway()
	gw.searches[searchKey("Casino", 0)] = []provider.Summary{
		{ID: "20", ReleaseDate: "1990-01-01"},
		{ID: "21", ReleaseDate: "1995-11-22"},
		{ID: "22", ReleaseDate: "1995-01-01"},
	}
	gw.details["21"] = resultWithDate("21", "1995-11-22")

	decision, err := NewResolver(gw, nil).Resolve(context.Background(), "Casino", 1995)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if decision == nil || decision.Distance != 0 || decision.Result.ID != "21" {
		t.Fatalf("expected short-circuit on id 21, got %+v", decision)
	}
}

func TestResolveSwallowsPerCandidateFailures(t *testing.T) {
	gw := newFakeGateway()
	gw.searchErrs[searchKey("Star Trek", 1994)] = provider.Transient("fake", errors.New("timeout"))
	gw.searches[searchKey("Star Trek: Generations", 1994)] = []provider.Summary{
		{ID: "5", ReleaseDate: "1994-11-18"},
	}
	gw.details["5"] = resultWithDate("5", "1994-11-18")

	decision, err := NewResolver(gw, nil).Resolve(context.Background(), "Star Trek: Generations", 1994)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if decision == nil || decision.Result.ID != "5" {
		t.Fatalf("failure on one candidate must not abort resolution: %+v", decision)
	}
}

func TestResolveReturnsNilWhenNothingUsable(t *testing.T) {
	gw := newFakeGateway()
	decision, err := NewResolver(gw, nil).Resolve(context.Background(), "Completely Unknown", 1960)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if decision != nil {
		t.Fatalf("expected nil decision, got %+v", decision)
	}
}

func TestResolveWithoutYearAcceptsFirstUsableResult(t *testing.T) {
	gw := newFakeGateway()
	gw.searches[searchKey("Alien", 0)] = []provider.Summary{
		{ID: "348", ReleaseDate: "1979-05-25"},
	}
	gw.details["348"] = resultWithDate("348", "1979-05-25")

	decision, err := NewResolver(gw, nil).Resolve(context.Background(), "Alien", 0)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if decision == nil || decision.Result.ID != "348" || decision.Phase != PhaseExact {
		t.Fatalf("decision = %+v", decision)
	}
}

func TestResolveIdempotent(t *testing.T) {
	gw := newFakeGateway()
	gw.searches[searchKey("Godfather, The", 1972)] = nil
	gw.searches[searchKey("The Godfather", 1972)] = []provider.Summary{
		{ID: "238", ReleaseDate: "1972-03-14"},
	}
	gw.details["238"] = resultWithDate("238", "1972-03-14")
	r := NewResolver(gw, nil)

	first, err := r.Resolve(context.Background(), "Godfather, The (1972)", 1972)
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}
	second, err := r.Resolve(context.Background(), "Godfather, The (1972)", 1972)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("decisions diverged: %+v vs %+v", first, second)
	}
}

func TestResolvePropagatesCancellation(t *testing.T) {
	gw := newFakeGateway()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewResolver(gw, nil).Resolve(ctx, "Heat", 1995)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
