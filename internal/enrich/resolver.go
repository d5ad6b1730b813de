package enrich

import (
	"context"
	"log/slog"

	"cinefill/internal/logging"
	"cinefill/internal/provider"
)

// Phase names the half of the two-phase search that produced a decision.
type Phase string

const (
	// PhaseExact means the year-filtered search found a distance-0 match.
	PhaseExact Phase = "exact"
	// PhaseNearest means the unfiltered fallback picked the closest year.
	PhaseNearest Phase = "nearest"
)

// Decision is the outcome of resolving one title: the chosen provider
// result, its year distance, and which phase chose it.
type Decision struct {
	Result   *provider.Result
	Distance int
	Phase    Phase
}

// Resolver finds the best provider match for a title and target year.
type Resolver struct {
	gateway provider.Gateway
	logger  *slog.Logger
}

// NewResolver creates a resolver backed by the given gateway. A nil logger
// disables logging.
func NewResolver(gateway provider.Gateway, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{gateway: gateway, logger: logger}
}

// Resolve runs the two-phase search for one title. Phase A queries each
// candidate with the year filter and accepts the first details record whose
// reported date matches the target year exactly. Phase B re-queries without
// the filter and keeps the globally nearest result across all candidates,
// short-circuiting on a distance of 0. A nil decision means no candidate
// produced a usable result.
//
// Individual search and details failures count as "no result for this
// candidate" and never abort resolution; only context cancellation
// propagates.
func (r *Resolver) Resolve(ctx context.Context, title string, targetYear int) (*Decision, error) {
	cands := Candidates(title)

	if decision, err := r.exactPhase(ctx, cands, targetYear); err != nil || decision != nil {
		return decision, err
	}
	return r.nearestPhase(ctx, cands, targetYear)
}

func (r *Resolver) exactPhase(ctx context.Context, cands []string, targetYear int) (*Decision, error) {
	for _, cand := range cands {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		summaries, err := r.gateway.Search(ctx, cand, targetYear)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Debug("candidate search failed",
				logging.String(logging.FieldCandidate, cand),
				logging.String(logging.FieldPhase, string(PhaseExact)),
				logging.Error(err))
			continue
		}
		for _, summary := range summaries {
			result, err := r.details(ctx, summary.ID, cand, PhaseExact)
			if err != nil {
				return nil, err
			}
			if result == nil {
				continue
			}
			// Without a trusted year the filtered search cannot be scored;
			// the first usable details record wins.
			if targetYear <= 0 {
				return &Decision{Result: result, Distance: 0, Phase: PhaseExact}, nil
			}
			if dist, ok := YearDistance(result.ReleaseDate, targetYear); ok && dist == 0 {
				return &Decision{Result: result, Distance: 0, Phase: PhaseExact}, nil
			}
		}
	}
	return nil, nil
}

func (r *Resolver) nearestPhase(ctx context.Context, cands []string, targetYear int) (*Decision, error) {
	var (
		best     provider.Summary
		bestDist int
		found    bool
	)
	for _, cand := range cands {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		summaries, err := r.gateway.Search(ctx, cand, 0)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Debug("candidate search failed",
				logging.String(logging.FieldCandidate, cand),
				logging.String(logging.FieldPhase, string(PhaseNearest)),
				logging.Error(err))
			continue
		}
		for _, summary := range summaries {
			dist, ok := YearDistance(summary.ReleaseDate, targetYear)
			if !ok {
				continue
			}
			if dist == 0 {
				result, err := r.details(ctx, summary.ID, cand, PhaseNearest)
				if err != nil {
					return nil, err
				}
				if result != nil {
					return &Decision{Result: result, Distance: 0, Phase: PhaseNearest}, nil
				}
				continue
			}
			if !found || dist < bestDist {
				best, bestDist, found = summary, dist, true
			}
		}
	}
	if !found {
		return nil, nil
	}
	result, err := r.details(ctx, best.ID, best.Title, PhaseNearest)
	if err != nil || result == nil {
		return nil, err
	}
	return &Decision{Result: result, Distance: bestDist, Phase: PhaseNearest}, nil
}

// details fetches a full record, treating failures as a missing result.
func (r *Resolver) details(ctx context.Context, id, cand string, phase Phase) (*provider.Result, error) {
	result, err := r.gateway.Details(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Debug("details fetch failed",
			logging.String(logging.FieldCandidate, cand),
			logging.String(logging.FieldPhase, string(phase)),
			logging.Error(err))
		return nil, nil
	}
	return result, nil
}
