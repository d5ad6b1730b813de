// Package enrich reconciles catalog movies against an external metadata
// provider and fills their missing fields.
//
// The pipeline has three pure pieces and two orchestrators. Candidates
// derives alternate search strings from a noisy title; YearDistance scores a
// provider-reported date against a trusted target year; Merge computes the
// missing-only write set for a record. The Resolver runs a two-phase search
// (year-filtered first, nearest-year fallback second) over those pieces for
// one movie, and the Scheduler drives resolution for a whole batch under a
// bounded worker pool with batched store writes.
//
// Re-running the scheduler is always safe: selection re-reads current state
// and merges never replace a field that is already set, so interrupted runs
// converge on the same final catalog.
package enrich
