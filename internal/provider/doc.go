// Package provider defines the reference-provider gateway contract used by
// the match resolver, the error taxonomy for transport failures, and a
// retrying decorator that applies exponential backoff with jitter to
// transient errors.
//
// Provider adapters (tmdb, omdb) normalize their responses into the single
// Result shape at the boundary, so the resolver never branches on
// provider-specific payloads.
package provider
