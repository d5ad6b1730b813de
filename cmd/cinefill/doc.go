// Command cinefill manages a movie catalog: it ingests the MovieLens
// dataset, enriches incomplete records against an external metadata
// provider, builds a semantic vector index, and serves search and
// question-answering over HTTP.
package main
