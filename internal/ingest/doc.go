// Package ingest reads a MovieLens 100K dataset directory into catalog
// seeds. The dataset ships as latin-1 pipe/tab separated text files: u.item
// (movies with one-hot genre flags), u.genre (genre index) and u.data (user
// ratings).
package ingest
