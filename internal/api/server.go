package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"cinefill/internal/catalog"
	"cinefill/internal/logging"
)

const defaultSearchK = 12

// Searcher answers semantic queries with ranked movie ids.
type Searcher interface {
	SearchIDs(ctx context.Context, query string, k int) ([]int64, error)
}

// MovieReader fetches catalog records, preserving the requested order.
type MovieReader interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*catalog.Movie, error)
	Ping(ctx context.Context) error
}

// AnswerGenerator produces a short answer grounded on supporting movies.
type AnswerGenerator interface {
	Generate(ctx context.Context, question string, movies []*catalog.Movie) (string, error)
}

// Server exposes the catalog query endpoints.
type Server struct {
	searcher Searcher
	movies   MovieReader
	answerer AnswerGenerator
	logger   *slog.Logger
	router   chi.Router
}

// NewServer wires the router. The answerer may be nil, in which case /ask
// responds 503.
func NewServer(searcher Searcher, movies MovieReader, answerer AnswerGenerator, logger *slog.Logger) (*Server, error) {
	if searcher == nil {
		return nil, errors.New("api: searcher required")
	}
	if movies == nil {
		return nil, errors.New("api: movie reader required")
	}
	s := &Server{
		searcher: searcher,
		movies:   movies,
		answerer: answerer,
		logger:   logging.NewComponentLogger(logger, "api"),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Get("/healthz", s.handleHealth)
	r.Post("/search", s.handleSearch)
	r.Post("/movies", s.handleMovies)
	r.Post("/ask", s.handleAsk)
	s.router = r
	return s, nil
}

// Handler returns the http handler for mounting or serving.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks serving the API until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api listening", logging.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type searchResponse struct {
	IDs []int64 `json:"ids"`
}

type moviesRequest struct {
	IDs []int64 `json:"ids"`
}

type moviesResponse struct {
	Movies []movieRecord `json:"movies"`
}

type askResponse struct {
	IDs        []int64  `json:"ids"`
	Answer     string   `json:"answer"`
	UsedTitles []string `json:"used_titles"`
}

// movieRecord is the wire shape of one catalog record.
type movieRecord struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Year        *int     `json:"year,omitempty"`
	AvgRating   *float64 `json:"avg_rating,omitempty"`
	Genres      string   `json:"genres,omitempty"`
	Director    string   `json:"director,omitempty"`
	Cast        string   `json:"cast,omitempty"`
	Overview    string   `json:"overview,omitempty"`
	ReleaseDate string   `json:"release_date,omitempty"`
	ExternalID  string   `json:"external_id,omitempty"`
}

func toRecord(m *catalog.Movie) movieRecord {
	title := strings.TrimSpace(m.CanonicalTitle)
	if title == "" {
		title = m.Title
	}
	return movieRecord{
		ID:          m.ID,
		Title:       title,
		Year:        m.Year,
		AvgRating:   m.AvgRating,
		Genres:      m.Genres,
		Director:    m.Director,
		Cast:        m.CastList,
		Overview:    m.Overview,
		ReleaseDate: m.ReleaseDate,
		ExternalID:  m.ExternalID,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.movies.Ping(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "catalog unavailable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.K <= 0 {
		req.K = defaultSearchK
	}
	ids, err := s.searcher.SearchIDs(r.Context(), req.Query, req.K)
	if err != nil {
		s.logger.Error("semantic search failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	s.writeJSON(w, http.StatusOK, searchResponse{IDs: ids})
}

func (s *Server) handleMovies(w http.ResponseWriter, r *http.Request) {
	var req moviesRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		s.writeJSON(w, http.StatusOK, moviesResponse{Movies: []movieRecord{}})
		return
	}
	movies, err := s.movies.GetByIDs(r.Context(), req.IDs)
	if err != nil {
		s.logger.Error("metadata lookup failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	records := make([]movieRecord, len(movies))
	for i, movie := range movies {
		records[i] = toRecord(movie)
	}
	s.writeJSON(w, http.StatusOK, moviesResponse{Movies: records})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if s.answerer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "answer generation is not configured")
		return
	}
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.K <= 0 {
		req.K = defaultSearchK
	}
	ids, err := s.searcher.SearchIDs(r.Context(), req.Query, req.K)
	if err != nil {
		s.logger.Error("semantic search failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if len(ids) == 0 {
		s.writeError(w, http.StatusNotFound, "no supporting movies found")
		return
	}
	movies, err := s.movies.GetByIDs(r.Context(), ids)
	if err != nil {
		s.logger.Error("metadata lookup failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	answer, err := s.answerer.Generate(r.Context(), req.Query, movies)
	if err != nil {
		s.logger.Error("answer generation failed", logging.Error(err))
		s.writeError(w, http.StatusBadGateway, "answer generation failed")
		return
	}
	titles := make([]string, len(movies))
	for i, movie := range movies {
		titles[i] = toRecord(movie).Title
	}
	s.writeJSON(w, http.StatusOK, askResponse{IDs: ids, Answer: answer, UsedTitles: titles})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write response failed", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
