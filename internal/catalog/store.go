package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cinefill/internal/config"
)

// Store manages catalog persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the catalog database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath opens the catalog database at an explicit location.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies store connectivity. Scheduler runs call this at startup so a
// broken database fails the run before any provider traffic happens.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Import inserts ingested movies with their genres and ratings in a single
// transaction. Duplicate (title, year) pairs within the batch are skipped.
func (s *Store) Import(ctx context.Context, seeds []MovieSeed) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	genreIDs := make(map[string]int64)
	seen := make(map[string]struct{}, len(seeds))
	inserted := 0

	for _, seed := range seeds {
		title := strings.TrimSpace(seed.Title)
		if title == "" {
			continue
		}
		key := dedupeKey(title, seed.Year)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		res, err := tx.ExecContext(
			ctx,
			`INSERT INTO movies (title, year, avg_rating, imdb_url, created_at, updated_at)
	         VALUES (?, ?, ?, ?, ?, ?)`,
			title,
			nullableInt(seed.Year),
			nullableFloat(seed.AvgRating),
			nullableString(seed.IMDBURL),
			now,
			now,
		)
		if err != nil {
			return 0, fmt.Errorf("insert movie %q: %w", title, err)
		}
		movieID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("last insert id: %w", err)
		}
		inserted++

		for _, genre := range seed.Genres {
			genre = strings.TrimSpace(genre)
			if genre == "" {
				continue
			}
			genreID, ok := genreIDs[genre]
			if !ok {
				if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO genres (name) VALUES (?)`, genre); err != nil {
					return 0, fmt.Errorf("insert genre %q: %w", genre, err)
				}
				row := tx.QueryRowContext(ctx, `SELECT id FROM genres WHERE name = ?`, genre)
				if err := row.Scan(&genreID); err != nil {
					return 0, fmt.Errorf("resolve genre %q: %w", genre, err)
				}
				genreIDs[genre] = genreID
			}
			if _, err := tx.ExecContext(
				ctx,
				`INSERT OR IGNORE INTO movie_genre (movie_id, genre_id) VALUES (?, ?)`,
				movieID, genreID,
			); err != nil {
				return 0, fmt.Errorf("link genre: %w", err)
			}
		}

		for _, rating := range seed.Ratings {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO ratings (movie_id, user_id, rating) VALUES (?, ?, ?)`,
				movieID, rating.UserID, rating.Rating,
			); err != nil {
				return 0, fmt.Errorf("insert rating: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return inserted, nil
}

// ListIncomplete returns one work item per movie with at least one unset
// enrichable field. This is the full work list for an enrichment run.
func (s *Store) ListIncomplete(ctx context.Context) ([]WorkItem, error) {
	query := `SELECT id, title, year, ` + strings.Join(enrichableFields, ", ") +
		` FROM movies WHERE ` + anyFieldUnsetClause() + ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list incomplete: %w", err)
	}
	defer rows.Close()

	var items []WorkItem
	for rows.Next() {
		var (
			item   WorkItem
			year   sql.NullInt64
			values = make([]sql.NullString, len(enrichableFields))
			dest   = make([]any, 0, 3+len(enrichableFields))
		)
		dest = append(dest, &item.ID, &item.Title, &year)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan work item: %w", err)
		}
		if year.Valid {
			y := int(year.Int64)
			item.Year = &y
		}
		item.Existing = make(Fields, len(enrichableFields))
		for i, field := range enrichableFields {
			item.Existing[field] = values[i].String
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// MergeFields fills the provided fields for one movie. Columns that already
// hold a non-empty value are left untouched regardless of the new value.
func (s *Store) MergeFields(ctx context.Context, id int64, fields Fields) error {
	return s.MergeBatch(ctx, []FieldUpdate{{ID: id, Fields: fields}})
}

// MergeBatch applies a batch of field updates in a single transaction. The
// batch is all-or-nothing: a failure leaves every movie in the batch
// unchanged so the caller can retry or report it.
func (s *Store) MergeBatch(ctx context.Context, updates []FieldUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin merge tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, update := range updates {
		assignments := make([]string, 0, len(update.Fields)+1)
		args := make([]any, 0, len(update.Fields)+2)
		for _, field := range enrichableFields {
			value, ok := update.Fields[field]
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)
			if value == "" {
				continue
			}
			// Never overwrite a field that already holds data.
			assignments = append(assignments, fmt.Sprintf(
				"%s = CASE WHEN %s IS NULL OR TRIM(%s) = '' THEN ? ELSE %s END",
				field, field, field, field,
			))
			args = append(args, value)
		}
		for field := range update.Fields {
			if !IsEnrichableField(field) {
				return fmt.Errorf("%w: %q", ErrUnknownField, field)
			}
		}
		if len(assignments) == 0 {
			continue
		}
		assignments = append(assignments, "updated_at = ?")
		args = append(args, now, update.ID)

		query := `UPDATE movies SET ` + strings.Join(assignments, ", ") + ` WHERE id = ?`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("merge fields for movie %d: %w", update.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit merge batch: %w", err)
	}
	return nil
}

// GetByID fetches a movie by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Movie, error) {
	row := s.db.QueryRowContext(ctx, movieSelect+` WHERE m.id = ?`, id)
	movie, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get movie: %w", err)
	}
	return movie, nil
}

// GetByIDs returns movies in the order the ids were supplied. Unknown ids are
// silently dropped so semantic-search results survive catalog edits.
func (s *Store) GetByIDs(ctx context.Context, ids []int64) ([]*Movie, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(ids))
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.QueryContext(ctx, movieSelect+` WHERE m.id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("get movies: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]*Movie, len(ids))
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		byID[movie.ID] = movie
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ordered := make([]*Movie, 0, len(ids))
	for _, id := range ids {
		if movie, ok := byID[id]; ok {
			ordered = append(ordered, movie)
		}
	}
	return ordered, nil
}

// ListAll returns every movie ordered by id. Used by the index build.
func (s *Store) ListAll(ctx context.Context) ([]*Movie, error) {
	rows, err := s.db.QueryContext(ctx, movieSelect+` ORDER BY m.id`)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	var movies []*Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	return movies, rows.Err()
}

// Stats returns completeness counts for diagnostic output.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{PerField: make(map[string]int, len(enrichableFields))}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM movies`)
	if err := row.Scan(&stats.Total); err != nil {
		return Stats{}, fmt.Errorf("count movies: %w", err)
	}

	row = s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM movies WHERE `+anyFieldUnsetClause())
	if err := row.Scan(&stats.Incomplete); err != nil {
		return Stats{}, fmt.Errorf("count incomplete: %w", err)
	}

	for _, field := range enrichableFields {
		query := fmt.Sprintf(`SELECT COUNT(1) FROM movies WHERE %s IS NOT NULL AND TRIM(%s) <> ''`, field, field)
		row := s.db.QueryRowContext(ctx, query)
		var filled int
		if err := row.Scan(&filled); err != nil {
			return Stats{}, fmt.Errorf("count filled %s: %w", field, err)
		}
		stats.PerField[field] = filled
	}
	return stats, nil
}

const movieSelect = `SELECT m.id, m.title, m.year, m.avg_rating, m.imdb_url,
    m.external_id, m.canonical_title, m.overview, m.release_date, m.director, m.cast_list,
    m.created_at, m.updated_at,
    (SELECT GROUP_CONCAT(g.name, ', ')
       FROM movie_genre mg JOIN genres g ON g.id = mg.genre_id
      WHERE mg.movie_id = m.id) AS genres
  FROM movies m`

func scanMovie(scanner interface{ Scan(dest ...any) error }) (*Movie, error) {
	var (
		movie      Movie
		year       sql.NullInt64
		avgRating  sql.NullFloat64
		imdbURL    sql.NullString
		externalID sql.NullString
		canonical  sql.NullString
		overview   sql.NullString
		release    sql.NullString
		director   sql.NullString
		castList   sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
		genres     sql.NullString
	)

	if err := scanner.Scan(
		&movie.ID,
		&movie.Title,
		&year,
		&avgRating,
		&imdbURL,
		&externalID,
		&canonical,
		&overview,
		&release,
		&director,
		&castList,
		&createdRaw,
		&updatedRaw,
		&genres,
	); err != nil {
		return nil, err
	}

	if year.Valid {
		y := int(year.Int64)
		movie.Year = &y
	}
	if avgRating.Valid {
		r := avgRating.Float64
		movie.AvgRating = &r
	}
	movie.IMDBURL = imdbURL.String
	movie.ExternalID = externalID.String
	movie.CanonicalTitle = canonical.String
	movie.Overview = overview.String
	movie.ReleaseDate = release.String
	movie.Director = director.String
	movie.CastList = castList.String
	movie.Genres = genres.String

	if created, err := parseTimeString(createdRaw.String); err == nil {
		movie.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		movie.UpdatedAt = updated
	}
	return &movie, nil
}

func anyFieldUnsetClause() string {
	clauses := make([]string, 0, len(enrichableFields))
	for _, field := range enrichableFields {
		clauses = append(clauses, fmt.Sprintf("(%s IS NULL OR TRIM(%s) = '')", field, field))
	}
	return strings.Join(clauses, " OR ")
}

func dedupeKey(title string, year *int) string {
	key := strings.ToLower(strings.TrimSpace(title))
	if year != nil {
		key = fmt.Sprintf("%s|%d", key, *year)
	}
	return key
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
