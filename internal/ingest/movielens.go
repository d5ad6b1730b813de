package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"cinefill/internal/catalog"
)

const genreFlagCount = 19

// Dataset file names inside a MovieLens 100K directory.
const (
	itemsFile  = "u.item"
	genresFile = "u.genre"
	dataFile   = "u.data"
)

// LoadDataset reads a MovieLens 100K directory and returns catalog seeds
// with genres resolved and per-movie ratings attached. The title's trailing
// "(year)" is split off into the seed year; the title keeps its raw form
// otherwise.
func LoadDataset(dir string) ([]catalog.MovieSeed, error) {
	genres, err := readGenreIndex(filepath.Join(dir, genresFile))
	if err != nil {
		return nil, err
	}
	seeds, order, err := readMovies(filepath.Join(dir, itemsFile), genres)
	if err != nil {
		return nil, err
	}
	if err := attachRatings(filepath.Join(dir, dataFile), seeds); err != nil {
		return nil, err
	}

	out := make([]catalog.MovieSeed, 0, len(order))
	for _, id := range order {
		out = append(out, *seeds[id])
	}
	return out, nil
}

// openLatin1 opens a dataset file and decodes it from ISO 8859-1.
func openLatin1(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open dataset file: %w", err)
	}
	return charmap.ISO8859_1.NewDecoder().Reader(f), f.Close, nil
}

// readGenreIndex parses u.genre lines of the form "Action|1".
func readGenreIndex(path string) (map[int]string, error) {
	r, closeFile, err := openLatin1(path)
	if err != nil {
		return nil, err
	}
	defer closeFile()

	index := make(map[int]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.Contains(line, "|") {
			continue
		}
		name, idxText, _ := strings.Cut(line, "|")
		idx, err := strconv.Atoi(strings.TrimSpace(idxText))
		if err != nil {
			continue
		}
		index[idx] = strings.TrimSpace(name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", genresFile, err)
	}
	return index, nil
}

// readMovies parses u.item: pipe-separated rows whose tail is 19 one-hot
// genre flags. Returns seeds keyed by source movie id plus the source order.
func readMovies(path string, genres map[int]string) (map[int]*catalog.MovieSeed, []int, error) {
	r, closeFile, err := openLatin1(path)
	if err != nil {
		return nil, nil, err
	}
	defer closeFile()

	seeds := make(map[int]*catalog.MovieSeed)
	var order []int
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) < 5+genreFlagCount {
			return nil, nil, fmt.Errorf("%s line %d: expected at least %d fields, got %d", itemsFile, lineNo, 5+genreFlagCount, len(fields))
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: bad movie id %q", itemsFile, lineNo, fields[0])
		}
		title, year := splitTitleYear(fields[1])
		seed := &catalog.MovieSeed{
			Title:   title,
			Year:    year,
			IMDBURL: strings.TrimSpace(fields[4]),
		}
		flags := fields[len(fields)-genreFlagCount:]
		for i, flag := range flags {
			if strings.TrimSpace(flag) != "1" {
				continue
			}
			if name, ok := genres[i]; ok {
				seed.Genres = append(seed.Genres, name)
			}
		}
		seeds[id] = seed
		order = append(order, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", itemsFile, err)
	}
	return seeds, order, nil
}

// attachRatings parses u.data ("user \t movie \t rating \t timestamp") and
// appends ratings to their movies, also filling each seed's average.
func attachRatings(path string, seeds map[int]*catalog.MovieSeed) error {
	r, closeFile, err := openLatin1(path)
	if err != nil {
		return err
	}
	defer closeFile()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return fmt.Errorf("%s line %d: expected at least 3 fields", dataFile, lineNo)
		}
		userID, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return fmt.Errorf("%s line %d: bad user id %q", dataFile, lineNo, fields[0])
		}
		movieID, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("%s line %d: bad movie id %q", dataFile, lineNo, fields[1])
		}
		rating, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("%s line %d: bad rating %q", dataFile, lineNo, fields[2])
		}
		seed, ok := seeds[movieID]
		if !ok {
			// Ratings for unknown movies are dropped, not fatal.
			continue
		}
		seed.Ratings = append(seed.Ratings, catalog.RatingSeed{UserID: userID, Rating: rating})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", dataFile, err)
	}

	for _, seed := range seeds {
		if len(seed.Ratings) == 0 {
			continue
		}
		var sum float64
		for _, r := range seed.Ratings {
			sum += r.Rating
		}
		avg := sum / float64(len(seed.Ratings))
		seed.AvgRating = &avg
	}
	return nil
}

// splitTitleYear peels a trailing "(1995)" off a raw title. The year must be
// all digits; anything else stays part of the title.
func splitTitleYear(raw string) (string, *int) {
	title := strings.TrimSpace(raw)
	if !strings.HasSuffix(title, ")") {
		return title, nil
	}
	open := strings.LastIndex(title, "(")
	if open == -1 {
		return title, nil
	}
	inner := title[open+1 : len(title)-1]
	year, err := strconv.Atoi(inner)
	if err != nil || len(inner) != 4 {
		return title, nil
	}
	return strings.TrimSpace(title[:open]), &year
}
