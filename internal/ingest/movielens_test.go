package ingest

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func flags(set ...int) string {
	parts := make([]string, genreFlagCount)
	for i := range parts {
		parts[i] = "0"
	}
	for _, idx := range set {
		parts[idx] = "1"
	}
	return strings.Join(parts, "|")
}

func writeDataset(t *testing.T, items, genres, data string) string {
	t.Helper()
	dir := t.TempDir()
	encoder := charmap.ISO8859_1.NewEncoder()
	for name, content := range map[string]string{
		itemsFile:  items,
		genresFile: genres,
		dataFile:   data,
	} {
		encoded, err := encoder.String(content)
		if err != nil {
			t.Fatalf("encode %s: %v", name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(encoded), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadDataset(t *testing.T) {
	items := strings.Join([]string{
		"1|Toy Story (1995)|01-Jan-1995||http://us.imdb.com/M/title-exact?Toy%20Story%20(1995)|" + flags(1, 2),
		"2|GoldenEye (1995)|01-Jan-1995||http://us.imdb.com/M/title-exact?GoldenEye%20(1995)|" + flags(0),
		"3|Cél?lo|||" + "|" + flags(),
	}, "\n") + "\n"
	genres := "unknown|0\nAction|1\nAdventure|2\n"
	data := "196\t1\t3\t881250949\n186\t1\t5\t891717742\n22\t2\t1\t878887116\n944\t99\t4\t875072484\n"

	seeds, err := LoadDataset(writeDataset(t, items, genres, data))
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if len(seeds) != 3 {
		t.Fatalf("expected 3 seeds, got %d", len(seeds))
	}

	ts := seeds[0]
	if ts.Title != "Toy Story" {
		t.Errorf("title = %q", ts.Title)
	}
	if ts.Year == nil || *ts.Year != 1995 {
		t.Errorf("year = %v", ts.Year)
	}
	if strings.Join(ts.Genres, ",") != "Action,Adventure" {
		t.Errorf("genres = %v", ts.Genres)
	}
	if len(ts.Ratings) != 2 {
		t.Fatalf("ratings = %+v", ts.Ratings)
	}
	if ts.AvgRating == nil || math.Abs(*ts.AvgRating-4.0) > 1e-9 {
		t.Errorf("avg rating = %v", ts.AvgRating)
	}
	if !strings.Contains(ts.IMDBURL, "Toy%20Story") {
		t.Errorf("imdb url = %q", ts.IMDBURL)
	}

	ge := seeds[1]
	if strings.Join(ge.Genres, ",") != "unknown" {
		t.Errorf("genres = %v", ge.Genres)
	}
	if ge.AvgRating == nil || *ge.AvgRating != 1.0 {
		t.Errorf("avg rating = %v", ge.AvgRating)
	}

	// Latin-1 bytes decode back into the accented title; no year to split.
	if seeds[2].Title != "Cél?lo" {
		t.Errorf("title = %q", seeds[2].Title)
	}
	if seeds[2].Year != nil {
		t.Errorf("year = %v", seeds[2].Year)
	}
	if seeds[2].AvgRating != nil {
		t.Errorf("movie without ratings should have nil average, got %v", seeds[2].AvgRating)
	}
}

func TestSplitTitleYear(t *testing.T) {
	cases := []struct {
		raw   string
		title string
		year  int // 0 means nil
	}{
		{"Toy Story (1995)", "Toy Story", 1995},
		{"Léon (The Professional)", "Léon (The Professional)", 0},
		{"Alien", "Alien", 0},
		{"Godfather, The (1972)", "Godfather, The", 1972},
		{"Weird (99)", "Weird (99)", 0},
	}
	for _, tc := range cases {
		title, year := splitTitleYear(tc.raw)
		if title != tc.title {
			t.Errorf("splitTitleYear(%q) title = %q, want %q", tc.raw, title, tc.title)
		}
		switch {
		case tc.year == 0 && year != nil:
			t.Errorf("splitTitleYear(%q) year = %d, want nil", tc.raw, *year)
		case tc.year != 0 && (year == nil || *year != tc.year):
			t.Errorf("splitTitleYear(%q) year = %v, want %d", tc.raw, year, tc.year)
		}
	}
}

func TestLoadDatasetMissingFiles(t *testing.T) {
	if _, err := LoadDataset(t.TempDir()); err == nil {
		t.Fatal("expected error for empty dataset directory")
	}
}
