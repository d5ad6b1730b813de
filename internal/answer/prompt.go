package answer

import (
	"fmt"
	"strings"

	"cinefill/internal/catalog"
)

// systemPrompt pins the assistant to the supplied sources.
const systemPrompt = "You are a movie assistant. Use the provided items as support sources " +
	"for your answer. Drive the answer to the user question mainly from these sources. " +
	"Answer briefly (2-5 sentences), citing titles, years, ratings, directors and cast when helpful."

// maxSupportingItems caps how many records go into the prompt; more support
// does not improve short answers and inflates token cost.
const maxSupportingItems = 10

// buildUserPrompt renders the question plus one bullet per supporting movie.
func buildUserPrompt(question string, movies []*catalog.Movie) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User question: %s\n\nItems:\n", strings.TrimSpace(question))
	for i, movie := range movies {
		if i == maxSupportingItems {
			break
		}
		b.WriteString(bullet(movie))
		b.WriteByte('\n')
	}
	return b.String()
}

func bullet(movie *catalog.Movie) string {
	title := strings.TrimSpace(movie.CanonicalTitle)
	if title == "" {
		title = strings.TrimSpace(movie.Title)
	}
	year := "-"
	if movie.Year != nil {
		year = fmt.Sprintf("%d", *movie.Year)
	}
	rating := "-"
	if movie.AvgRating != nil {
		rating = fmt.Sprintf("%.2f", *movie.AvgRating)
	}
	director := strings.TrimSpace(movie.Director)
	if director == "" {
		director = "-"
	}
	parts := []string{
		fmt.Sprintf("- %s (%s), rating %s", title, year, rating),
	}
	if genres := strings.TrimSpace(movie.Genres); genres != "" {
		parts = append(parts, genres)
	}
	parts = append(parts, "Dir: "+director)
	if cast := strings.TrimSpace(movie.CastList); cast != "" {
		parts = append(parts, "Cast: "+cast)
	}
	return strings.Join(parts, " | ")
}
