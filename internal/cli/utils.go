// Package cli provides CLI utilities for Hondana.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/hondana/internal/models"
)

// SearchOutputFormat is the format for search result output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response)
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	fmt.Fprintf(w, "\nFound %d results in %dms (page %d of size %d)\n\n",
		response.TotalCount, response.QueryTime, response.Page, response.PageSize)
	for _, result := range response.Results {
		writeOneResult(w, result)
	}
	if response.HasMore {
		fmt.Fprintf(w, "More results available on page %d\n", response.Page+1)
	}
	if len(response.SuggestedKeywords) > 0 {
		fmt.Fprintf(w, "Suggestions: %s\n", strings.Join(response.SuggestedKeywords, ", "))
	}
}

func writeOneResult(w io.Writer, result *models.SearchResult) {
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	fmt.Fprintf(w, "[%s] Score: %.3f\n", result.Type, result.Score)
	fmt.Fprintf(w, "ID: %s\n", result.ID)
	fmt.Fprintf(w, "Title: %s\n", result.Title)
	if result.Subtitle != "" {
		fmt.Fprintf(w, "By: %s\n", result.Subtitle)
	}
	if result.Description != "" {
		fmt.Fprintf(w, "\n%s\n", Truncate(result.Description, 200))
	}
	fmt.Fprintln(w)
}

// PrintSearchResults prints search results to stdout in text format.
func PrintSearchResults(response *models.SearchResponse) {
	_ = WriteSearchResults(os.Stdout, response, OutputText)
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
