package summarizer

import (
	"fmt"
	"strings"

	"legispuls/models"
)

// Prompt limits. Content beyond the budget is silently dropped, and only
// the first few comments are quoted to the model.
const (
	MaxContentChars   = 12000
	MaxPromptComments = 8
)

// Section markers the model is told to emit. The parser keys off these.
const (
	HumanSummaryMarker = "### Streszczenie dla człowieka"
	AnalysisMarker     = "### Szczegółowa analiza (JSON)"
)

// SummaryRequest is the transient input of one summary generation.
type SummaryRequest struct {
	EntityType      models.EntityType
	EntityID        string
	Title           string
	Description     string
	Content         string
	Comments        []string
	ForceRegenerate bool
}

// BuildSummaryPrompt assembles the legislative-analysis prompt. It is a pure
// function of the request: same input, same prompt.
func BuildSummaryPrompt(req SummaryRequest) string {
	var b strings.Builder

	b.WriteString("Jesteś najlepszym polskim ekspertem legislacyjnym. Masz dwie rzeczy do zrobienia:\n\n")
	b.WriteString("1. Napisz KRÓTKIE (4-6 zdań), bardzo treściwe, profesjonalne streszczenie całej ustawy/projektu – tak, jakbyś tłumaczył to posłowi w windzie. To ma być jasne, bez żargonu, z sensem.\n\n")
	b.WriteString("2. Następnie zwróć szczegółową analizę w ścisłym formacie JSON (bez żadnego dodatkowego tekstu!).\n\n")

	fmt.Fprintf(&b, "Tytuł: %s\n", req.Title)
	if req.Description != "" {
		fmt.Fprintf(&b, "Opis: %s\n", req.Description)
	}
	if req.Content != "" {
		fmt.Fprintf(&b, "Treść aktu (fragment): %s...\n", truncateRunes(req.Content, MaxContentChars))
	}
	if len(req.Comments) > 0 {
		comments := req.Comments
		if len(comments) > MaxPromptComments {
			comments = comments[:MaxPromptComments]
		}
		fmt.Fprintf(&b, "Komentarze obywateli (%d): %s...\n", len(req.Comments), strings.Join(comments, "; "))
	}

	b.WriteString("\nZwróć dokładnie tak:\n\n")
	b.WriteString(HumanSummaryMarker + "\n")
	b.WriteString("[Tutaj Twoje 4-6 zdań]\n\n")
	b.WriteString(AnalysisMarker + "\n")
	b.WriteString(`{
  "mainPoints": string[],
  "impact": string,
  "complexity": "low"|"medium"|"high",
  "stakeholders": string[],
  "timeline": string,
  "risks": string[],
  "opportunities": string[],
  "recommendation": string,
  "confidence": number
}`)

	return b.String()
}

// CommentsRequest is the transient input of one comment-analysis run.
type CommentsRequest struct {
	EntityType      models.EntityType
	EntityID        string
	Title           string
	Comments        []string
	ForceRegenerate bool
}

// MaxAnalysisComments caps how many comments are quoted to the model for
// the comment-analysis operation.
const MaxAnalysisComments = 40

// BuildCommentsPrompt assembles the citizen-comment analysis prompt.
func BuildCommentsPrompt(req CommentsRequest) string {
	var b strings.Builder

	b.WriteString("Jesteś ekspertem od konsultacji publicznych. Przeanalizuj komentarze obywateli do poniższego projektu i zwróć wynik w ścisłym formacie JSON (bez żadnego dodatkowego tekstu!).\n\n")
	fmt.Fprintf(&b, "Projekt: %s\n", req.Title)

	comments := req.Comments
	if len(comments) > MaxAnalysisComments {
		comments = comments[:MaxAnalysisComments]
	}
	fmt.Fprintf(&b, "Komentarze (%d):\n", len(req.Comments))
	for i, c := range comments {
		fmt.Fprintf(&b, "%d. %s\n", i+1, truncateRunes(c, 500))
	}

	b.WriteString(`
Zwróć dokładnie tak:

{
  "sentiment": { "positive": number, "negative": number, "neutral": number, "overall": "positive"|"negative"|"neutral" },
  "keyThemes": [ { "theme": string, "count": number, "sentiment": "positive"|"negative"|"neutral", "examples": string[] } ],
  "insights": [ { "type": "concern"|"suggestion"|"praise"|"issue", "title": string, "description": string, "confidence": number, "commentsCount": number } ],
  "summary": string
}`)

	return b.String()
}

// truncateRunes returns s truncated to max runes.
func truncateRunes(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
