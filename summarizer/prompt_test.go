package summarizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"legispuls/models"
	"legispuls/summarizer"
)

func TestBuildSummaryPromptDeterministic(t *testing.T) {
	req := summarizer.SummaryRequest{
		EntityType:  models.EntityLegislativeAct,
		EntityID:    "DU/2025/100",
		Title:       "Ustawa o zmianie ustawy o podatku dochodowym",
		Description: "Projekt obniża stawkę PIT.",
		Content:     "Art. 1. W ustawie z dnia...",
		Comments:    []string{"Popieram", "Za szybko procedowane"},
	}

	first := summarizer.BuildSummaryPrompt(req)
	second := summarizer.BuildSummaryPrompt(req)
	assert.Equal(t, first, second)

	assert.Contains(t, first, "Tytuł: Ustawa o zmianie ustawy o podatku dochodowym")
	assert.Contains(t, first, "Opis: Projekt obniża stawkę PIT.")
	assert.Contains(t, first, "Treść aktu (fragment): Art. 1. W ustawie z dnia...")
	assert.Contains(t, first, "Komentarze obywateli (2): Popieram; Za szybko procedowane")
	assert.Contains(t, first, summarizer.HumanSummaryMarker)
	assert.Contains(t, first, summarizer.AnalysisMarker)
}

func TestBuildSummaryPromptOmitsEmptySections(t *testing.T) {
	prompt := summarizer.BuildSummaryPrompt(summarizer.SummaryRequest{
		EntityType: models.EntityConsultation,
		EntityID:   "c1",
		Title:      "Projekt",
	})

	assert.NotContains(t, prompt, "Opis:")
	assert.NotContains(t, prompt, "Treść aktu")
	assert.NotContains(t, prompt, "Komentarze obywateli")
}

func TestBuildSummaryPromptTruncatesContent(t *testing.T) {
	content := strings.Repeat("ż", 20000)
	prompt := summarizer.BuildSummaryPrompt(summarizer.SummaryRequest{
		EntityType: models.EntityLegislativeAct,
		EntityID:   "a1",
		Title:      "T",
		Content:    content,
	})

	assert.Equal(t, summarizer.MaxContentChars, strings.Count(prompt, "ż"))
	assert.NotContains(t, prompt, strings.Repeat("ż", summarizer.MaxContentChars+1))
}

func TestBuildSummaryPromptCapsComments(t *testing.T) {
	comments := make([]string, 15)
	for i := range comments {
		comments[i] = "komentarz"
	}
	prompt := summarizer.BuildSummaryPrompt(summarizer.SummaryRequest{
		EntityType: models.EntityLegislativeAct,
		EntityID:   "a1",
		Title:      "T",
		Comments:   comments,
	})

	// The header reports the full count but only the first few are quoted.
	assert.Contains(t, prompt, "Komentarze obywateli (15):")
	assert.Equal(t, summarizer.MaxPromptComments, strings.Count(prompt, "komentarz"))
}

func TestBuildCommentsPrompt(t *testing.T) {
	prompt := summarizer.BuildCommentsPrompt(summarizer.CommentsRequest{
		EntityType: models.EntityConsultation,
		EntityID:   "c1",
		Title:      "Projekt rozporządzenia",
		Comments:   []string{"Świetny pomysł", "Koszty będą ogromne"},
	})

	assert.Contains(t, prompt, "Projekt: Projekt rozporządzenia")
	assert.Contains(t, prompt, "Komentarze (2):")
	assert.Contains(t, prompt, "1. Świetny pomysł")
	assert.Contains(t, prompt, "2. Koszty będą ogromne")
	assert.Contains(t, prompt, `"keyThemes"`)
}
