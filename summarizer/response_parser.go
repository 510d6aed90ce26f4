package summarizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"legispuls/models"
)

// FallbackHumanSummary is returned when the model dropped the section
// markers. The request still succeeds as long as the JSON block is intact.
const FallbackHumanSummary = "Nie udało się wygenerować streszczenia."

// ErrMissingStructuredData means the raw model output contains no JSON
// object. Without the structured half the stored record would be
// incomplete, so this is a hard failure.
var ErrMissingStructuredData = errors.New("brak JSON w odpowiedzi AI")

// SchemaError reports the first field of the decoded JSON that violates the
// expected analysis shape.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("analysis schema violation: field %q %s", e.Field, e.Reason)
}

// SummaryParseResult is the outcome of parsing one raw model response.
// Degraded marks the lenient path where the human summary fell back to the
// canned string; callers can distinguish it from a fully extracted result.
type SummaryParseResult struct {
	HumanSummary string
	Analysis     models.AnalysisResult
	Degraded     bool
}

// ParseSummaryResponse splits raw model text into the prose summary and the
// structured analysis. The model is prompted to emit fixed section markers,
// but it may wrap them in extra commentary; the parser tolerates any
// prefix/suffix around the sections it needs.
func ParseSummaryResponse(raw string) (*SummaryParseResult, error) {
	result := &SummaryParseResult{}

	result.HumanSummary, result.Degraded = extractHumanSummary(raw)

	// When the analysis marker survived, only the text after it can hold
	// the JSON block; prose before the marker is never a candidate.
	region := raw
	if idx := strings.Index(raw, analysisMarkerPrefix); idx >= 0 {
		region = raw[idx:]
	}

	jsonBlock, ok := extractJSONBlock(region)
	if !ok {
		return nil, ErrMissingStructuredData
	}

	analysis, err := decodeAnalysis(jsonBlock)
	if err != nil {
		return nil, err
	}
	result.Analysis = *analysis

	return result, nil
}

// analysisMarkerPrefix is the analysis marker without the "(JSON)" suffix;
// models occasionally drop it.
const analysisMarkerPrefix = "### Szczegółowa analiza"

func extractHumanSummary(raw string) (summary string, degraded bool) {
	start := strings.Index(raw, HumanSummaryMarker)
	if start < 0 {
		return FallbackHumanSummary, true
	}
	rest := raw[start+len(HumanSummaryMarker):]

	end := strings.Index(rest, analysisMarkerPrefix)
	if end < 0 {
		return FallbackHumanSummary, true
	}
	return strings.TrimSpace(rest[:end]), false
}

// extractJSONBlock scans for the first balanced brace-delimited block that
// is syntactically valid JSON. Brace characters inside JSON string literals
// are ignored, and balanced prose groups like "ust. 2 pkt {3}" are skipped
// because they do not parse as JSON.
func extractJSONBlock(raw string) (string, bool) {
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			continue
		}
		end, ok := scanBalanced(raw, i)
		if !ok {
			continue
		}
		candidate := raw[i : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// scanBalanced returns the index of the brace closing the object opened at
// start, honoring string literals and escape sequences.
func scanBalanced(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

var validComplexities = map[string]bool{"low": true, "medium": true, "high": true}

// decodeAnalysis decodes the extracted JSON and validates it field by
// field. The model output is untrusted: a block that parses as JSON can
// still omit fields or use wrong types, and letting that through would
// surface as display glitches far from the cause.
func decodeAnalysis(jsonBlock string) (*models.AnalysisResult, error) {
	var a models.AnalysisResult
	if err := json.Unmarshal([]byte(jsonBlock), &a); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &SchemaError{Field: typeErr.Field, Reason: fmt.Sprintf("has type %s, want %s", typeErr.Value, typeErr.Type)}
		}
		return nil, fmt.Errorf("%w: %v", ErrMissingStructuredData, err)
	}

	if len(a.MainPoints) == 0 {
		return nil, &SchemaError{Field: "mainPoints", Reason: "is missing or empty"}
	}
	if a.Impact == "" {
		return nil, &SchemaError{Field: "impact", Reason: "is missing"}
	}
	if !validComplexities[a.Complexity] {
		return nil, &SchemaError{Field: "complexity", Reason: fmt.Sprintf("has value %q, want low/medium/high", a.Complexity)}
	}
	if a.Recommendation == "" {
		return nil, &SchemaError{Field: "recommendation", Reason: "is missing"}
	}
	if a.Confidence < 0 || a.Confidence > 100 {
		return nil, &SchemaError{Field: "confidence", Reason: fmt.Sprintf("is %v, want 0-100", a.Confidence)}
	}

	// Optional list fields are normalized so stored documents never carry
	// null arrays.
	if a.Stakeholders == nil {
		a.Stakeholders = []string{}
	}
	if a.Risks == nil {
		a.Risks = []string{}
	}
	if a.Opportunities == nil {
		a.Opportunities = []string{}
	}

	return &a, nil
}

var validSentiments = map[string]bool{"positive": true, "negative": true, "neutral": true}

// ParseCommentsResponse extracts and validates the comment-analysis JSON.
// There is no prose section in this pipeline; the whole payload is the
// structured block.
func ParseCommentsResponse(raw string) (*models.CommentsAnalysisResult, error) {
	jsonBlock, ok := extractJSONBlock(raw)
	if !ok {
		return nil, ErrMissingStructuredData
	}

	var a models.CommentsAnalysisResult
	if err := json.Unmarshal([]byte(jsonBlock), &a); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, &SchemaError{Field: typeErr.Field, Reason: fmt.Sprintf("has type %s, want %s", typeErr.Value, typeErr.Type)}
		}
		return nil, fmt.Errorf("%w: %v", ErrMissingStructuredData, err)
	}

	if !validSentiments[a.Sentiment.Overall] {
		return nil, &SchemaError{Field: "sentiment.overall", Reason: fmt.Sprintf("has value %q, want positive/negative/neutral", a.Sentiment.Overall)}
	}
	if a.Summary == "" {
		return nil, &SchemaError{Field: "summary", Reason: "is missing"}
	}
	if a.KeyThemes == nil {
		a.KeyThemes = []models.KeyTheme{}
	}
	if a.Insights == nil {
		a.Insights = []models.Insight{}
	}

	return &a, nil
}
