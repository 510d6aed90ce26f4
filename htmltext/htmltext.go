package htmltext

import (
	"errors"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// ErrNoText is returned when neither extractor found readable content.
var ErrNoText = errors.New("no readable text in document")

// ExtractText turns an HTML document (an act text page from the ELI API,
// or a consultation page) into plain text for prompting. Readability is
// the primary extractor; trafilatura is the fallback for layouts
// readability gives up on.
func ExtractText(htmlStr string) (string, error) {
	text, err := extractWithReadability(htmlStr)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	text, err = extractWithTrafilatura(htmlStr)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

func extractWithReadability(htmlStr string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return "", err
	}

	article, err := readability.FromDocument(doc, nil)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

func extractWithTrafilatura(htmlStr string) (string, error) {
	article, err := trafilatura.Extract(strings.NewReader(htmlStr), trafilatura.Options{})
	if err != nil {
		return "", err
	}
	return article.ContentText, nil
}
