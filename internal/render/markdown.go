package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// Markdown converts a rendered newsletter into markdown, dropping the
// stylesheet and document head.
func Markdown(htmlContent string) (string, error) {
	if strings.TrimSpace(htmlContent) == "" {
		return "", ErrNoContent
	}

	conv := md.NewConverter("", true, nil)
	conv.Remove("head", "style", "title")

	out, err := conv.ConvertString(htmlContent)
	if err != nil {
		return "", fmt.Errorf("convert newsletter to markdown: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Excerpt returns at most limit runes of text, cut at a word boundary when
// possible and marked with an ellipsis when shortened.
func Excerpt(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}

	runes := []rune(text)[:limit]
	for i := len(runes) - 1; i > limit/2; i-- {
		if runes[i] == ' ' || runes[i] == '\n' {
			runes = runes[:i]
			break
		}
	}
	return strings.TrimSpace(string(runes)) + "…"
}
