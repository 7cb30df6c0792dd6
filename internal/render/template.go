package render

import (
	_ "embed"
	"regexp"
	"time"
)

// DateLayout is the issue date format, e.g. "July 08, 2025".
const DateLayout = "January 02, 2006"

// Placeholder names understood by the newsletter shell.
const (
	TokenDate           = "DATE"
	TokenIntro          = "INTRO_PARAGRAPH"
	TokenMarketGrid     = "MARKET_GRID"
	TokenCoreStories    = "CORE_STORIES"
	TokenHorizonStories = "HORIZON_SCAN_STORIES"
	TokenTrivia         = "TRIVIA_SECTION"
)

//go:embed templates/newsletter.html
var Shell string

var placeholderPattern = regexp.MustCompile(`\{[A-Z_]+\}`)

// Trivia is the static brain teaser block.
const Trivia = `
        <div class="trivia-question">Which sector is most sensitive to regulatory changes?</div>
        <div class="trivia-options">
            <div class="trivia-option">A) Technology</div>
            <div class="trivia-option">B) Healthcare</div>
            <div class="trivia-option">C) Financial Services</div>
            <div class="trivia-option">D) Energy</div>
        </div>
        <div class="trivia-answer">
            <strong class="trivia-correct">Answer:</strong> C) Financial Services <br>
            <em>Financial services companies are highly regulated and sensitive to policy changes affecting lending, trading, and compliance requirements.</em>
        </div>
    `

// Fill substitutes every {NAME} token in shell in a single pass. Tokens with
// no value, including unknown names, become empty. Substituted values are
// not scanned again.
func Fill(shell string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(shell, func(token string) string {
		return values[token[1:len(token)-1]]
	})
}

// Fragments returns the placeholder values for an issue dated date.
func (d *Document) Fragments(date time.Time) map[string]string {
	return map[string]string{
		TokenDate:           date.Format(DateLayout),
		TokenIntro:          d.IntroHTML(),
		TokenMarketGrid:     d.MarketGridHTML(),
		TokenCoreStories:    d.CoreStoriesHTML(),
		TokenHorizonStories: d.HorizonStoriesHTML(),
		TokenTrivia:         Trivia,
	}
}

// HTML renders the complete newsletter document for an issue dated date.
func (d *Document) HTML(date time.Time) string {
	return Fill(Shell, d.Fragments(date))
}
