package render

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrNoContent is returned by Parse when there is nothing to parse.
var ErrNoContent = errors.New("no content to parse")

const (
	// MinStoryLength is the minimum rune length of a kept story.
	MinStoryLength = 50
	// GridCells is the number of market cells needed to render the grid.
	GridCells = 9
	gridColumns = 3
)

// Trend is the direction of a market change.
type Trend int

const (
	TrendFlat Trend = iota
	TrendUp
	TrendDown
)

// CSSClass returns the change class used by the newsletter stylesheet.
func (t Trend) CSSClass() string {
	switch t {
	case TrendUp:
		return "change-positive"
	case TrendDown:
		return "change-negative"
	default:
		return ""
	}
}

// MarketCell is one label/value/change line of the market grid.
type MarketCell struct {
	Label  string
	Value  string
	Change string
}

// Trend classifies the change by its leading sign.
func (c MarketCell) Trend() Trend {
	switch {
	case strings.HasPrefix(c.Change, "+"):
		return TrendUp
	case strings.HasPrefix(c.Change, "-"):
		return TrendDown
	default:
		return TrendFlat
	}
}

// Document is the structured result of parsing generated newsletter text.
// Text fields are already escaped HTML.
type Document struct {
	Intro          []string
	Grid           []MarketCell
	CoreStories    []string
	HorizonStories []string
	// Mentions lists the company mentions in kept stories, in order.
	Mentions []Mention
}

// isInstruction reports whether a trimmed line is a bracketed instruction
// placeholder echoed from the prompt.
func isInstruction(line string) bool {
	return strings.HasPrefix(line, "[")
}

// keepStory reports whether a joined story candidate is long enough.
func keepStory(text string) bool {
	return utf8.RuneCountInString(text) >= MinStoryLength
}

// parseGridLine splits "label|value|change". Lines with any other number of
// fields are rejected.
func parseGridLine(line string) (MarketCell, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != 3 {
		return MarketCell{}, false
	}
	return MarketCell{
		Label:  strings.TrimSpace(parts[0]),
		Value:  strings.TrimSpace(parts[1]),
		Change: strings.TrimSpace(parts[2]),
	}, true
}

type parser struct {
	section Section
	run     []string
	cells   []MarketCell
	doc     Document
}

// flush closes the current run of consecutive non-blank lines.
func (p *parser) flush() {
	if len(p.run) == 0 {
		return
	}
	text := strings.Join(p.run, " ")
	p.run = p.run[:0]

	switch p.section {
	case SectionIntro:
		p.doc.Intro = append(p.doc.Intro, escapeText(Normalize(text)))
	case SectionCoreStories:
		if keepStory(text) {
			p.doc.CoreStories = append(p.doc.CoreStories, FormatTickers(text))
			p.doc.Mentions = append(p.doc.Mentions, FindMentions(text)...)
		}
	case SectionHorizonScan:
		if keepStory(text) {
			p.doc.HorizonStories = append(p.doc.HorizonStories, FormatTickers(text))
			p.doc.Mentions = append(p.doc.Mentions, FindMentions(text)...)
		}
	}
}

func (p *parser) line(line string) {
	if next, ok := Transition(p.section, line); ok {
		p.flush()
		p.section = next
		return
	}

	switch p.section {
	case SectionIntro, SectionCoreStories, SectionHorizonScan:
		if line == "" || isInstruction(line) {
			p.flush()
			return
		}
		p.run = append(p.run, line)
	case SectionMarketGrid:
		if isInstruction(line) {
			return
		}
		if cell, ok := parseGridLine(line); ok {
			p.cells = append(p.cells, cell)
		}
	}
}

// Parse turns section-delimited generator output into a Document. Lines are
// trimmed and processed in order; text outside a recognized section is
// ignored. The market grid is kept only when exactly nine valid lines were
// seen.
func Parse(raw string) (*Document, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoContent
	}

	p := &parser{}
	for _, line := range strings.Split(raw, "\n") {
		p.line(strings.TrimSpace(line))
	}
	p.flush()

	if len(p.cells) == GridCells {
		p.doc.Grid = p.cells
	}
	return &p.doc, nil
}

// IntroHTML renders the intro paragraphs.
func (d *Document) IntroHTML() string {
	var sb strings.Builder
	for _, para := range d.Intro {
		fmt.Fprintf(&sb, "        <p>%s</p>\n", para)
	}
	return sb.String()
}

// MarketGridHTML renders the grid as three rows of three cells, or "" when
// the grid is incomplete.
func (d *Document) MarketGridHTML() string {
	if len(d.Grid) != GridCells {
		return ""
	}
	rows := make([]string, 0, GridCells/gridColumns)
	for i := 0; i < GridCells; i += gridColumns {
		var sb strings.Builder
		sb.WriteString("<tr>")
		for _, cell := range d.Grid[i : i+gridColumns] {
			fmt.Fprintf(&sb, `
                <td>
                    <span class="market-label">%s</span>
                    <span class="market-value">%s</span>
                    <span class="market-change %s">%s</span>
                </td>`,
				escapeText(cell.Label), escapeText(cell.Value), cell.Trend().CSSClass(), escapeText(cell.Change))
		}
		sb.WriteString("</tr>")
		rows = append(rows, sb.String())
	}
	return strings.Join(rows, "\n            ")
}

// CoreStoriesHTML renders the core stories.
func (d *Document) CoreStoriesHTML() string {
	return storiesHTML(d.CoreStories)
}

// HorizonStoriesHTML renders the horizon scan stories.
func (d *Document) HorizonStoriesHTML() string {
	return storiesHTML(d.HorizonStories)
}

func storiesHTML(stories []string) string {
	var sb strings.Builder
	for _, story := range stories {
		fmt.Fprintf(&sb, "\n        <div class=\"story\">\n            <p>%s</p>\n        </div>", story)
	}
	return sb.String()
}
