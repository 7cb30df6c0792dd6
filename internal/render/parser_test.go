package render

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormed = `INTRO_PARAGRAPH:
Is Washington about to rewrite the chip playbook again? The Commerce Department
floated fresh export curbs overnight and traders barely blinked.

Meanwhile Brussels and Beijing traded barbs over EV tariffs, and the euro shrugged.

Then came CPI, hotter than hoped, and Jerome Powell suddenly looks less dovish.

MARKET_GRID:
S&P 500|5,612.30|+0.45%
NASDAQ 100|19,870.11|+0.82%
Bitcoin (BTC)|$61,200|-1.20%
Crude Oil (WTI)|$78.10|+0.30%
Gold|$2,410|-0.15%
US 10-Yr Treasury|4.21%|+0.02
Ethereum (ETH)|$3,400|-2.05%
VIX|13.4|0.00%
Dow Jones|39,500.00|+0.12%

CORE_STORIES:
[Generate exactly 4 core stories based on news from TODAY]
The Commerce Department's new export rules land hard, and NVIDIA Corp (NVDA) rallied anyway despite its China revenue line.

Brussels confirmed provisional EV duties, which helps <u>**<u>Tesla Inc (TSLA)</u>**</u> more than anyone admits.

The hot CPI print pushes rate-cut bets out again, squeezing JPMorgan Chase (JPM) deposit margins.

Oil ticked up after OPEC chatter and Exxon Mobil (XOM) quietly benefits from the longer grind.

HORIZON_SCAN_STORIES:
[Generate exactly 3 forward-looking analysis stories.]
A pending FTC rule on subscription cancellations could dent Adobe Inc (ADBE) renewal rates next year.

Medicare drug price talks widen in 2026 and Eli Lilly (LLY) has more exposure than the market prices in.

Stricter bank capital proposals would force Goldman Sachs (GS) to hold more against trading books.

GAME_CHOICE:
Market Cap Showdown
`

func TestParse_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\n \t\n"} {
		_, err := Parse(raw)
		assert.ErrorIs(t, err, ErrNoContent)
	}
}

func renderIssue(t *testing.T, raw string, date time.Time) string {
	t.Helper()
	doc, err := Parse(raw)
	require.NoError(t, err)
	return doc.HTML(date)
}

func TestNewsletter_WellFormed(t *testing.T) {
	date := time.Date(2025, time.July, 8, 7, 0, 0, 0, time.UTC)
	out := renderIssue(t, wellFormed, date)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, 3, doc.Find(".intro p").Length())
	assert.Equal(t, 3, doc.Find("table.market-table tr").Length())
	assert.Equal(t, 9, doc.Find("table.market-table td").Length())
	assert.Equal(t, 4, doc.Find(".core-stories .story").Length())
	assert.Equal(t, 3, doc.Find(".horizon-stories .story").Length())
	assert.Equal(t, 1, doc.Find(".trivia-question").Length())
	assert.Equal(t, "July 08, 2025", strings.TrimSpace(doc.Find(".issue-date").Text()))

	assert.False(t, placeholderPattern.MatchString(out), "leftover placeholder")
	assert.NotContains(t, out, "Generate exactly")
	assert.NotContains(t, out, "Market Cap Showdown")
	assert.NotContains(t, out, "**")

	first := doc.Find(".intro p").First().Text()
	assert.Equal(t, "Is Washington about to rewrite the chip playbook again? The Commerce Department floated fresh export curbs overnight and traders barely blinked.", first)

	assert.Equal(t, "S&P 500", doc.Find(".market-label").First().Text())
	assert.Equal(t, "Dow Jones", doc.Find(".market-label").Last().Text())
}

func TestParse_StoryTickers(t *testing.T) {
	doc, err := Parse(wellFormed)
	require.NoError(t, err)
	require.Len(t, doc.CoreStories, 4)

	require.Len(t, doc.Mentions, 7)
	assert.Equal(t, Mention{Company: "NVIDIA Corp", Ticker: "NVDA"}, doc.Mentions[0])
	assert.Equal(t, "TSLA", doc.Mentions[1].Ticker)
	assert.Equal(t, "GS", doc.Mentions[6].Ticker)

	assert.Equal(t, 1, strings.Count(doc.CoreStories[0], "<u><strong><u>NVIDIA Corp (NVDA)</u></strong></u>"))
	assert.Equal(t, 1, strings.Count(doc.CoreStories[1], "<u><strong><u>Tesla Inc (TSLA)</u></strong></u>"))
}

func TestParse_MarketGridTrends(t *testing.T) {
	doc, err := Parse(wellFormed)
	require.NoError(t, err)
	require.Len(t, doc.Grid, GridCells)

	assert.Equal(t, TrendUp, doc.Grid[0].Trend())
	assert.Equal(t, TrendDown, doc.Grid[2].Trend())
	assert.Equal(t, TrendFlat, doc.Grid[7].Trend())

	html := doc.MarketGridHTML()
	assert.Contains(t, html, `<span class="market-change change-positive">+0.45%</span>`)
	assert.Contains(t, html, `<span class="market-change change-negative">-1.20%</span>`)
	assert.Contains(t, html, `<span class="market-change ">0.00%</span>`)
	assert.Contains(t, html, `<span class="market-label">S&amp;P 500</span>`)
}

func gridInput(lines int) string {
	var sb strings.Builder
	sb.WriteString("MARKET_GRID:\n")
	for i := 0; i < lines; i++ {
		fmt.Fprintf(&sb, "Label %d|%d|+0.%d%%\n", i, i*100, i)
	}
	return sb.String()
}

func TestParse_MarketGridNeedsExactlyNine(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		cells int
	}{
		{"eight", gridInput(8), 0},
		{"nine", gridInput(9), 9},
		{"ten", gridInput(10), 0},
		{"nine plus malformed", gridInput(9) + "Broken|1|2|3\nno pipes here\nHalf|1\n", 9},
		{"eight plus malformed", gridInput(8) + "Broken|1|2|3\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Len(t, doc.Grid, tt.cells)
			if tt.cells == 0 {
				assert.Empty(t, doc.MarketGridHTML())
			} else {
				assert.Equal(t, 3, strings.Count(doc.MarketGridHTML(), "<tr>"))
			}
		})
	}
}

func TestParse_MarketGridSkipsInstructions(t *testing.T) {
	bracketed := "[Index name]|[value]|[+/-X.XX%]\n"

	tests := []struct {
		name  string
		raw   string
		cells int
	}{
		{"template row plus eight", "MARKET_GRID:\n" + bracketed + gridInput(8)[len("MARKET_GRID:\n"):], 0},
		{"template row plus nine", gridInput(9) + bracketed, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Len(t, doc.Grid, tt.cells)

			out := Fill(Shell, doc.Fragments(time.Date(2025, time.July, 8, 0, 0, 0, 0, time.UTC)))
			assert.NotContains(t, out, "[value]")
			assert.NotContains(t, out, "[Index name]")
		})
	}
}

func TestParse_StoryLengthBoundary(t *testing.T) {
	short := strings.Repeat("é", MinStoryLength-1)
	exact := strings.Repeat("é", MinStoryLength)

	doc, err := Parse("CORE_STORIES:\n" + short + "\n\n" + exact + "\n")
	require.NoError(t, err)
	require.Len(t, doc.CoreStories, 1)
	assert.Equal(t, exact, doc.CoreStories[0])

	doc, err = Parse("HORIZON_SCAN_STORIES:\n" + short + "\n")
	require.NoError(t, err)
	assert.Empty(t, doc.HorizonStories)
}

func TestParse_InstructionLinesSplitRuns(t *testing.T) {
	a := "Alpha line that is comfortably longer than fifty characters in total."
	b := "Beta line that is also comfortably longer than fifty characters here."
	raw := "CORE_STORIES:\n" + a + "\n[Include company tickers]\n" + b + "\n"

	doc, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, doc.CoreStories, 2)
	assert.Equal(t, a, doc.CoreStories[0])
	assert.Equal(t, b, doc.CoreStories[1])
}

func TestParse_HeaderEndsRun(t *testing.T) {
	a := "A story that runs straight into the next header without a blank line."
	raw := "CORE_STORIES:\n" + a + "\nHORIZON_SCAN_STORIES:\n" + a + "\nGAME_CHOICE:\nRevenue Race\n"

	doc, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{a}, doc.CoreStories)
	assert.Equal(t, []string{a}, doc.HorizonStories)
}

func TestParse_IgnoresTextOutsideSections(t *testing.T) {
	raw := "Sure! Here is today's newsletter.\n\n  INTRO_PARAGRAPH:  \nOnly paragraph.\n"

	doc, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"Only paragraph."}, doc.Intro)
	assert.Empty(t, doc.CoreStories)
}

func TestParse_IntroEscaped(t *testing.T) {
	doc, err := Parse("INTRO_PARAGRAPH:\n<script>alert(1)</script> **Bold** {DATE}\n")
	require.NoError(t, err)
	require.Len(t, doc.Intro, 1)
	assert.Equal(t, "&lt;script&gt;alert(1)&lt;/script&gt; Bold &#123;DATE&#125;", doc.Intro[0])

	out := Fill(Shell, doc.Fragments(time.Now()))
	assert.False(t, placeholderPattern.MatchString(out))
}

func TestTransition(t *testing.T) {
	next, ok := Transition(SectionIntro, "MARKET_GRID:")
	assert.True(t, ok)
	assert.Equal(t, SectionMarketGrid, next)

	next, ok = Transition(SectionHorizonScan, "GAME_CHOICE:")
	assert.True(t, ok)
	assert.Equal(t, SectionNone, next)

	next, ok = Transition(SectionCoreStories, "core_stories:")
	assert.False(t, ok)
	assert.Equal(t, SectionCoreStories, next)
}
