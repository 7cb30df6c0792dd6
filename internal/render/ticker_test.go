package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const nvdaWrapped = "<u><strong><u>NVIDIA Corp (NVDA)</u></strong></u>"

func TestFormatTickers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain mention",
			in:   "NVIDIA Corp (NVDA) rallied",
			want: nvdaWrapped + " rallied",
		},
		{
			name: "already wrapped in prompt format",
			in:   "<u>**<u>NVIDIA Corp (NVDA)</u>**</u> rallied",
			want: nvdaWrapped + " rallied",
		},
		{
			name: "already formatted",
			in:   nvdaWrapped + " rallied",
			want: nvdaWrapped + " rallied",
		},
		{
			name: "whitespace before ticker collapsed",
			in:   "NVIDIA Corp   (NVDA) rallied",
			want: nvdaWrapped + " rallied",
		},
		{
			name: "ampersand escaped inside wrapper",
			in:   "Rates bite, so AT&T Inc (T) slips",
			want: "Rates bite, so <u><strong><u>AT&amp;T Inc (T)</u></strong></u> slips",
		},
		{
			name: "lowercase ticker ignored",
			in:   "Apple (aapl) is not a ticker",
			want: "Apple (aapl) is not a ticker",
		},
		{
			name: "six letter ticker ignored",
			in:   "Foo (ABCDEF) is too long",
			want: "Foo (ABCDEF) is too long",
		},
		{
			name: "markup outside mentions escaped",
			in:   "<b>bold</b> claims",
			want: "&lt;b&gt;bold&lt;/b&gt; claims",
		},
		{
			name: "stray emphasis removed",
			in:   "**Big** day",
			want: "Big day",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTickers(tt.in))
		})
	}
}

func TestFormatTickers_SingleWrapPerMention(t *testing.T) {
	out := FormatTickers("NVIDIA Corp (NVDA) rallied")
	assert.Equal(t, 1, strings.Count(out, nvdaWrapped))
	assert.Equal(t, 2, strings.Count(out, "<u>"))
	assert.Equal(t, 1, strings.Count(out, "<strong>"))
}

func TestFormatTickers_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"no mentions at all",
		"NVIDIA Corp (NVDA) rallied",
		"<u>**<u>Apple Inc. (AAPL)</u>**</u> and, later, Microsoft (MSFT)",
		"Tom's Diner-Corp (TDC) and A & B Holdings (AB)",
		"Multi  spaced   Corp   (MSC) tabs\tToo (TT)",
		"*<u>*",
		"&lt;u&gt;Acme (ACM)&lt;/u&gt;",
		"&amp;amp; layered entities",
		"Story with {DATE} and {CORE_STORIES}",
		"<strong>Bold Co (BC)</strong>",
		"Ford Motor (F) rose 5% as Exxon Mobil (XOM) and Chevron (CVX) lagged.",
		"unicode Société Générale (GLE) and Nestlé (NESN)",
		"((X)) (Y) Z(Z)",
		"<u><strong><u>Broken (BRK)</u></u>",
	}

	for _, in := range inputs {
		once := FormatTickers(in)
		assert.Equal(t, once, FormatTickers(once), "input %q", in)
	}
}

func TestFindMentions(t *testing.T) {
	got := FindMentions("Yesterday, Apple (AAPL) and Microsoft (MSFT) diverged")
	assert.Equal(t, []Mention{
		{Company: "Apple", Ticker: "AAPL"},
		{Company: "Microsoft", Ticker: "MSFT"},
	}, got)

	assert.Empty(t, FindMentions("nothing to see"))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "Big day", Normalize("**Big** day"))
	assert.Equal(t, "", Normalize("*<u>*"))
	assert.Equal(t, "a < b", Normalize("a &lt; b"))
	assert.Equal(t, "X (X)", Normalize("<u><strong><u>X (X)</u></strong></u>"))
}
