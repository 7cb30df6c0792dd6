package market

import (
	"context"
	"errors"
	"strings"

	"github.com/camuig/alphaminr/internal/logger"
	"github.com/camuig/alphaminr/internal/search"
)

// Unavailable is the sentinel for a value or change that was not extracted.
const Unavailable = "N/A"

// Quote is one cell of the market snapshot. Seen reports whether any search
// snippet mentioned the instrument; Value and Change stay Unavailable either
// way because numbers are never scraped out of snippet text.
type Quote struct {
	Label  string
	Value  string
	Change string
	Seen   bool
}

// Instrument is a fixed market label plus the keyword groups that tag a
// snippet as mentioning it. A snippet matches when it contains any of
// AnyOf, or every one of AllOf.
type Instrument struct {
	Label string
	AnyOf []string
	AllOf []string
}

func (i Instrument) Matches(text string) bool {
	for _, kw := range i.AnyOf {
		if strings.Contains(text, kw) {
			return true
		}
	}
	if len(i.AllOf) == 0 {
		return false
	}
	for _, kw := range i.AllOf {
		if !strings.Contains(text, kw) {
			return false
		}
	}
	return true
}

// Instruments is the fixed set in prompt order.
var Instruments = []Instrument{
	{Label: "S&P 500", AnyOf: []string{"s&p 500", "spx"}},
	{Label: "NASDAQ 100", AllOf: []string{"nasdaq", "100"}},
	{Label: "Bitcoin (BTC)", AnyOf: []string{"bitcoin", "btc"}},
	{Label: "Crude Oil (WTI)", AnyOf: []string{"oil", "crude", "wti"}},
	{Label: "Gold", AnyOf: []string{"gold"}},
	{Label: "US 10-Yr Treasury", AnyOf: []string{"treasury", "10-year", "bond"}},
	{Label: "Ethereum (ETH)", AnyOf: []string{"ethereum", "eth"}},
	{Label: "VIX", AnyOf: []string{"vix", "volatility"}},
	{Label: "Dow Jones", AnyOf: []string{"dow jones", "dow"}},
}

// Snapshot maps every instrument label to its quote. Err carries the
// search failure, if any, that left the snapshot degraded.
type Snapshot struct {
	Quotes map[string]Quote
	Err    error
}

// NewSnapshot returns a snapshot with every instrument present and
// unavailable.
func NewSnapshot() Snapshot {
	quotes := make(map[string]Quote, len(Instruments))
	for _, inst := range Instruments {
		quotes[inst.Label] = Quote{Label: inst.Label, Value: Unavailable, Change: Unavailable}
	}
	return Snapshot{Quotes: quotes}
}

// Ordered returns the quotes in prompt order.
func (s Snapshot) Ordered() []Quote {
	out := make([]Quote, 0, len(Instruments))
	for _, inst := range Instruments {
		q, ok := s.Quotes[inst.Label]
		if !ok {
			q = Quote{Label: inst.Label, Value: Unavailable, Change: Unavailable}
		}
		out = append(out, q)
	}
	return out
}

func (s Snapshot) SeenCount() int {
	n := 0
	for _, q := range s.Quotes {
		if q.Seen {
			n++
		}
	}
	return n
}

// Tag marks each instrument mentioned in the title or description of any
// result. The first matching result wins per instrument.
func (s Snapshot) Tag(results []search.Result) {
	for _, r := range results {
		text := strings.ToLower(r.Title + " " + r.Description)
		for _, inst := range Instruments {
			q := s.Quotes[inst.Label]
			if q.Seen || !inst.Matches(text) {
				continue
			}
			q.Seen = true
			s.Quotes[inst.Label] = q
		}
	}
}

var queries = []string{
	"S&P 500 NASDAQ Dow Jones current price today",
	"gold oil Bitcoin Ethereum VIX treasury yield current price today",
}

// QueryCount is the number of web searches one Collect issues.
func QueryCount() int {
	return len(queries)
}

// Collector builds market snapshots from broad web searches.
type Collector struct {
	searcher search.Searcher
	logger   *logger.Logger
}

func NewCollector(s search.Searcher, log *logger.Logger) *Collector {
	return &Collector{searcher: s, logger: log}
}

// Collect never fails: search errors leave the snapshot all-sentinel for the
// affected query and are reported through Snapshot.Err.
func (c *Collector) Collect(ctx context.Context) Snapshot {
	snap := NewSnapshot()

	var errs []error
	for _, q := range queries {
		results, err := c.searcher.WebSearch(ctx, q)
		if err != nil {
			c.logger.Error("market data search failed", "query", q, "error", err)
			errs = append(errs, err)
			continue
		}
		snap.Tag(results)
	}
	snap.Err = errors.Join(errs...)

	for _, q := range snap.Ordered() {
		if q.Seen {
			c.logger.Debug("market instrument mentioned", "label", q.Label)
		}
	}
	c.logger.Info("market snapshot collected", "seen", snap.SeenCount(), "instruments", len(Instruments))

	return snap
}
