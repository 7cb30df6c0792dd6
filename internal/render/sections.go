package render

// Section is the parser's current-section pointer.
type Section int

const (
	SectionNone Section = iota
	SectionIntro
	SectionMarketGrid
	SectionCoreStories
	SectionHorizonScan
)

// Header lines, matched exactly after trimming surrounding whitespace.
const (
	HeaderIntro       = "INTRO_PARAGRAPH:"
	HeaderMarketGrid  = "MARKET_GRID:"
	HeaderCoreStories = "CORE_STORIES:"
	HeaderHorizonScan = "HORIZON_SCAN_STORIES:"
	HeaderGameChoice  = "GAME_CHOICE:"
)

var headers = map[string]Section{
	HeaderIntro:       SectionIntro,
	HeaderMarketGrid:  SectionMarketGrid,
	HeaderCoreStories: SectionCoreStories,
	HeaderHorizonScan: SectionHorizonScan,
	// The game choice payload is not rendered; its header only closes the
	// horizon scan.
	HeaderGameChoice: SectionNone,
}

// Transition reports the section a trimmed line switches to, and whether the
// line is a header at all. Non-header lines leave the current section as is.
func Transition(current Section, line string) (Section, bool) {
	if next, ok := headers[line]; ok {
		return next, true
	}
	return current, false
}
