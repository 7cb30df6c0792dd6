package search

import (
	"context"
	"errors"

	"github.com/camuig/alphaminr/internal/logger"
)

// Response is the degraded-or-complete outcome of a group of queries. Err
// is informational: Results holds whatever the successful queries returned
// and callers keep going either way.
type Response struct {
	Results []Result
	Err     error
}

func (r Response) Degraded() bool {
	return r.Err != nil
}

// Category is a family of news queries that feeds one block of the
// provided-data section of the prompt.
type Category struct {
	Key     string
	Heading string
	Queries []string
}

var (
	GovernmentPolicies = Category{
		Key:     "government_policies",
		Heading: "GOVERNMENT POLICIES",
		Queries: []string{
			"government policy announcement today",
			"regulatory changes today",
			"federal policy update today",
			"congressional legislation today",
			"executive order today",
		},
	}
	EconomicData = Category{
		Key:     "economic_data",
		Heading: "ECONOMIC DATA RELEASES",
		Queries: []string{
			"economic data release today",
			"GDP inflation unemployment today",
			"federal reserve economic data today",
			"consumer price index today",
			"employment data today",
		},
	}
	CentralBankStatements = Category{
		Key:     "central_bank_statements",
		Heading: "CENTRAL BANK STATEMENTS",
		Queries: []string{
			"federal reserve statement today",
			"central bank announcement today",
			"fed meeting minutes today",
			"interest rate decision today",
			"monetary policy today",
		},
	}
	GeopoliticalDevelopments = Category{
		Key:     "geopolitical_developments",
		Heading: "GEOPOLITICAL DEVELOPMENTS",
		Queries: []string{
			"geopolitical developments today",
			"international trade policy today",
			"diplomatic relations today",
			"global economic policy today",
			"international sanctions today",
		},
	}
)

// Categories lists the news categories in prompt order.
var Categories = []Category{
	GovernmentPolicies,
	EconomicData,
	CentralBankStatements,
	GeopoliticalDevelopments,
}

func CategoryByKey(key string) (Category, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// QueryCount is the number of news searches one CollectAll issues.
func QueryCount() int {
	n := 0
	for _, c := range Categories {
		n += len(c.Queries)
	}
	return n
}

// Collect runs every query of the category against the news endpoint.
// A failed query is logged and contributes nothing.
func (c Category) Collect(ctx context.Context, s Searcher, log *logger.Logger) Response {
	var (
		results []Result
		errs    []error
	)
	for _, q := range c.Queries {
		items, err := s.NewsSearch(ctx, q)
		if err != nil {
			log.Error("news search failed", "category", c.Key, "query", q, "error", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, items...)
	}
	return Response{Results: results, Err: errors.Join(errs...)}
}

// CategoryResults pairs a category with what its queries returned.
type CategoryResults struct {
	Category Category
	Results  []Result
	Err      error
}

// CollectAll runs every category in prompt order.
func CollectAll(ctx context.Context, s Searcher, log *logger.Logger) []CategoryResults {
	out := make([]CategoryResults, 0, len(Categories))
	for _, c := range Categories {
		resp := c.Collect(ctx, s, log)
		log.Info("news category collected", "category", c.Key, "results", len(resp.Results), "degraded", resp.Degraded())
		out = append(out, CategoryResults{Category: c, Results: resp.Results, Err: resp.Err})
	}
	return out
}
