package report

import (
	"sort"

	"BlanketWatch/internal/model"
)

// Category is one named sub-report of a division workbook.
type Category struct {
	Name      model.WatchCategory
	Contracts []model.EvaluatedContract
}

// DivisionReport holds the non-empty watch categories of one division.
type DivisionReport struct {
	Division   string
	Categories []Category
}

// Matches reports whether ec belongs in the given watch category.
func Matches(cat model.WatchCategory, ec model.EvaluatedContract) bool {
	switch cat {
	case model.CategoryHighBurn:
		return ec.Indicators.BurnStatus == model.BurnHigh
	case model.CategoryExpire90d:
		return ec.Indicators.MonthsLeft <= 3
	case model.CategoryExpire180d:
		return ec.Indicators.MonthsLeft <= 6
	default:
		return false
	}
}

// Partition groups contracts by division, preserving input order inside each group.
func Partition(evaluated []model.EvaluatedContract) map[string][]model.EvaluatedContract {
	groups := make(map[string][]model.EvaluatedContract)
	for _, ec := range evaluated {
		groups[ec.Division] = append(groups[ec.Division], ec)
	}
	return groups
}

// GroupByDivision builds one report per division that has at least one contract in a
// watch category. Reports are sorted by division name; empty categories are dropped.
func GroupByDivision(evaluated []model.EvaluatedContract) []DivisionReport {
	groups := Partition(evaluated)

	divisions := make([]string, 0, len(groups))
	for div := range groups {
		divisions = append(divisions, div)
	}
	sort.Strings(divisions)

	var reports []DivisionReport
	for _, div := range divisions {
		r := DivisionReport{Division: div}
		for _, cat := range model.WatchCategories {
			var matched []model.EvaluatedContract
			for _, ec := range groups[div] {
				if Matches(cat, ec) {
					matched = append(matched, ec)
				}
			}
			if len(matched) > 0 {
				r.Categories = append(r.Categories, Category{Name: cat, Contracts: matched})
			}
		}
		if len(r.Categories) > 0 {
			reports = append(reports, r)
		}
	}
	return reports
}
