package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"evdash/backend/services/dashboard-service/internal/models"
)

// ErrUnknownColumn is returned for a column name that is not numeric.
var ErrUnknownColumn = errors.New("unknown column")

// Column names a numeric catalog column.
type Column string

const (
	ColumnTraffic    Column = "traffic"
	ColumnChargers   Column = "chargers"
	ColumnInvestment Column = "investment"
	ColumnROI        Column = "roi"
)

// ParseColumn resolves a column from its name.
func ParseColumn(s string) (Column, error) {
	c := Column(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case ColumnTraffic, ColumnChargers, ColumnInvestment, ColumnROI:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColumn, s)
}

func (c Column) value(l models.Location) (float64, error) {
	switch c {
	case ColumnTraffic:
		return float64(l.DailyTraffic), nil
	case ColumnChargers:
		return float64(l.RecommendedChargers), nil
	case ColumnInvestment:
		return l.Investment.InexactFloat64(), nil
	case ColumnROI:
		return float64(l.ROIMonths), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColumn, string(c))
}

// Filter returns the locations whose priority is in the given set, in
// catalog order. An empty set selects nothing.
func (c *Catalog) Filter(priorities ...models.Priority) []models.Location {
	want := make(map[models.Priority]struct{}, len(priorities))
	for _, p := range priorities {
		want[p] = struct{}{}
	}
	out := make([]models.Location, 0, len(c.locations))
	for _, l := range c.locations {
		if _, ok := want[l.Priority]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Sum adds up a column over the whole catalog.
func (c *Catalog) Sum(col Column) (float64, error) {
	var total float64
	for _, l := range c.locations {
		v, err := col.value(l)
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}

// Mean averages a column over the whole catalog.
func (c *Catalog) Mean(col Column) (float64, error) {
	total, err := c.Sum(col)
	if err != nil {
		return 0, err
	}
	if len(c.locations) == 0 {
		return 0, nil
	}
	return total / float64(len(c.locations)), nil
}

// Top returns the n locations with the largest values of col. Ties keep
// catalog order.
func (c *Catalog) Top(col Column, n int) ([]models.Location, error) {
	return c.rank(col, n, true)
}

// Bottom returns the n locations with the smallest values of col. Ties keep
// catalog order.
func (c *Catalog) Bottom(col Column, n int) ([]models.Location, error) {
	return c.rank(col, n, false)
}

func (c *Catalog) rank(col Column, n int, desc bool) ([]models.Location, error) {
	type row struct {
		loc   models.Location
		value float64
	}
	rows := make([]row, 0, len(c.locations))
	for _, l := range c.locations {
		v, err := col.value(l)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row{loc: l, value: v})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return rows[i].value > rows[j].value
		}
		return rows[i].value < rows[j].value
	})

	if n < 0 {
		n = 0
	}
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]models.Location, n)
	for i := 0; i < n; i++ {
		out[i] = rows[i].loc
	}
	return out, nil
}

// PriorityGroup aggregates the locations sharing a priority.
type PriorityGroup struct {
	Priority        models.Priority `json:"priority"`
	TotalInvestment decimal.Decimal `json:"total_investment_lakhs"`
	TotalChargers   int             `json:"total_chargers"`
	Locations       int             `json:"locations"`
}

// GroupByPriority partitions the catalog by priority, most important first.
// Priorities without any location are omitted.
func (c *Catalog) GroupByPriority() []PriorityGroup {
	groups := make(map[models.Priority]*PriorityGroup, len(models.Priorities))
	for _, l := range c.locations {
		g, ok := groups[l.Priority]
		if !ok {
			g = &PriorityGroup{Priority: l.Priority, TotalInvestment: decimal.Zero}
			groups[l.Priority] = g
		}
		g.TotalInvestment = g.TotalInvestment.Add(l.Investment)
		g.TotalChargers += l.RecommendedChargers
		g.Locations++
	}

	out := make([]PriorityGroup, 0, len(groups))
	for _, p := range models.Priorities {
		if g, ok := groups[p]; ok {
			out = append(out, *g)
		}
	}
	return out
}

// Count is a label with the number of locations carrying it.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PriorityCounts counts locations per priority, largest first.
func (c *Catalog) PriorityCounts() []Count {
	return countBy(c.locations, func(l models.Location) string { return l.Priority.String() })
}

// AreaTypeCounts counts locations per area type, largest first.
func (c *Catalog) AreaTypeCounts() []Count {
	return countBy(c.locations, func(l models.Location) string { return l.AreaType })
}

// countBy orders by count descending, then by first appearance.
func countBy(locations []models.Location, key func(models.Location) string) []Count {
	index := make(map[string]int)
	var out []Count
	for _, l := range locations {
		k := key(l)
		if i, ok := index[k]; ok {
			out[i].Count++
			continue
		}
		index[k] = len(out)
		out = append(out, Count{Label: k, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Summary holds the headline figures of the analysis tabs.
type Summary struct {
	Locations       int             `json:"locations"`
	TotalChargers   int             `json:"total_chargers"`
	AvgDailyTraffic float64         `json:"avg_daily_traffic"`
	TotalInvestment decimal.Decimal `json:"total_investment_lakhs"`
	AvgInvestment   decimal.Decimal `json:"avg_investment_lakhs"`
	AvgROIMonths    float64         `json:"avg_roi_months"`
	BestROILocation string          `json:"best_roi_location"`
	BestROIMonths   int             `json:"best_roi_months"`
}

// Summary computes the catalog-wide figures. The best ROI location is the
// first one with the smallest ROI.
func (c *Catalog) Summary() Summary {
	s := Summary{
		Locations:       len(c.locations),
		TotalInvestment: decimal.Zero,
		AvgInvestment:   decimal.Zero,
	}
	if len(c.locations) == 0 {
		return s
	}

	var traffic, roi int
	best := c.locations[0]
	for _, l := range c.locations {
		s.TotalChargers += l.RecommendedChargers
		s.TotalInvestment = s.TotalInvestment.Add(l.Investment)
		traffic += l.DailyTraffic
		roi += l.ROIMonths
		if l.ROIMonths < best.ROIMonths {
			best = l
		}
	}

	n := len(c.locations)
	s.AvgDailyTraffic = float64(traffic) / float64(n)
	s.AvgInvestment = s.TotalInvestment.Div(decimal.NewFromInt(int64(n))).Round(2)
	s.AvgROIMonths = float64(roi) / float64(n)
	s.BestROILocation = best.DisplayName()
	s.BestROIMonths = best.ROIMonths
	return s
}
