package profiling

import (
	"sort"
	"strconv"
	"strings"

	"mlproject/domain/dataset"
)

// Column kinds
const (
	KindNumeric     = "numeric"
	KindCategorical = "categorical"
)

// ColumnProfile summarises one column of a source table
type ColumnProfile struct {
	Name     string          `json:"name"`
	Kind     string          `json:"kind"`
	Count    int             `json:"count"`
	Missing  int             `json:"missing"`
	Distinct int             `json:"distinct"`
	Top      string          `json:"top,omitempty"`
	Summary  *NumericSummary `json:"summary,omitempty"`
}

// MissingRate is the share of missing cells in the column
func (c ColumnProfile) MissingRate() float64 {
	total := c.Count + c.Missing
	if total == 0 {
		return 0
	}
	return float64(c.Missing) / float64(total)
}

// TableProfile is the per-column profile of a table, in column order
type TableProfile struct {
	Rows    int             `json:"rows"`
	Columns []ColumnProfile `json:"columns"`
}

// MissingCells returns the total number of missing cells
func (p *TableProfile) MissingCells() int {
	n := 0
	for _, c := range p.Columns {
		n += c.Missing
	}
	return n
}

// Column returns the profile of the named column
func (p *TableProfile) Column(name string) (ColumnProfile, bool) {
	for _, c := range p.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnProfile{}, false
}

// DataProfiler profiles tables column by column
type DataProfiler struct {
	analyzer *DistributionAnalyzer
}

// NewDataProfiler creates a new data profiler
func NewDataProfiler() *DataProfiler {
	return &DataProfiler{analyzer: NewDistributionAnalyzer()}
}

// ProfileTable analyzes all columns of t. A column is numeric when every
// non-missing cell parses as a float; the profile never fails on content.
func (dp *DataProfiler) ProfileTable(t *dataset.Table) *TableProfile {
	profile := &TableProfile{Rows: t.Len()}
	for j, name := range t.Columns {
		cells := make([]string, len(t.Rows))
		for i, row := range t.Rows {
			cells[i] = row[j]
		}
		profile.Columns = append(profile.Columns, dp.ProfileColumn(name, cells))
	}
	return profile
}

// ProfileColumn performs the analysis of a single column
func (dp *DataProfiler) ProfileColumn(name string, cells []string) ColumnProfile {
	col := ColumnProfile{Name: name, Kind: KindNumeric}

	counts := make(map[string]int)
	var values []float64
	for _, cell := range cells {
		if dataset.IsMissing(cell) {
			col.Missing++
			continue
		}
		col.Count++
		counts[cell]++
		if col.Kind != KindNumeric {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			col.Kind = KindCategorical
			continue
		}
		values = append(values, v)
	}
	col.Distinct = len(counts)

	if col.Count == 0 {
		col.Kind = KindCategorical
		return col
	}
	if col.Kind == KindCategorical {
		col.Top = mostFrequent(counts)
		return col
	}

	summary, err := dp.analyzer.Summarize(values)
	if err == nil {
		col.Summary = &summary
	}
	return col
}

// mostFrequent returns the modal value, smallest first on ties
func mostFrequent(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best := ""
	for _, k := range keys {
		if best == "" || counts[k] > counts[best] {
			best = k
		}
	}
	return best
}
