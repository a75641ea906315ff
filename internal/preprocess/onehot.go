package preprocess

import (
	"fmt"
	"sort"
)

// OneHotEncoder expands each categorical column into one indicator column per
// category seen while fitting. Categories are kept in sorted order. A value never
// seen while fitting encodes as an all-zero indicator row.
type OneHotEncoder struct {
	Categories [][]string
}

// Fit learns the sorted category vocabulary of every column.
func (e *OneHotEncoder) Fit(columns [][]string, names []string) error {
	categories := make([][]string, len(columns))
	for j, col := range columns {
		seen := make(map[string]struct{})
		for _, v := range col {
			seen[v] = struct{}{}
		}
		if len(seen) == 0 {
			return fmt.Errorf("column %q has no categories", names[j])
		}
		vocab := make([]string, 0, len(seen))
		for v := range seen {
			vocab = append(vocab, v)
		}
		sort.Strings(vocab)
		categories[j] = vocab
	}
	e.Categories = categories
	return nil
}

// Width returns the number of indicator columns produced
func (e *OneHotEncoder) Width() int {
	w := 0
	for _, c := range e.Categories {
		w += len(c)
	}
	return w
}

// Transform returns the indicator columns, column-major, grouped by input column.
func (e *OneHotEncoder) Transform(columns [][]string) ([][]float64, error) {
	if len(columns) != len(e.Categories) {
		return nil, fmt.Errorf("encoder fitted on %d columns, got %d", len(e.Categories), len(columns))
	}
	out := make([][]float64, 0, e.Width())
	for j, col := range columns {
		index := make(map[string]int, len(e.Categories[j]))
		for k, c := range e.Categories[j] {
			index[c] = k
		}
		block := make([][]float64, len(e.Categories[j]))
		for k := range block {
			block[k] = make([]float64, len(col))
		}
		for i, v := range col {
			if k, ok := index[v]; ok {
				block[k][i] = 1
			}
		}
		out = append(out, block...)
	}
	return out, nil
}
