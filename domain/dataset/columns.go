package dataset

import (
	"fmt"
	"strings"
)

// ColumnGroups declares which columns feed the numeric and categorical sub-pipelines
// and which column is the prediction target.
type ColumnGroups struct {
	Numerical   []string
	Categorical []string
	Target      string
}

// StudentPerformance is the fixed column declaration of the student-performance dataset.
func StudentPerformance() ColumnGroups {
	return ColumnGroups{
		Numerical: []string{"writing_score", "reading_score"},
		Categorical: []string{
			"gender",
			"race_ethnicity",
			"parental_level_of_education",
			"lunch",
			"test_preparation_course",
		},
		Target: "math_score",
	}
}

// Features returns every declared feature column, numeric first.
func (g ColumnGroups) Features() []string {
	out := make([]string, 0, len(g.Numerical)+len(g.Categorical))
	out = append(out, g.Numerical...)
	return append(out, g.Categorical...)
}

// Validate checks that the groups are disjoint and never contain the target.
func (g ColumnGroups) Validate() error {
	if strings.TrimSpace(g.Target) == "" {
		return fmt.Errorf("target column is required")
	}
	if len(g.Numerical)+len(g.Categorical) == 0 {
		return fmt.Errorf("at least one feature column is required")
	}
	seen := make(map[string]string)
	check := func(group string, cols []string) error {
		for _, c := range cols {
			if strings.TrimSpace(c) == "" {
				return fmt.Errorf("%s group has an empty column name", group)
			}
			if c == g.Target {
				return fmt.Errorf("target %q declared as %s feature", c, group)
			}
			if prev, dup := seen[c]; dup {
				return fmt.Errorf("column %q declared in both %s and %s groups", c, prev, group)
			}
			seen[c] = group
		}
		return nil
	}
	if err := check("numerical", g.Numerical); err != nil {
		return err
	}
	return check("categorical", g.Categorical)
}

// CheckTable verifies that t carries the target and every declared feature column.
func (g ColumnGroups) CheckTable(t *Table) error {
	required := append([]string{g.Target}, g.Features()...)
	var missing []string
	for _, c := range required {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnError{Column: strings.Join(missing, ", ")}
	}
	return nil
}
