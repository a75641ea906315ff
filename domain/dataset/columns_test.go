package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStudentPerformanceGroups(t *testing.T) {
	g := StudentPerformance()

	assert.NoError(t, g.Validate())
	assert.Equal(t, "math_score", g.Target)
	assert.Len(t, g.Numerical, 2)
	assert.Len(t, g.Categorical, 5)
	assert.Equal(t, []string{"writing_score", "reading_score", "gender"}, g.Features()[:3])
	assert.NotContains(t, g.Features(), g.Target)
}

func TestColumnGroupsValidate(t *testing.T) {
	tests := []struct {
		name   string
		groups ColumnGroups
	}{
		{name: "no target", groups: ColumnGroups{Numerical: []string{"a"}}},
		{name: "no features", groups: ColumnGroups{Target: "y"}},
		{name: "target in numeric", groups: ColumnGroups{Numerical: []string{"y"}, Target: "y"}},
		{name: "target in categorical", groups: ColumnGroups{Categorical: []string{"y"}, Target: "y"}},
		{name: "overlap", groups: ColumnGroups{Numerical: []string{"a"}, Categorical: []string{"a"}, Target: "y"}},
		{name: "blank name", groups: ColumnGroups{Categorical: []string{""}, Target: "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.groups.Validate())
		})
	}
}

func TestCheckTableListsMissingColumns(t *testing.T) {
	g := ColumnGroups{Numerical: []string{"reading_score"}, Categorical: []string{"lunch"}, Target: "math_score"}
	tbl := &Table{Columns: []string{"lunch", "reading_score"}}

	err := g.CheckTable(tbl)
	assert.EqualError(t, err, `column "math_score" not found`)

	tbl.Columns = append(tbl.Columns, "math_score")
	assert.NoError(t, g.CheckTable(tbl))
}
