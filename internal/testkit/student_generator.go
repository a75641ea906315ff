package testkit

import (
	"math"
	"math/rand"
	"path/filepath"
	"strconv"

	"mlproject/adapters/tabular"
	"mlproject/domain/dataset"
)

// StudentColumns is the column order of the student-performance source file
var StudentColumns = []string{
	"gender",
	"race_ethnicity",
	"parental_level_of_education",
	"lunch",
	"test_preparation_course",
	"math_score",
	"reading_score",
	"writing_score",
}

var (
	genders      = []string{"female", "male"}
	ethnicities  = []string{"group A", "group B", "group C", "group D", "group E"}
	educations   = []string{"some high school", "high school", "some college", "associate's degree", "bachelor's degree", "master's degree"}
	lunches      = []string{"standard", "free/reduced"}
	preparations = []string{"none", "completed"}
)

// StudentGeneratorConfig configures the student-performance data generator.
// MissingRate is the probability that a feature cell is left empty; the target
// column is never blanked.
type StudentGeneratorConfig struct {
	Rows        int     `json:"rows"`
	Seed        int64   `json:"seed"`
	MissingRate float64 `json:"missing_rate"`
}

// DefaultStudentConfig returns a 1000-row dataset without missing cells
func DefaultStudentConfig() StudentGeneratorConfig {
	return StudentGeneratorConfig{
		Rows: 1000,
		Seed: 42,
	}
}

// StudentGenerator generates synthetic student exam records
type StudentGenerator struct {
	config StudentGeneratorConfig
	rng    *rand.Rand
}

// NewStudentGenerator creates a new generator; equal configs generate equal tables
func NewStudentGenerator(config StudentGeneratorConfig) *StudentGenerator {
	return &StudentGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the table. Scores depend on lunch, preparation and parental
// education so a fitted model has signal to find.
func (g *StudentGenerator) Generate() *dataset.Table {
	t := &dataset.Table{Columns: append([]string(nil), StudentColumns...)}
	for i := 0; i < g.config.Rows; i++ {
		t.Rows = append(t.Rows, g.student())
	}
	return t
}

// WriteCSV generates the table and writes it to dir/name, returning the path.
func (g *StudentGenerator) WriteCSV(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	if err := tabular.WriteCSV(path, g.Generate()); err != nil {
		return "", err
	}
	return path, nil
}

func (g *StudentGenerator) student() []string {
	gender := g.pick(genders)
	ethnicity := g.pick(ethnicities)
	educationIdx := g.rng.Intn(len(educations))
	lunch := lunches[0]
	if g.rng.Float64() < 0.35 {
		lunch = lunches[1]
	}
	prep := preparations[0]
	if g.rng.Float64() < 0.36 {
		prep = preparations[1]
	}

	ability := 62 + g.rng.NormFloat64()*12 + float64(educationIdx)*1.5
	if lunch == "standard" {
		ability += 6
	}
	if prep == "completed" {
		ability += 5
	}

	reading := ability + g.rng.NormFloat64()*6
	writing := ability + g.rng.NormFloat64()*6
	if gender == "female" {
		reading += 4
		writing += 6
	}
	mathScore := ability + g.rng.NormFloat64()*7
	if gender == "male" {
		mathScore += 4
	}

	row := []string{
		gender,
		ethnicity,
		educations[educationIdx],
		lunch,
		prep,
		score(mathScore),
		score(reading),
		score(writing),
	}
	const targetIdx = 5
	for j := range row {
		if j != targetIdx && g.config.MissingRate > 0 && g.rng.Float64() < g.config.MissingRate {
			row[j] = ""
		}
	}
	return row
}

func (g *StudentGenerator) pick(values []string) string {
	return values[g.rng.Intn(len(values))]
}

func score(v float64) string {
	return strconv.Itoa(int(math.Max(0, math.Min(100, math.Round(v)))))
}
