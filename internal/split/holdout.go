package split

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"mlproject/domain/dataset"
)

// Split methods
const (
	MethodRandom     = "simple_random"
	MethodStratified = "stratified_random"
)

// Splitter performs a seeded, row-disjoint holdout split
type Splitter struct {
	testFraction float64
	seed         int64
	stratifyBy   string
}

// Result is the outcome of a split. TrainIndex and TestIndex hold the source row
// positions of each side, in output order.
type Result struct {
	Train      *dataset.Table
	Test       *dataset.Table
	TrainIndex []int
	TestIndex  []int
	Method     string
}

// NewSplitter creates a splitter holding out testFraction of the rows
func NewSplitter(testFraction float64, seed int64) *Splitter {
	return &Splitter{testFraction: testFraction, seed: seed}
}

// WithStratification keeps the proportion of each value of column equal on both sides.
func (s *Splitter) WithStratification(column string) *Splitter {
	cp := *s
	cp.stratifyBy = column
	return &cp
}

// TestSize returns the number of held-out rows for n rows: ceil(fraction * n).
func (s *Splitter) TestSize(n int) int {
	return int(math.Ceil(s.testFraction * float64(n)))
}

// Split partitions t. The same table, fraction and seed always yield the same rows
// on each side, and every row lands on exactly one side.
func (s *Splitter) Split(t *dataset.Table) (*Result, error) {
	if s.testFraction <= 0 || s.testFraction >= 1 {
		return nil, fmt.Errorf("test fraction must be in (0, 1), got %g", s.testFraction)
	}
	n := t.Len()
	nTest := s.TestSize(n)
	if nTest < 1 || n-nTest < 1 {
		return nil, fmt.Errorf("cannot split %d rows with test fraction %g: both sides need at least one row", n, s.testFraction)
	}

	var (
		trainIdx, testIdx []int
		method            string
	)
	if s.stratifyBy != "" {
		values, err := t.Column(s.stratifyBy)
		if err != nil {
			return nil, fmt.Errorf("stratification column: %w", err)
		}
		trainIdx, testIdx = s.stratifiedPartition(values, nTest)
		method = MethodStratified
	} else {
		trainIdx, testIdx = s.randomPartition(n, nTest)
		method = MethodRandom
	}

	if len(testIdx) == 0 || len(trainIdx) == 0 {
		return nil, fmt.Errorf("cannot split %d rows with test fraction %g: both sides need at least one row", n, s.testFraction)
	}

	return &Result{
		Train:      t.Subset(trainIdx),
		Test:       t.Subset(testIdx),
		TrainIndex: trainIdx,
		TestIndex:  testIdx,
		Method:     method,
	}, nil
}

// randomPartition permutes the row positions; the first nTest go to test.
func (s *Splitter) randomPartition(n, nTest int) (train, test []int) {
	rng := rand.New(rand.NewSource(s.seed))
	perm := rng.Perm(n)
	test = append([]int(nil), perm[:nTest]...)
	train = append([]int(nil), perm[nTest:]...)
	return train, test
}

// stratifiedPartition shuffles each stratum separately and holds out nTest rows in
// total. Each stratum gets floor(fraction*len) rows; the rows left over go one each
// to the strata with the largest fractional remainders, ties to the earlier stratum.
// Strata are visited in sorted order so the RNG stream is stable.
func (s *Splitter) stratifiedPartition(values []string, nTest int) (train, test []int) {
	strata := make(map[string][]int)
	for i, v := range values {
		strata[v] = append(strata[v], i)
	}
	keys := make([]string, 0, len(strata))
	for k := range strata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	quotas := allocate(keys, strata, s.testFraction, nTest)

	rng := rand.New(rand.NewSource(s.seed))
	for i, k := range keys {
		members := append([]int(nil), strata[k]...)
		rng.Shuffle(len(members), func(i, j int) {
			members[i], members[j] = members[j], members[i]
		})
		test = append(test, members[:quotas[i]]...)
		train = append(train, members[quotas[i]:]...)
	}
	return train, test
}

// allocate splits nTest held-out rows across strata by largest remainder.
func allocate(keys []string, strata map[string][]int, fraction float64, nTest int) []int {
	quotas := make([]int, len(keys))
	remainders := make([]float64, len(keys))
	assigned := 0
	for i, k := range keys {
		exact := fraction * float64(len(strata[k]))
		quotas[i] = int(math.Floor(exact))
		remainders[i] = exact - float64(quotas[i])
		assigned += quotas[i]
	}

	order := make([]int, len(keys))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for _, i := range order {
		if assigned >= nTest {
			break
		}
		if quotas[i] < len(strata[keys[i]]) {
			quotas[i]++
			assigned++
		}
	}
	return quotas
}
