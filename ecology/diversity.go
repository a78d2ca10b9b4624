package ecology

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DiversityRow is the per-sample alpha diversity summary.
type DiversityRow struct {
	Sample     string  `csv:"sample"`
	Condition  string  `csv:"condition"`
	Observed   int     `csv:"observed"`
	Shannon    float64 `csv:"shannon"`
	Simpson    float64 `csv:"simpson"`
	InvSimpson float64 `csv:"inv_simpson"`
}

// Diversity computes observed richness, Shannon, Simpson and inverse Simpson
// per sample. Samples with zero total abundance get NaN indices.
func Diversity(e *Experiment) []DiversityRow {
	rows := make([]DiversityRow, 0, len(e.Features.Samples))
	for i, sample := range e.Features.Samples {
		row := DiversityRow{Sample: sample, Condition: e.Condition(sample)}

		total := e.Features.SampleSum(i)
		if total == 0 {
			row.Shannon = math.NaN()
			row.Simpson = math.NaN()
			row.InvSimpson = math.NaN()
			rows = append(rows, row)
			continue
		}

		shannon := 0.0
		sumSq := 0.0
		for _, c := range e.Features.Counts[i] {
			if c == 0 {
				continue
			}
			row.Observed++
			p := float64(c) / float64(total)
			shannon -= p * math.Log(p)
			sumSq += p * p
		}
		row.Shannon = shannon
		row.Simpson = 1 - sumSq
		row.InvSimpson = 1 / sumSq
		rows = append(rows, row)
	}
	return rows
}

// ComparisonResult is the two-condition test on Shannon diversity.
type ComparisonResult struct {
	ConditionA   string
	ConditionB   string
	NA           int
	NB           int
	MeanA        float64
	MeanB        float64
	TStatistic   float64
	DF           float64
	PValue       float64
	PermutationP float64
}

// WelchTTest is the unequal-variance two-sample t-test. The p-value comes
// from the Student's t distribution with Welch-Satterthwaite degrees of
// freedom.
func WelchTTest(x, y []float64) (t, df, p float64, err error) {
	if len(x) < 2 || len(y) < 2 {
		return 0, 0, 0, fmt.Errorf("need at least 2 observations per group, got %d and %d", len(x), len(y))
	}

	meanX := stat.Mean(x, nil)
	meanY := stat.Mean(y, nil)
	varX := stat.Variance(x, nil)
	varY := stat.Variance(y, nil)

	nx := float64(len(x))
	ny := float64(len(y))
	se2 := varX/nx + varY/ny
	if se2 == 0 {
		return 0, 0, 1, nil
	}

	t = (meanX - meanY) / math.Sqrt(se2)
	df = se2 * se2 / (varX*varX/(nx*nx*(nx-1)) + varY*varY/(ny*ny*(ny-1)))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.CDF(-math.Abs(t))
	return t, df, p, nil
}

// permutationTest estimates how often a random relabelling of the pooled
// observations produces a mean difference at least as extreme as the
// observed one.
func permutationTest(x, y []float64, rep int, seed uint64) float64 {
	observed := math.Abs(stat.Mean(x, nil) - stat.Mean(y, nil))

	pooled := make([]float64, 0, len(x)+len(y))
	pooled = append(pooled, x...)
	pooled = append(pooled, y...)

	rng := rand.New(rand.NewSource(seed))
	hits := 0
	for i := 0; i < rep; i++ {
		perm := rng.Perm(len(pooled))
		sumX := 0.0
		for _, idx := range perm[:len(x)] {
			sumX += pooled[idx]
		}
		sumY := 0.0
		for _, idx := range perm[len(x):] {
			sumY += pooled[idx]
		}
		diff := math.Abs(sumX/float64(len(x)) - sumY/float64(len(y)))
		if diff >= observed {
			hits++
		}
	}
	return (float64(hits) + 1) / (float64(rep) + 1)
}

// CompareConditions tests Shannon diversity between two experimental
// conditions, with both the Welch t-test and a permutation test on the mean
// difference.
func CompareConditions(rows []DiversityRow, condA, condB string, rep int, seed uint64) (ComparisonResult, error) {
	res := ComparisonResult{ConditionA: condA, ConditionB: condB}

	var a, b []float64
	for _, r := range rows {
		if math.IsNaN(r.Shannon) {
			continue
		}
		switch r.Condition {
		case condA:
			a = append(a, r.Shannon)
		case condB:
			b = append(b, r.Shannon)
		}
	}
	res.NA = len(a)
	res.NB = len(b)

	t, df, p, err := WelchTTest(a, b)
	if err != nil {
		return res, fmt.Errorf("comparing %s vs %s: %w", condA, condB, err)
	}

	res.MeanA = stat.Mean(a, nil)
	res.MeanB = stat.Mean(b, nil)
	res.TStatistic = t
	res.DF = df
	res.PValue = p
	if rep > 0 {
		res.PermutationP = permutationTest(a, b, rep, seed)
	}
	return res, nil
}
