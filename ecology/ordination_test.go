package ecology

import (
	"math"
	"testing"

	"github.com/gmaffy/amplicon-whisperer/asv"
)

func TestBrayCurtis(t *testing.T) {
	ft := &asv.FeatureTable{
		Samples:  []string{"A", "B", "C"},
		Variants: []string{"ASV_1", "ASV_2"},
		Counts: [][]int{
			{10, 0},
			{0, 10},
			{10, 0},
		},
	}

	d := BrayCurtis(ft)
	if d[0][0] != 0 {
		t.Errorf("self dissimilarity = %v, want 0", d[0][0])
	}
	if d[0][1] != 1 {
		t.Errorf("disjoint samples dissimilarity = %v, want 1", d[0][1])
	}
	if d[0][2] != 0 {
		t.Errorf("identical samples dissimilarity = %v, want 0", d[0][2])
	}
	if d[1][0] != d[0][1] {
		t.Error("matrix not symmetric")
	}
}

func TestBrayCurtisPartialOverlap(t *testing.T) {
	ft := &asv.FeatureTable{
		Samples:  []string{"A", "B"},
		Variants: []string{"ASV_1", "ASV_2"},
		Counts: [][]int{
			{6, 2},
			{2, 6},
		},
	}
	// min sums to 4, totals to 16: 1 - 2*4/16 = 0.5
	d := BrayCurtis(ft)
	if math.Abs(d[0][1]-0.5) > 1e-9 {
		t.Errorf("dissimilarity = %v, want 0.5", d[0][1])
	}
}

func TestPCoA(t *testing.T) {
	samples := []string{"A", "B", "C", "D"}
	dist := [][]float64{
		{0.0, 0.9, 0.1, 0.8},
		{0.9, 0.0, 0.8, 0.1},
		{0.1, 0.8, 0.0, 0.9},
		{0.8, 0.1, 0.9, 0.0},
	}

	ord, err := PCoA(samples, dist)
	if err != nil {
		t.Fatalf("PCoA failed: %v", err)
	}
	if len(ord.X) != 4 || len(ord.Y) != 4 {
		t.Fatalf("coordinate lengths = %d/%d, want 4/4", len(ord.X), len(ord.Y))
	}
	if ord.ExplainedX <= 0 || ord.ExplainedX > 1 {
		t.Errorf("ExplainedX = %v, want in (0, 1]", ord.ExplainedX)
	}
	if ord.ExplainedX < ord.ExplainedY {
		t.Errorf("axis 1 (%v) should explain at least as much as axis 2 (%v)", ord.ExplainedX, ord.ExplainedY)
	}

	// A/C and B/D are near each other; the two clusters separate on axis 1.
	sameAC := math.Abs(ord.X[0] - ord.X[2])
	crossAB := math.Abs(ord.X[0] - ord.X[1])
	if sameAC >= crossAB {
		t.Errorf("axis 1 does not separate the clusters: |A-C| = %v, |A-B| = %v", sameAC, crossAB)
	}
}

func TestPCoATooFewSamples(t *testing.T) {
	_, err := PCoA([]string{"A", "B"}, [][]float64{{0, 1}, {1, 0}})
	if err == nil {
		t.Fatal("expected error for fewer than 3 samples")
	}
}

func TestPCoAIdenticalSamples(t *testing.T) {
	dist := [][]float64{
		{0, 0, 0},
		{0, 0, 0},
		{0, 0, 0},
	}
	if _, err := PCoA([]string{"A", "B", "C"}, dist); err == nil {
		t.Fatal("expected error when all samples are identical")
	}
}
