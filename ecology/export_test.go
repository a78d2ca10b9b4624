package ecology

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteDiversityCSV(t *testing.T) {
	rows := []DiversityRow{
		{Sample: "KT1", Condition: "KT", Observed: 12, Shannon: 2.1, Simpson: 0.8, InvSimpson: 5.0},
	}
	path := filepath.Join(t.TempDir(), "diversity.csv")
	if err := WriteDiversityCSV(rows, path); err != nil {
		t.Fatalf("WriteDiversityCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	content := string(data)
	for _, want := range []string{"sample", "shannon", "inv_simpson", "KT1"} {
		if !strings.Contains(content, want) {
			t.Errorf("csv missing %q:\n%s", want, content)
		}
	}
}

func TestWriteComparison(t *testing.T) {
	res := ComparisonResult{
		ConditionA: "KT", ConditionB: "BK",
		NA: 3, NB: 3, MeanA: 2.2, MeanB: 1.1,
		TStatistic: 9.1, DF: 3.9, PValue: 0.001, PermutationP: 0.002,
	}
	path := filepath.Join(t.TempDir(), "comparison.txt")
	if err := WriteComparison(res, path); err != nil {
		t.Fatalf("WriteComparison failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading comparison: %v", err)
	}
	content := string(data)
	for _, want := range []string{"KT", "BK", "Welch t", "Permutation p"} {
		if !strings.Contains(content, want) {
			t.Errorf("comparison missing %q:\n%s", want, content)
		}
	}
}

func TestWriteReport(t *testing.T) {
	e := aggregateExperiment(t)

	ord, err := PCoA([]string{"KT1", "BK1", "X1"}, [][]float64{
		{0, 0.8, 0.4},
		{0.8, 0, 0.5},
		{0.4, 0.5, 0},
	})
	if err != nil {
		t.Fatalf("PCoA for report: %v", err)
	}

	divRows := Diversity(e)
	ratioRows := FamilyRatios(e, "Acetobacteraceae", "Lactobacillaceae")

	path := filepath.Join(t.TempDir(), "report.html")
	if err := WriteReport(e, ord, divRows, ratioRows, "Acetobacteraceae", "Lactobacillaceae", path); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("report is empty")
	}
}
