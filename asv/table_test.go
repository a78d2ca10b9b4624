package asv

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "table.tsv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing feature table: %v", err)
	}
	return path
}

func TestParseFeatureTable(t *testing.T) {
	path := writeTable(t, "#OTU ID\tKT1\tKT2\tBK1\nUniq1;size=500\t100\t50\t0\nUniq2;size=200\t20\t0\t80\n")

	ft, err := ParseFeatureTable(path)
	if err != nil {
		t.Fatalf("ParseFeatureTable failed: %v", err)
	}

	if len(ft.Samples) != 3 || ft.Samples[0] != "KT1" {
		t.Fatalf("samples = %v, want [KT1 KT2 BK1]", ft.Samples)
	}
	if len(ft.Variants) != 2 || ft.Variants[0] != "Uniq1" || ft.Variants[1] != "Uniq2" {
		t.Fatalf("variants = %v, size annotations should be stripped", ft.Variants)
	}

	// The file is variant-major; the parsed table is sample-major.
	if ft.Counts[0][0] != 100 || ft.Counts[0][1] != 20 {
		t.Errorf("KT1 row = %v, want [100 20]", ft.Counts[0])
	}
	if ft.Counts[2][0] != 0 || ft.Counts[2][1] != 80 {
		t.Errorf("BK1 row = %v, want [0 80]", ft.Counts[2])
	}

	if got := ft.SampleSum(0); got != 120 {
		t.Errorf("SampleSum(KT1) = %d, want 120", got)
	}
	if got := ft.VariantSum(0); got != 150 {
		t.Errorf("VariantSum(Uniq1) = %d, want 150", got)
	}
	if got := ft.SampleIndex("BK1"); got != 2 {
		t.Errorf("SampleIndex(BK1) = %d, want 2", got)
	}
	if got := ft.SampleIndex("nope"); got != -1 {
		t.Errorf("SampleIndex(nope) = %d, want -1", got)
	}
}

func TestParseFeatureTableBadCount(t *testing.T) {
	path := writeTable(t, "#OTU ID\tKT1\nUniq1\tmany\n")
	if _, err := ParseFeatureTable(path); err == nil {
		t.Fatal("expected error for non-numeric count")
	}
}

func TestParseFeatureTableNegativeCount(t *testing.T) {
	path := writeTable(t, "#OTU ID\tKT1\nUniq1\t-5\n")
	if _, err := ParseFeatureTable(path); err == nil {
		t.Fatal("expected error for negative count")
	}
}

func TestRelativeAbundance(t *testing.T) {
	ft := &FeatureTable{
		Samples:  []string{"KT1", "BK1"},
		Variants: []string{"ASV_1", "ASV_2"},
		Counts:   [][]int{{75, 25}, {0, 0}},
	}
	rel := ft.RelativeAbundance()
	if rel[0][0] != 0.75 || rel[0][1] != 0.25 {
		t.Errorf("KT1 relative abundances = %v, want [0.75 0.25]", rel[0])
	}
	if rel[1][0] != 0 || rel[1][1] != 0 {
		t.Errorf("empty sample should get all-zero row, got %v", rel[1])
	}
}

func TestSubsetSamples(t *testing.T) {
	ft := &FeatureTable{
		Samples:  []string{"KT1", "KT2", "BK1"},
		Variants: []string{"ASV_1"},
		Counts:   [][]int{{10}, {20}, {30}},
	}

	sub, err := ft.SubsetSamples([]string{"BK1", "KT1"})
	if err != nil {
		t.Fatalf("SubsetSamples failed: %v", err)
	}
	if len(sub.Samples) != 2 || sub.Samples[0] != "BK1" {
		t.Errorf("subset samples = %v, want [BK1 KT1]", sub.Samples)
	}
	if sub.Counts[0][0] != 30 || sub.Counts[1][0] != 10 {
		t.Errorf("subset counts = %v, want [[30] [10]]", sub.Counts)
	}

	if _, err := ft.SubsetSamples([]string{"nope"}); err == nil {
		t.Fatal("expected error for unknown sample")
	}
}

func TestFeatureTableWriteCSV(t *testing.T) {
	ft := &FeatureTable{
		Samples:  []string{"KT1"},
		Variants: []string{"ASV_1", "ASV_2"},
		Counts:   [][]int{{10, 5}},
	}
	path := filepath.Join(t.TempDir(), "table.csv")
	if err := ft.WriteCSV(path); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	want := "sample,ASV_1,ASV_2\nKT1,10,5\n"
	if string(data) != want {
		t.Errorf("csv = %q, want %q", string(data), want)
	}
}
