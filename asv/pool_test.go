package asv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gmaffy/amplicon-whisperer/reads"
)

func TestPoolSamples(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
		return path
	}

	kt1 := write("KT1_merged.fastq", "@m1\nACGTACGT\n+\nIIIIIIII\n@m2\nTTTTACGT\n+\nIIIIIIII\n")
	bk1 := write("BK1_merged.fastq", "@m1\nGGGGACGT\n+\nIIIIIIII\n")

	samples := []reads.Sample{{Name: "KT1"}, {Name: "BK1"}}
	mergedPaths := map[string]string{"KT1": kt1, "BK1": bk1}

	pooled := filepath.Join(dir, "pooled.fasta")
	counts, err := PoolSamples(samples, mergedPaths, pooled)
	if err != nil {
		t.Fatalf("PoolSamples failed: %v", err)
	}

	if counts["KT1"] != 2 || counts["BK1"] != 1 {
		t.Errorf("counts = %v, want KT1:2 BK1:1", counts)
	}

	data, err := os.ReadFile(pooled)
	if err != nil {
		t.Fatalf("reading pooled fasta: %v", err)
	}
	got := string(data)
	for _, label := range []string{">KT1.1;sample=KT1", ">KT1.2;sample=KT1", ">BK1.1;sample=BK1"} {
		if !strings.Contains(got, label) {
			t.Errorf("pooled fasta missing label %s:\n%s", label, got)
		}
	}
}

func TestPoolSamplesMissingPath(t *testing.T) {
	samples := []reads.Sample{{Name: "KT1"}}
	_, err := PoolSamples(samples, map[string]string{}, filepath.Join(t.TempDir(), "pooled.fasta"))
	if err == nil {
		t.Fatal("expected error when a sample has no merged reads recorded")
	}
}
