package reads

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
		t.Fatalf("creating %s: %v", name, err)
	}
}

func TestParseSampleName(t *testing.T) {
	cases := []struct {
		name      string
		condition string
		replicate string
	}{
		{"KT3", "KT", "3"},
		{"BK12", "BK", "12"},
		{"Control", "Control", ""},
		{"X1Y2", "X1Y", "2"},
	}
	for _, c := range cases {
		cond, rep := ParseSampleName(c.name)
		if cond != c.condition || rep != c.replicate {
			t.Errorf("ParseSampleName(%q) = %q/%q, want %q/%q", c.name, cond, rep, c.condition, c.replicate)
		}
	}
}

func TestDiscoverSamples(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "KT1_S1_L001_R1_001.fastq.gz")
	touch(t, dir, "KT1_S1_L001_R2_001.fastq.gz")
	touch(t, dir, "BK2_S2_L001_R1_001.fastq.gz")
	touch(t, dir, "BK2_S2_L001_R2_001.fastq.gz")

	samples, err := DiscoverSamples(dir)
	if err != nil {
		t.Fatalf("DiscoverSamples failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("found %d samples, want 2", len(samples))
	}

	// Glob output is sorted, so BK2 comes first.
	if samples[0].Name != "BK2" || samples[1].Name != "KT1" {
		t.Errorf("sample names = %s, %s; want BK2, KT1", samples[0].Name, samples[1].Name)
	}
	if samples[0].Condition != "BK" || samples[0].Replicate != "2" {
		t.Errorf("BK2 parsed as %s/%s", samples[0].Condition, samples[0].Replicate)
	}
	if !strings.Contains(samples[1].ForwardPath, "_R1_001") || !strings.Contains(samples[1].ReversePath, "_R2_001") {
		t.Errorf("KT1 paths not paired: %s / %s", samples[1].ForwardPath, samples[1].ReversePath)
	}
}

func TestDiscoverSamplesMissingMate(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "KT1_S1_L001_R1_001.fastq.gz")

	_, err := DiscoverSamples(dir)
	if err == nil {
		t.Fatal("expected error for forward file without reverse mate")
	}
}

func TestDiscoverSamplesOrphanReverse(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "KT1_S1_L001_R1_001.fastq.gz")
	touch(t, dir, "KT1_S1_L001_R2_001.fastq.gz")
	touch(t, dir, "BK2_S2_L001_R2_001.fastq.gz")

	_, err := DiscoverSamples(dir)
	if err == nil {
		t.Fatal("expected error for reverse file without forward mate")
	}
	if !strings.Contains(err.Error(), "BK2") {
		t.Errorf("error should name the orphan file, got: %v", err)
	}
}

func TestDiscoverSamplesEmptyDir(t *testing.T) {
	if _, err := DiscoverSamples(t.TempDir()); err == nil {
		t.Fatal("expected error for a directory without fastq files")
	}
}
