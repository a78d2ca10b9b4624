package reads

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateTrack(t *testing.T) {
	rows := []TrackRow{
		{Sample: "KT1", Input: 1000, Filtered: 900, Merged: 850, NonChimeric: 800},
		{Sample: "KT2", Input: 500, Filtered: 500, Merged: 400, NonChimeric: 400},
	}
	if err := ValidateTrack(rows); err != nil {
		t.Fatalf("valid track rejected: %v", err)
	}
}

func TestValidateTrackIncrease(t *testing.T) {
	rows := []TrackRow{
		{Sample: "KT1", Input: 1000, Filtered: 900, Merged: 950, NonChimeric: 800},
	}
	err := ValidateTrack(rows)
	if err == nil {
		t.Fatal("expected error when merged exceeds filtered")
	}
	if !strings.Contains(err.Error(), "KT1") || !strings.Contains(err.Error(), "merged") {
		t.Errorf("error should name the sample and stage, got: %v", err)
	}
}

func TestWriteTrackCSV(t *testing.T) {
	rows := []TrackRow{
		{Sample: "KT1", Input: 1000, Filtered: 900, Merged: 850, NonChimeric: 800},
	}
	path := filepath.Join(t.TempDir(), "track.csv")
	if err := WriteTrackCSV(rows, path); err != nil {
		t.Fatalf("WriteTrackCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading track csv: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "sample") || !strings.Contains(content, "non_chimeric") {
		t.Errorf("csv header missing expected columns:\n%s", content)
	}
	if !strings.Contains(content, "KT1") {
		t.Errorf("csv missing sample row:\n%s", content)
	}
}

func TestBuildTrackTable(t *testing.T) {
	rows := []TrackRow{
		{Sample: "KT1", Input: 1000, Filtered: 900, Merged: 850, NonChimeric: 800},
		{Sample: "KT2", Input: 500, Filtered: 450, Merged: 400, NonChimeric: 380},
	}
	df := BuildTrackTable(rows)
	if df.Nrow() != 2 {
		t.Errorf("dataframe has %d rows, want 2", df.Nrow())
	}
	if df.Ncol() != 5 {
		t.Errorf("dataframe has %d columns, want 5", df.Ncol())
	}
}
