package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.log")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing log file: %v", err)
	}
	return path
}

func TestParseLogFile(t *testing.T) {
	logContent := `{"time":"2025-06-18T21:11:02.572267197+02:00","level":"INFO","msg":"AMPLICON PIPELINE","STAGE":"INITIALISE","SAMPLE":"ALL","STATUS":"STARTED"}
{"time":"2025-06-18T21:11:03.397122518+02:00","level":"INFO","msg":"AMPLICON PIPELINE","STAGE":"MergePairs","SAMPLE":"KT1","STATUS":"STARTED"}
{"time":"2025-06-18T21:12:04.124962114+02:00","level":"INFO","msg":"AMPLICON PIPELINE","STAGE":"MergePairs","SAMPLE":"KT1","STATUS":"COMPLETED"}
{"time":"2025-06-18T21:12:05.019476930+02:00","level":"INFO","msg":"AMPLICON PIPELINE","STAGE":"MergePairs","SAMPLE":"KT2","STATUS":"STARTED"}
not json at all
{"time":"2025-06-18T21:13:06.687393372+02:00","level":"INFO","msg":"AMPLICON PIPELINE","STAGE":"FilterTrim","SAMPLE":"ALL","STATUS":"COMPLETED"}`

	path := writeLog(t, logContent)
	entries := ParseLogFile(path)
	if len(entries) != 5 {
		t.Fatalf("parsed %d entries, want 5 (the non-JSON line is skipped)", len(entries))
	}

	if !StageHasCompleted(entries, "MergePairs", "KT1") {
		t.Error("MergePairs/KT1 should be completed")
	}
	if StageHasCompleted(entries, "MergePairs", "KT2") {
		t.Error("MergePairs/KT2 only started, should not be completed")
	}
	if !StageHasCompleted(entries, "FilterTrim", "ALL") {
		t.Error("FilterTrim/ALL should be completed")
	}
}

func TestCompletedStages(t *testing.T) {
	logContent := `{"time":"t1","msg":"AMPLICON PIPELINE","STAGE":"MergePairs","SAMPLE":"KT1","STATUS":"COMPLETED"}
{"time":"t2","msg":"AMPLICON PIPELINE","STAGE":"MergePairs","SAMPLE":"KT2","STATUS":"FAILED"}`

	path := writeLog(t, logContent)
	done := completedStages(path)
	if _, ok := done[stageKey("MergePairs", "KT1")]; !ok {
		t.Error("MergePairs:KT1 missing from completed set")
	}
	if _, ok := done[stageKey("MergePairs", "KT2")]; ok {
		t.Error("failed stage must not appear in completed set")
	}
}

func TestParseLogFileMissing(t *testing.T) {
	entries := ParseLogFile(filepath.Join(t.TempDir(), "nope.log"))
	if entries != nil {
		t.Errorf("missing log file should parse to nil, got %d entries", len(entries))
	}
}
