package pipeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// LogEntry is one line of the JSON run log.
type LogEntry struct {
	Timestamp string `json:"time"`
	Msg       string `json:"msg"`
	Stage     string `json:"STAGE"`
	Sample    string `json:"SAMPLE"`
	Status    string `json:"STATUS"`
}

// ParseLogFile reads the JSON run log, skipping lines that do not parse.
func ParseLogFile(logFilePath string) []LogEntry {
	file, err := os.Open(logFilePath)
	if err != nil {
		return nil
	}
	defer file.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err == nil {
			entries = append(entries, entry)
		}
	}
	return entries
}

// StageHasCompleted reports whether a stage/sample pair was logged COMPLETED.
func StageHasCompleted(entries []LogEntry, stage, sample string) bool {
	for _, e := range entries {
		if e.Stage == stage && e.Sample == sample && e.Status == "COMPLETED" {
			return true
		}
	}
	return false
}

// completedStages collapses the run log into a set of stage:sample keys so a
// resumed run can skip work it already finished.
func completedStages(logFilePath string) map[string]struct{} {
	completed := make(map[string]struct{})
	for _, e := range ParseLogFile(logFilePath) {
		if e.Status == "COMPLETED" && e.Stage != "" {
			completed[stageKey(e.Stage, e.Sample)] = struct{}{}
		}
	}
	return completed
}

func stageKey(stage, sample string) string {
	return fmt.Sprintf("%s:%s", stage, sample)
}
