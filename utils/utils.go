package utils

import (
	"bufio"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	slogmulti "github.com/samber/slog-multi"
)

type Config struct {
	InputDir    string
	OutputDir   string
	Metadata    string
	ReferenceDB string

	TruncLenF int
	TruncLenR int
	MaxEEF    float64
	MaxEER    float64
	TruncQ    int
	MaxN      int
	MinLen    int

	MinSize      int
	UnoiseAlpha  float64
	SintaxCutoff float64

	FamilyA     string
	FamilyB     string
	ConditionA  string
	ConditionB  string
	RarefyDepth int

	Vsearch   string
	Threads   int
	ResumeDir string
}

// DefaultConfig carries the parameters a run falls back to when neither the
// config file nor the flags set them.
func DefaultConfig() Config {
	return Config{
		TruncQ:       2,
		MaxN:         0,
		MaxEEF:       2.0,
		MaxEER:       2.0,
		MinLen:       50,
		MinSize:      8,
		UnoiseAlpha:  2.0,
		SintaxCutoff: 0.8,
		FamilyA:      "Acetobacteraceae",
		FamilyB:      "Lactobacillaceae",
		Vsearch:      "vsearch",
		Threads:      4,
	}
}

func ReadConfig(configPath string) (Config, error) {
	configFile, err := os.Open(configPath)
	if err != nil {
		return Config{}, err
	}
	defer configFile.Close()
	cfg := DefaultConfig()

	scanner := bufio.NewScanner(configFile)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch key {
		case "InputDir":
			cfg.InputDir = value
		case "OutputDir":
			cfg.OutputDir = value
		case "Metadata":
			cfg.Metadata = value
		case "ReferenceDB":
			cfg.ReferenceDB = value
		case "trunc_len_f":
			cfg.TruncLenF, err = strconv.Atoi(value)
		case "trunc_len_r":
			cfg.TruncLenR, err = strconv.Atoi(value)
		case "max_ee_f":
			cfg.MaxEEF, err = strconv.ParseFloat(value, 64)
		case "max_ee_r":
			cfg.MaxEER, err = strconv.ParseFloat(value, 64)
		case "trunc_q":
			cfg.TruncQ, err = strconv.Atoi(value)
		case "max_n":
			cfg.MaxN, err = strconv.Atoi(value)
		case "min_len":
			cfg.MinLen, err = strconv.Atoi(value)
		case "min_size":
			cfg.MinSize, err = strconv.Atoi(value)
		case "unoise_alpha":
			cfg.UnoiseAlpha, err = strconv.ParseFloat(value, 64)
		case "sintax_cutoff":
			cfg.SintaxCutoff, err = strconv.ParseFloat(value, 64)
		case "family_a":
			cfg.FamilyA = value
		case "family_b":
			cfg.FamilyB = value
		case "condition_a":
			cfg.ConditionA = value
		case "condition_b":
			cfg.ConditionB = value
		case "rarefy_depth":
			cfg.RarefyDepth, err = strconv.Atoi(value)
		case "vsearch":
			cfg.Vsearch = value
		case "resume_dir":
			cfg.ResumeDir = value
		case "threads":
			cfg.Threads, err = strconv.Atoi(value)
		}
		if err != nil {
			return cfg, fmt.Errorf("config key %s: bad value %q: %w", key, value, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func RunBashCmdVerbose(cmdStr string) error {
	cmd := exec.Command("bash", "-c", cmdStr)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err != nil {
		return err
	}
	return nil
}

// CheckDeps confirms the external binaries the pipeline shells out to are on PATH.
func CheckDeps(binaries ...string) error {
	for _, bin := range binaries {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("required program %q not found on PATH", bin)
		}
	}
	return nil
}

func CreateResultsDir(outputDir string) (string, error) {
	baseDir := filepath.Join(outputDir, "ampliconResults")
	bErr := os.MkdirAll(baseDir, 0755)
	if bErr != nil {
		log.Fatalf("Error creating results directory: %s\n", bErr)
		return "", bErr
	}

	now := time.Now()
	resultsDir := filepath.Join(baseDir, fmt.Sprintf("%02d_%02d_%04d_%02d_%02d_%02d", now.Day(), now.Month(), now.Year(), now.Hour(), now.Minute(), now.Second()))

	err := os.MkdirAll(resultsDir, 0755)
	if err != nil {
		log.Fatalf("Error creating results directory: %s\n", err)
		return "", err
	}
	fmt.Printf("Created results directory at %s ..\n\n", resultsDir)

	return resultsDir, nil
}

// NewRunLogger fans log records out to the console and to a JSON run log in the
// results directory. The JSON file is also the resume journal, so it is opened
// in append mode.
func NewRunLogger(resultsDir string) (*slog.Logger, *os.File, error) {
	logPath := filepath.Join(resultsDir, "run.log")
	logFile, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, nil, err
	}

	logger := slog.New(slogmulti.Fanout(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelInfo}),
	))
	return logger, logFile, nil
}
