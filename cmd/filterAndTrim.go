/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/gmaffy/amplicon-whisperer/reads"
	"github.com/gmaffy/amplicon-whisperer/utils"
	"github.com/spf13/cobra"
)

// filterAndTrimCmd represents the filterAndTrim command
var filterAndTrimCmd = &cobra.Command{
	Use:   "filterAndTrim",
	Short: "Validates primers then filters and trims paired-end reads",
	Long: `Runs the following pipeline:

1. Pair up _R1_001/_R2_001 fastq.gz files in the input directory
2. Validate primer lengths from the metadata table
3. Trim primers, truncate on length and quality, filter on N count and expected errors
4. Write surviving pairs as gzip-compressed FASTQ`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("filterAndTrim called")
		configFile, cErr := cmd.Flags().GetString("config")
		if cErr != nil {
			log.Fatalf("Error getting config flag: %v", cErr)
		}

		if configFile == "" {
			fmt.Println("You must provide a config file")
			return
		}
		_, sErr := os.Stat(configFile)
		if sErr != nil {
			fmt.Printf("Config file: %s does not exist", configFile)
			return
		}

		cfg, err := utils.ReadConfig(configFile)
		if err != nil {
			log.Fatalf("Error reading config file: %v", err)
		}

		threads, tErr := cmd.Flags().GetInt("threads")
		if tErr != nil {
			log.Fatalf("Error getting threads flag: %v", tErr)
		}
		if threads > 0 {
			cfg.Threads = threads
		}

		outDir, oErr := cmd.Flags().GetString("out")
		if oErr != nil {
			log.Fatalf("Error getting out flag: %v", oErr)
		}
		if outDir == "" {
			outDir = cfg.OutputDir
		}

		samples, err := reads.DiscoverSamples(cfg.InputDir)
		if err != nil {
			log.Fatalf("Error discovering samples: %v", err)
		}
		fmt.Printf("Found %d samples in %s\n", len(samples), cfg.InputDir)

		primers, err := reads.ReadPrimerTable(cfg.Metadata)
		if err != nil {
			log.Fatalf("Error reading primer table: %v", err)
		}
		fwdLen, revLen, err := reads.ValidatePrimerLengths(primers)
		if err != nil {
			log.Fatalf("Primer validation failed: %v", err)
		}
		fmt.Printf("Forward primer length: %d, reverse primer length: %d\n", fwdLen, revLen)

		params := reads.FilterParams{
			TruncLenF: cfg.TruncLenF,
			TruncLenR: cfg.TruncLenR,
			TrimLeftF: fwdLen,
			TrimLeftR: revLen,
			TruncQ:    cfg.TruncQ,
			MaxN:      cfg.MaxN,
			MinLen:    cfg.MinLen,
			MaxEEF:    cfg.MaxEEF,
			MaxEER:    cfg.MaxEER,
		}
		results, err := reads.FilterTrimAll(samples, outDir, params, cfg.Threads)
		if err != nil {
			log.Fatalf("Error filtering reads: %v", err)
		}
		for _, r := range results {
			fmt.Printf("%s: %d reads in, %d reads out\n", r.Sample, r.ReadsIn, r.ReadsOut)
		}
	},
}

func init() {
	rootCmd.AddCommand(filterAndTrimCmd)

	filterAndTrimCmd.Flags().StringP("out", "o", "", "output directory for filtered reads")
	filterAndTrimCmd.Flags().IntP("threads", "t", 0, "parallel workers (default: config value)")
}
