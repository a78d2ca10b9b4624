/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/gmaffy/amplicon-whisperer/reads"
	"github.com/spf13/cobra"
)

// qualityProfileCmd represents the qualityProfile command
var qualityProfileCmd = &cobra.Command{
	Use:   "qualityProfile",
	Short: "Plots per-cycle mean quality scores for every FASTQ file in a directory",
	Long: `Reads every *.fastq.gz file in the input directory and plots the mean
Phred score at each cycle, as one HTML page plus one PNG per file.

Use these plots to choose truncation lengths before filterAndTrim.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("qualityProfile called")
		inputDir, iErr := cmd.Flags().GetString("input")
		if iErr != nil {
			log.Fatalf("Error getting input flag: %v", iErr)
		}

		outDir, oErr := cmd.Flags().GetString("out")
		if oErr != nil {
			log.Fatalf("Error getting out flag: %v", oErr)
		}

		maxReads, mErr := cmd.Flags().GetInt("max-reads")
		if mErr != nil {
			log.Fatalf("Error getting max-reads flag: %v", mErr)
		}

		_, dErr := os.Stat(inputDir)
		if dErr != nil {
			fmt.Printf("Input directory: %s does not exist", inputDir)
			return
		}
		if outDir == "" {
			outDir = inputDir
		}

		if err := reads.QualityProfileDir(inputDir, outDir, maxReads); err != nil {
			log.Fatalf("Error profiling quality: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(qualityProfileCmd)

	qualityProfileCmd.Flags().StringP("input", "i", "", "directory with fastq.gz files")
	qualityProfileCmd.Flags().StringP("out", "o", "", "output directory (default: input directory)")
	qualityProfileCmd.Flags().IntP("max-reads", "n", 10000, "reads sampled per file, 0 for all")
}
