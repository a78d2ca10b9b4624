/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/gmaffy/amplicon-whisperer/pipeline"
	"github.com/gmaffy/amplicon-whisperer/utils"
	"github.com/spf13/cobra"
)

// runPipelineCmd represents the runPipeline command
var runPipelineCmd = &cobra.Command{
	Use:   "runPipeline",
	Short: "Runs the full amplicon pipeline from raw reads to community analysis",
	Long: `Runs the following pipeline:

1. Sample discovery and primer validation
2. Filter & trim
3. Merge pairs, dereplicate, denoise, remove chimeras (vsearch)
4. Feature table and taxonomy assignment (vsearch)
5. Read tracking
6. Diversity, ordination, family ratios and the HTML report

A previous run can be resumed by setting resume_dir in the config file;
per-sample stages already logged COMPLETED are skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("runPipeline called")
		configFile, cErr := cmd.Flags().GetString("config")
		if cErr != nil {
			log.Fatalf("Error getting config flag: %v", cErr)
		}

		threads, tErr := cmd.Flags().GetInt("threads")
		if tErr != nil {
			log.Fatalf("Error getting threads flag: %v", tErr)
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
		fmt.Printf("Running with config file %s\n", configFile)

		cfg, err := utils.ReadConfig(configFile)
		if err != nil {
			log.Fatalf("Error reading config file: %v", err)
		}
		if threads > 0 {
			cfg.Threads = threads
		}

		if err := pipeline.RunFromConfig(cfg); err != nil {
			log.Fatalf("Pipeline failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runPipelineCmd)

	runPipelineCmd.Flags().IntP("threads", "t", 0, "threads for vsearch and filtering (default: config value)")
}
