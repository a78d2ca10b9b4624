/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/gmaffy/amplicon-whisperer/asv"
	"github.com/gmaffy/amplicon-whisperer/ecology"
	"github.com/gmaffy/amplicon-whisperer/pipeline"
	"github.com/gmaffy/amplicon-whisperer/reads"
	"github.com/gmaffy/amplicon-whisperer/utils"
	"github.com/spf13/cobra"
)

// ecologyAnalysisCmd represents the ecologyAnalysis command
var ecologyAnalysisCmd = &cobra.Command{
	Use:   "ecologyAnalysis",
	Short: "Runs the community analysis on an existing feature table and taxonomy",
	Long: `Re-runs the downstream analysis without redoing the sequence processing:

1. Parse the vsearch feature table and sintax taxonomy
2. Alpha diversity per sample, two-condition comparison
3. PCoA ordination on Bray-Curtis dissimilarities
4. Family ratio table and the combined HTML report

Sample conditions and replicates are parsed from the sample names.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("ecologyAnalysis called")
		configFile, cErr := cmd.Flags().GetString("config")
		if cErr != nil {
			log.Fatalf("Error getting config flag: %v", cErr)
		}

		tablePath, tErr := cmd.Flags().GetString("table")
		if tErr != nil {
			log.Fatalf("Error getting table flag: %v", tErr)
		}

		taxPath, xErr := cmd.Flags().GetString("taxonomy")
		if xErr != nil {
			log.Fatalf("Error getting taxonomy flag: %v", xErr)
		}

		outDir, oErr := cmd.Flags().GetString("out")
		if oErr != nil {
			log.Fatalf("Error getting out flag: %v", oErr)
		}

		cfg := utils.DefaultConfig()
		if configFile != "" {
			var err error
			cfg, err = utils.ReadConfig(configFile)
			if err != nil {
				log.Fatalf("Error reading config file: %v", err)
			}
		}

		for _, p := range []string{tablePath, taxPath} {
			if p == "" {
				fmt.Println("You must provide --table and --taxonomy files")
				return
			}
			_, err := os.Stat(p)
			if err != nil {
				fmt.Printf("File: %s is not a valid file path", p)
				log.Fatal(err)
			}
		}

		if err := os.MkdirAll(outDir, 0755); err != nil {
			log.Fatalf("Error creating output directory: %v", err)
		}

		ft, err := asv.ParseFeatureTable(tablePath)
		if err != nil {
			log.Fatalf("Error parsing feature table: %v", err)
		}
		tt, err := asv.ParseTaxonomy(taxPath)
		if err != nil {
			log.Fatalf("Error parsing taxonomy: %v", err)
		}

		meta := make(map[string]ecology.SampleMeta, len(ft.Samples))
		for _, s := range ft.Samples {
			cond, rep := reads.ParseSampleName(s)
			meta[s] = ecology.SampleMeta{Condition: cond, Replicate: rep}
		}

		err = pipeline.Analyse(ft, tt, meta, outDir, cfg.FamilyA, cfg.FamilyB, cfg.ConditionA, cfg.ConditionB, cfg.RarefyDepth)
		if err != nil {
			log.Fatalf("Community analysis failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(ecologyAnalysisCmd)

	ecologyAnalysisCmd.Flags().StringP("table", "b", "", "feature table from vsearch --otutabout")
	ecologyAnalysisCmd.Flags().StringP("taxonomy", "x", "", "taxonomy from vsearch --sintax --tabbedout")
	ecologyAnalysisCmd.Flags().StringP("out", "o", "results", "output directory")
}
