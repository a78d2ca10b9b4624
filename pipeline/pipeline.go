// Package pipeline wires the stages together: discovery, primer validation,
// filter/trim, the delegated vsearch stages, read tracking and the downstream
// community analysis, all writing into one timestamped results directory.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gmaffy/amplicon-whisperer/asv"
	"github.com/gmaffy/amplicon-whisperer/ecology"
	"github.com/gmaffy/amplicon-whisperer/reads"
	"github.com/gmaffy/amplicon-whisperer/utils"
)

// RunFromConfig executes the full pipeline. Every stage materializes its
// output before the next starts; the first failing stage aborts the run.
func RunFromConfig(cfg utils.Config) error {
	if err := utils.CheckDeps(cfg.Vsearch); err != nil {
		return err
	}

	resultsDir := cfg.ResumeDir
	if resultsDir == "" {
		var err error
		resultsDir, err = utils.CreateResultsDir(cfg.OutputDir)
		if err != nil {
			return err
		}
	} else {
		fmt.Printf("Resuming in results directory %s ..\n\n", resultsDir)
	}

	logger, logFile, err := utils.NewRunLogger(resultsDir)
	if err != nil {
		return err
	}
	defer logFile.Close()

	completed := completedStages(filepath.Join(resultsDir, "run.log"))
	logger.Info("AMPLICON PIPELINE", "STAGE", "INITIALISE", "SAMPLE", "ALL", "STATUS", "STARTED")

	// ========================================= Input discovery ============================================= //
	fmt.Printf("================================== Input Discovery ======================================\n\n")
	samples, err := reads.DiscoverSamples(cfg.InputDir)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d samples in %s\n\n", len(samples), cfg.InputDir)

	// ========================================= Primer validation =========================================== //
	fmt.Printf("================================== Primer Validation ====================================\n\n")
	primers, err := reads.ReadPrimerTable(cfg.Metadata)
	if err != nil {
		return err
	}
	fwdLen, revLen, err := reads.ValidatePrimerLengths(primers)
	if err != nil {
		logger.Error("AMPLICON PIPELINE", "STAGE", "PrimerValidation", "SAMPLE", "ALL", "STATUS", "FAILED", "error", err.Error())
		return fmt.Errorf("primer validation failed: %w", err)
	}
	fmt.Printf("Forward primer length: %d, reverse primer length: %d\n\n", fwdLen, revLen)

	// ========================================= Filter & Trim =============================================== //
	fmt.Printf("================================== Filter & Trim ========================================\n\n")
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
	filtDir := filepath.Join(resultsDir, "filtered")
	filterResults, err := reads.FilterTrimAll(samples, filtDir, params, cfg.Threads)
	if err != nil {
		return err
	}
	for _, r := range filterResults {
		fmt.Printf("%s: %d reads in, %d reads out\n", r.Sample, r.ReadsIn, r.ReadsOut)
	}
	fmt.Println()
	logger.Info("AMPLICON PIPELINE", "STAGE", "FilterTrim", "SAMPLE", "ALL", "STATUS", "COMPLETED")

	// ========================================= Merge pairs ================================================= //
	fmt.Printf("================================== Merging Pairs ========================================\n\n")
	runner := asv.Runner{Vsearch: cfg.Vsearch, Threads: cfg.Threads}
	mergedDir := filepath.Join(resultsDir, "merged")
	if err := os.MkdirAll(mergedDir, 0755); err != nil {
		return err
	}

	mergedPaths := make(map[string]string, len(samples))
	for _, s := range samples {
		merged := filepath.Join(mergedDir, s.Name+"_merged.fastq")
		mergedPaths[s.Name] = merged

		if _, done := completed[stageKey("MergePairs", s.Name)]; done {
			logger.Info("AMPLICON PIPELINE", "STAGE", "MergePairs", "SAMPLE", s.Name, "STATUS", "SKIPPED")
			continue
		}
		logger.Info("AMPLICON PIPELINE", "STAGE", "MergePairs", "SAMPLE", s.Name, "STATUS", "STARTED")
		if err := runner.MergePairs(s.FilteredForward, s.FilteredReverse, merged); err != nil {
			logger.Error("AMPLICON PIPELINE", "STAGE", "MergePairs", "SAMPLE", s.Name, "STATUS", "FAILED", "error", err.Error())
			return fmt.Errorf("merging %s: %w", s.Name, err)
		}
		logger.Info("AMPLICON PIPELINE", "STAGE", "MergePairs", "SAMPLE", s.Name, "STATUS", "COMPLETED")
	}

	// ========================================= Denoising =================================================== //
	fmt.Printf("================================== Denoising ============================================\n\n")
	pooled := filepath.Join(resultsDir, "pooled.fasta")
	mergedCounts, err := asv.PoolSamples(samples, mergedPaths, pooled)
	if err != nil {
		return err
	}

	derep := filepath.Join(resultsDir, "derep.fasta")
	centroids := filepath.Join(resultsDir, "centroids.fasta")
	nonchim := filepath.Join(resultsDir, "asvs.fasta")
	tablePath := filepath.Join(resultsDir, "feature_table.tsv")
	taxPath := filepath.Join(resultsDir, "taxonomy.tsv")

	if err := runner.Dereplicate(pooled, derep); err != nil {
		return err
	}
	if err := runner.Denoise(derep, centroids, cfg.MinSize, cfg.UnoiseAlpha); err != nil {
		return err
	}
	if err := runner.RemoveChimeras(centroids, nonchim); err != nil {
		return err
	}
	if err := runner.BuildFeatureTable(pooled, nonchim, tablePath); err != nil {
		return err
	}
	logger.Info("AMPLICON PIPELINE", "STAGE", "Denoise", "SAMPLE", "ALL", "STATUS", "COMPLETED")

	// ========================================= Taxonomy ==================================================== //
	fmt.Printf("================================== Taxonomy Assignment ==================================\n\n")
	if err := runner.AssignTaxonomy(nonchim, cfg.ReferenceDB, taxPath, cfg.SintaxCutoff); err != nil {
		return err
	}
	logger.Info("AMPLICON PIPELINE", "STAGE", "Taxonomy", "SAMPLE", "ALL", "STATUS", "COMPLETED")

	ft, err := asv.ParseFeatureTable(tablePath)
	if err != nil {
		return err
	}
	tt, err := asv.ParseTaxonomy(taxPath)
	if err != nil {
		return err
	}
	renames := asv.RenameVariants(ft, tt)
	if err := asv.WriteVariantsFasta(nonchim, filepath.Join(resultsDir, "asvs_renamed.fasta"), renames); err != nil {
		return err
	}

	// ========================================= Read tracking =============================================== //
	fmt.Printf("================================== Read Tracking ========================================\n\n")
	trackRows := make([]reads.TrackRow, 0, len(samples))
	for i, s := range samples {
		row := reads.TrackRow{
			Sample:   s.Name,
			Input:    filterResults[i].ReadsIn,
			Filtered: filterResults[i].ReadsOut,
			Merged:   mergedCounts[s.Name],
		}
		if si := ft.SampleIndex(s.Name); si >= 0 {
			row.NonChimeric = ft.SampleSum(si)
		}
		trackRows = append(trackRows, row)
	}
	if err := reads.ValidateTrack(trackRows); err != nil {
		return err
	}
	if err := reads.WriteTrackCSV(trackRows, filepath.Join(resultsDir, "read_tracking.csv")); err != nil {
		return err
	}
	reads.TrackSummary(trackRows)

	// ========================================= Ecology ===================================================== //
	fmt.Printf("================================== Community Analysis ===================================\n\n")
	meta := make(map[string]ecology.SampleMeta, len(samples))
	for _, s := range samples {
		meta[s.Name] = ecology.SampleMeta{Condition: s.Condition, Replicate: s.Replicate}
	}

	if err := Analyse(ft, tt, meta, resultsDir, cfg.FamilyA, cfg.FamilyB, cfg.ConditionA, cfg.ConditionB, cfg.RarefyDepth); err != nil {
		return err
	}

	logger.Info("AMPLICON PIPELINE", "STAGE", "FINALISE", "SAMPLE", "ALL", "STATUS", "COMPLETED")
	fmt.Printf("All results written to %s\n", resultsDir)
	return nil
}

// inferConditions picks the two condition labels from the metadata when the
// config does not set them. Anything other than exactly two distinct labels
// leaves the comparison unset.
func inferConditions(meta map[string]ecology.SampleMeta) (string, string) {
	seen := make(map[string]bool)
	var conds []string
	for _, m := range meta {
		if !seen[m.Condition] {
			seen[m.Condition] = true
			conds = append(conds, m.Condition)
		}
	}
	if len(conds) == 2 {
		sort.Strings(conds)
		return conds[0], conds[1]
	}
	return "", ""
}

// Analyse runs the downstream community analysis and writes every export into
// resultsDir. It is shared by the full pipeline and the ecology subcommand.
func Analyse(ft *asv.FeatureTable, tt *asv.TaxonomyTable, meta map[string]ecology.SampleMeta, resultsDir, familyA, familyB, condA, condB string, rarefyDepth int) error {
	if condA == "" || condB == "" {
		condA, condB = inferConditions(meta)
	}
	exp, err := ecology.NewExperiment(ft, tt, meta)
	if err != nil {
		return err
	}

	if err := ft.WriteCSV(filepath.Join(resultsDir, "feature_table.csv")); err != nil {
		return err
	}
	if err := ecology.WriteTaxonomyCSV(exp, filepath.Join(resultsDir, "taxonomy.csv")); err != nil {
		return err
	}

	analysisExp := exp
	if rarefyDepth > 0 {
		fmt.Printf("Rarefying to %d reads per sample ...\n\n", rarefyDepth)
		rarefied, err := ecology.RarefyEvenDepth(ft, rarefyDepth, 1)
		if err != nil {
			return err
		}
		analysisExp, err = ecology.NewExperiment(rarefied, tt, meta)
		if err != nil {
			return err
		}
	}

	divRows := ecology.Diversity(analysisExp)
	if err := ecology.WriteDiversityCSV(divRows, filepath.Join(resultsDir, "diversity.csv")); err != nil {
		return err
	}

	if condA != "" && condB != "" {
		res, err := ecology.CompareConditions(divRows, condA, condB, 10000, 1)
		if err != nil {
			fmt.Printf("Skipping condition comparison: %s\n\n", err)
		} else {
			fmt.Printf("Shannon %s vs %s: t = %.3f, p = %.4f (permutation p = %.4f)\n\n",
				condA, condB, res.TStatistic, res.PValue, res.PermutationP)
			if err := ecology.WriteComparison(res, filepath.Join(resultsDir, "condition_comparison.txt")); err != nil {
				return err
			}
		}
	} else {
		fmt.Printf("No condition pair configured; skipping the two-condition comparison.\n\n")
	}

	ratioRows := ecology.FamilyRatios(exp, familyA, familyB)
	if err := ecology.WriteRatioCSV(ratioRows, filepath.Join(resultsDir, "family_ratios.csv")); err != nil {
		return err
	}

	ord, ordErr := ecology.PCoA(analysisExp.Features.Samples, ecology.BrayCurtis(analysisExp.Features))
	if ordErr != nil {
		fmt.Printf("Skipping ordination: %s\n\n", ordErr)
		ord = ecology.Ordination{}
	} else {
		if err := ecology.WriteOrdinationCSV(ord, meta, filepath.Join(resultsDir, "ordination.csv")); err != nil {
			return err
		}
		if err := ecology.WriteOrdinationPNG(ord, meta, filepath.Join(resultsDir, "ordination.png")); err != nil {
			return err
		}
	}

	reportPath := filepath.Join(resultsDir, "community_report.html")
	if err := ecology.WriteReport(exp, ord, divRows, ratioRows, familyA, familyB, reportPath); err != nil {
		return err
	}
	fmt.Printf("Community report saved at: %s\n\n", reportPath)
	return nil
}
