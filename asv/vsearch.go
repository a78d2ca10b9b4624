// Package asv drives the denoising stages of the pipeline. The algorithmic
// work (pair merging, dereplication, denoising, chimera detection, taxonomy
// classification) is delegated to vsearch; this package builds the commands,
// runs them and parses their tabular outputs.
package asv

import (
	"fmt"
	"time"

	"github.com/gmaffy/amplicon-whisperer/utils"
)

// Runner holds the external tool configuration shared by all delegated stages.
type Runner struct {
	Vsearch string
	Threads int
}

func (r Runner) bin() string {
	if r.Vsearch == "" {
		return "vsearch"
	}
	return r.Vsearch
}

func (r Runner) run(cmdStr string) error {
	fmt.Println(cmdStr)
	start := time.Now()
	if err := utils.RunBashCmdVerbose(cmdStr); err != nil {
		return err
	}
	fmt.Printf("Took %s\n\n", time.Since(start))
	return nil
}

// MergePairsCmd is split out from MergePairs so the command line can be
// inspected without a vsearch install.
func (r Runner) MergePairsCmd(fwd, rev, out string) string {
	return fmt.Sprintf(`%s --fastq_mergepairs %s --reverse %s --fastqout %s --fastq_allowmergestagger --threads %d`,
		r.bin(), fwd, rev, out, r.Threads)
}

// MergePairs overlaps one sample's filtered read pair into merged reads.
func (r Runner) MergePairs(fwd, rev, out string) error {
	return r.run(r.MergePairsCmd(fwd, rev, out))
}

func (r Runner) DereplicateCmd(pooled, derep string) string {
	return fmt.Sprintf(`%s --derep_fulllength %s --output %s --sizeout --relabel Uniq --threads %d`,
		r.bin(), pooled, derep, r.Threads)
}

// Dereplicate collapses the pooled reads to unique sequences with size
// annotations.
func (r Runner) Dereplicate(pooled, derep string) error {
	return r.run(r.DereplicateCmd(pooled, derep))
}

func (r Runner) DenoiseCmd(derep, centroids string, minSize int, alpha float64) string {
	return fmt.Sprintf(`%s --cluster_unoise %s --centroids %s --minsize %d --unoise_alpha %g --threads %d`,
		r.bin(), derep, centroids, minSize, alpha, r.Threads)
}

// Denoise infers sequence variants from the dereplicated reads. The
// error-model learning happens inside vsearch.
func (r Runner) Denoise(derep, centroids string, minSize int, alpha float64) error {
	return r.run(r.DenoiseCmd(derep, centroids, minSize, alpha))
}

func (r Runner) RemoveChimerasCmd(centroids, nonchim string) string {
	return fmt.Sprintf(`%s --uchime3_denovo %s --nonchimeras %s --threads %d`,
		r.bin(), centroids, nonchim, r.Threads)
}

// RemoveChimeras drops de novo chimeras from the inferred variants.
func (r Runner) RemoveChimeras(centroids, nonchim string) error {
	return r.run(r.RemoveChimerasCmd(centroids, nonchim))
}

func (r Runner) BuildFeatureTableCmd(pooled, nonchim, table string) string {
	return fmt.Sprintf(`%s --usearch_global %s --db %s --id 0.97 --otutabout %s --threads %d`,
		r.bin(), pooled, nonchim, table, r.Threads)
}

// BuildFeatureTable maps the pooled reads back onto the non-chimeric variants
// and writes the sample-by-variant count table.
func (r Runner) BuildFeatureTable(pooled, nonchim, table string) error {
	return r.run(r.BuildFeatureTableCmd(pooled, nonchim, table))
}

func (r Runner) AssignTaxonomyCmd(nonchim, refDB, out string, cutoff float64) string {
	return fmt.Sprintf(`%s --sintax %s --db %s --tabbedout %s --sintax_cutoff %g --strand both --threads %d`,
		r.bin(), nonchim, refDB, out, cutoff, r.Threads)
}

// AssignTaxonomy classifies the variants against the reference database.
func (r Runner) AssignTaxonomy(nonchim, refDB, out string, cutoff float64) error {
	return r.run(r.AssignTaxonomyCmd(nonchim, refDB, out, cutoff))
}
