// Package ecology holds the downstream community analysis: the combined
// experiment object, diversity indices, ordination, taxonomic aggregation,
// the family ratio metric, and the CSV/plot exports.
package ecology

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gmaffy/amplicon-whisperer/asv"
)

type SampleMeta struct {
	Condition string
	Replicate string
}

// Experiment aggregates the feature table, the taxonomy table and the
// per-sample metadata. Construction enforces referential integrity between
// the three.
type Experiment struct {
	Features *asv.FeatureTable
	Taxonomy *asv.TaxonomyTable
	Meta     map[string]SampleMeta
}

// NewExperiment validates that every feature-table variant has a taxonomy
// assignment and every sample has metadata.
func NewExperiment(ft *asv.FeatureTable, tt *asv.TaxonomyTable, meta map[string]SampleMeta) (*Experiment, error) {
	var missingTax []string
	for _, v := range ft.Variants {
		if _, ok := tt.Assignments[v]; !ok {
			missingTax = append(missingTax, v)
		}
	}
	if len(missingTax) > 0 {
		sort.Strings(missingTax)
		if len(missingTax) > 5 {
			missingTax = append(missingTax[:5], fmt.Sprintf("and %d more", len(missingTax)-5))
		}
		return nil, fmt.Errorf("variants without taxonomy assignments: %s", strings.Join(missingTax, ", "))
	}

	var missingMeta []string
	for _, s := range ft.Samples {
		if _, ok := meta[s]; !ok {
			missingMeta = append(missingMeta, s)
		}
	}
	if len(missingMeta) > 0 {
		sort.Strings(missingMeta)
		return nil, fmt.Errorf("samples without metadata: %s", strings.Join(missingMeta, ", "))
	}

	return &Experiment{Features: ft, Taxonomy: tt, Meta: meta}, nil
}

// Condition returns the condition label of a sample.
func (e *Experiment) Condition(sample string) string {
	return e.Meta[sample].Condition
}
