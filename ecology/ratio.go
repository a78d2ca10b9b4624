package ecology

import (
	"math"
)

// RatioRow is the per-sample abundance breakdown over two focal taxonomic
// families plus everything else, and the ratio of the two family proportions.
//
// Division semantics are IEEE on purpose: a sample with zero total abundance
// yields NaN proportions and a NaN ratio; family A present with family B
// absent yields +Inf; both absent yields NaN. Nothing here panics.
type RatioRow struct {
	Sample       string  `csv:"sample"`
	Condition    string  `csv:"condition"`
	FamilyACount int     `csv:"family_a_count"`
	FamilyBCount int     `csv:"family_b_count"`
	OtherCount   int     `csv:"other_count"`
	FamilyAProp  float64 `csv:"family_a_prop"`
	FamilyBProp  float64 `csv:"family_b_prop"`
	OtherProp    float64 `csv:"other_prop"`
	Ratio        float64 `csv:"ratio"`
}

// FamilyRatios computes the per-sample totals and proportions for the two
// named families. For every sample with nonzero total the three proportions
// sum to 1.
func FamilyRatios(e *Experiment, familyA, familyB string) []RatioRow {
	famOf := make([]string, len(e.Features.Variants))
	for j, v := range e.Features.Variants {
		famOf[j] = e.Taxonomy.Assignments[v].Family
	}

	rows := make([]RatioRow, 0, len(e.Features.Samples))
	for i, sample := range e.Features.Samples {
		row := RatioRow{Sample: sample, Condition: e.Condition(sample)}
		for j, c := range e.Features.Counts[i] {
			switch famOf[j] {
			case familyA:
				row.FamilyACount += c
			case familyB:
				row.FamilyBCount += c
			default:
				row.OtherCount += c
			}
		}

		total := row.FamilyACount + row.FamilyBCount + row.OtherCount
		if total == 0 {
			row.FamilyAProp = math.NaN()
			row.FamilyBProp = math.NaN()
			row.OtherProp = math.NaN()
			row.Ratio = math.NaN()
		} else {
			row.FamilyAProp = float64(row.FamilyACount) / float64(total)
			row.FamilyBProp = float64(row.FamilyBCount) / float64(total)
			row.OtherProp = float64(row.OtherCount) / float64(total)
			row.Ratio = row.FamilyAProp / row.FamilyBProp
		}
		rows = append(rows, row)
	}
	return rows
}
