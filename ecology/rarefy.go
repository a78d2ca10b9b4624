package ecology

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/gmaffy/amplicon-whisperer/asv"
)

// RarefyEvenDepth subsamples every sample without replacement down to depth
// reads, so diversity comparisons are not confounded by sequencing effort.
// Samples with fewer than depth reads are dropped, with a narration of which.
func RarefyEvenDepth(ft *asv.FeatureTable, depth int, seed uint64) (*asv.FeatureTable, error) {
	if depth <= 0 {
		return nil, fmt.Errorf("rarefaction depth must be positive, got %d", depth)
	}

	rng := rand.New(rand.NewSource(seed))
	out := &asv.FeatureTable{Variants: ft.Variants}

	for i, sample := range ft.Samples {
		total := ft.SampleSum(i)
		if total < depth {
			fmt.Printf("Dropping sample %s: %d reads is below the rarefaction depth %d\n", sample, total, depth)
			continue
		}

		row := make([]int, len(ft.Variants))
		if total == depth {
			copy(row, ft.Counts[i])
		} else {
			// Draw depth reads without replacement from the sample's pool,
			// decrementing the remaining counts as we go.
			remaining := make([]int, len(ft.Variants))
			copy(remaining, ft.Counts[i])
			left := total
			for n := 0; n < depth; n++ {
				pick := rng.Intn(left)
				for j, c := range remaining {
					if pick < c {
						remaining[j]--
						row[j]++
						break
					}
					pick -= c
				}
				left--
			}
		}

		out.Samples = append(out.Samples, sample)
		out.Counts = append(out.Counts, row)
	}

	if len(out.Samples) == 0 {
		return nil, fmt.Errorf("no samples reach the rarefaction depth %d", depth)
	}
	return out, nil
}
