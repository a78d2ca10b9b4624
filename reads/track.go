package reads

import (
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/montanaflynn/stats"
)

// TrackRow is one sample's surviving read count at each pipeline stage.
// Counts must be non-increasing left to right.
type TrackRow struct {
	Sample      string `dataframe:"sample"`
	Input       int    `dataframe:"input"`
	Filtered    int    `dataframe:"filtered"`
	Merged      int    `dataframe:"merged"`
	NonChimeric int    `dataframe:"non_chimeric"`
}

// ValidateTrack checks the non-increasing invariant and names the first
// offending sample and stage transition.
func ValidateTrack(rows []TrackRow) error {
	for _, r := range rows {
		stages := []struct {
			name  string
			count int
		}{
			{"input", r.Input},
			{"filtered", r.Filtered},
			{"merged", r.Merged},
			{"non_chimeric", r.NonChimeric},
		}
		for i := 1; i < len(stages); i++ {
			if stages[i].count > stages[i-1].count {
				return fmt.Errorf("sample %s: %s count %d exceeds %s count %d",
					r.Sample, stages[i].name, stages[i].count, stages[i-1].name, stages[i-1].count)
			}
		}
	}
	return nil
}

// BuildTrackTable joins the per-stage counts into one dataframe indexed by
// sample, for human review of where reads were lost.
func BuildTrackTable(rows []TrackRow) dataframe.DataFrame {
	return dataframe.LoadStructs(rows)
}

// WriteTrackCSV writes the track table for downstream visualization tooling.
func WriteTrackCSV(rows []TrackRow, path string) error {
	df := BuildTrackTable(rows)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return df.WriteCSV(f)
}

// TrackSummary prints the overall retention of the run: mean and median
// fraction of input reads surviving to the final stage.
func TrackSummary(rows []TrackRow) {
	var retained []float64
	for _, r := range rows {
		if r.Input == 0 {
			continue
		}
		retained = append(retained, float64(r.NonChimeric)/float64(r.Input))
	}
	if len(retained) == 0 {
		fmt.Println("No reads tracked.")
		return
	}

	mean, _ := stats.Mean(retained)
	median, _ := stats.Median(retained)
	min, _ := stats.Min(retained)
	fmt.Printf("Read retention across %d samples: mean %.1f%%, median %.1f%%, worst %.1f%%\n\n",
		len(retained), mean*100, median*100, min*100)
}
