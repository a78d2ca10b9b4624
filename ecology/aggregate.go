package ecology

import (
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const unclassified = "Unclassified"

// AggregateByRank collapses the feature table to relative abundances at one
// taxonomic rank. Variants with no assignment at that rank pool into
// "Unclassified". Returns the taxon list (descending overall abundance) and
// the per-sample proportions keyed by taxon.
func AggregateByRank(e *Experiment, rank string) ([]string, map[string][]float64) {
	taxonOf := make([]string, len(e.Features.Variants))
	for j, v := range e.Features.Variants {
		name := e.Taxonomy.Assignments[v].Rank(rank)
		if name == "" {
			name = unclassified
		}
		taxonOf[j] = name
	}

	props := make(map[string][]float64)
	totals := make(map[string]float64)
	for i := range e.Features.Samples {
		sampleTotal := e.Features.SampleSum(i)
		for j, c := range e.Features.Counts[i] {
			if c == 0 {
				continue
			}
			taxon := taxonOf[j]
			if _, ok := props[taxon]; !ok {
				props[taxon] = make([]float64, len(e.Features.Samples))
			}
			p := float64(c) / float64(sampleTotal)
			props[taxon][i] += p
			totals[taxon] += p
		}
	}

	taxa := make([]string, 0, len(props))
	for taxon := range props {
		taxa = append(taxa, taxon)
	}
	sort.Slice(taxa, func(i, j int) bool {
		if totals[taxa[i]] != totals[taxa[j]] {
			return totals[taxa[i]] > totals[taxa[j]]
		}
		return taxa[i] < taxa[j]
	})

	return taxa, props
}

// TopTaxa keeps the n most abundant taxa and pools the remainder into
// "Other".
func TopTaxa(taxa []string, props map[string][]float64, n int) ([]string, map[string][]float64) {
	if len(taxa) <= n {
		return taxa, props
	}

	kept := make([]string, n, n+1)
	copy(kept, taxa[:n])
	out := make(map[string][]float64, n+1)
	for _, taxon := range kept {
		out[taxon] = props[taxon]
	}

	var other []float64
	for _, taxon := range taxa[n:] {
		vals := props[taxon]
		if other == nil {
			other = make([]float64, len(vals))
		}
		for i, v := range vals {
			other[i] += v
		}
	}
	kept = append(kept, "Other")
	out["Other"] = other
	return kept, out
}

// TaxonomyBarChart renders the stacked relative-abundance bars at one rank.
func TaxonomyBarChart(e *Experiment, rank string, topN int) *charts.Bar {
	taxa, props := AggregateByRank(e, rank)
	taxa, props = TopTaxa(taxa, props, topN)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "Relative abundance by " + rank}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Proportion"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Sample"}),
	)

	bar.SetXAxis(e.Features.Samples)
	for _, taxon := range taxa {
		var data []opts.BarData
		for _, v := range props[taxon] {
			data = append(data, opts.BarData{Value: v})
		}
		bar.AddSeries(taxon, data, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
	}
	return bar
}
