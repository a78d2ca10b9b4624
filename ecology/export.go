package ecology

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/gocarina/gocsv"
)

// TaxonomyRow is the CSV shape of one variant's classification.
type TaxonomyRow struct {
	Variant string `csv:"variant"`
	Domain  string `csv:"domain"`
	Phylum  string `csv:"phylum"`
	Class   string `csv:"class"`
	Order   string `csv:"order"`
	Family  string `csv:"family"`
	Genus   string `csv:"genus"`
	Species string `csv:"species"`
}

// WriteDiversityCSV exports the per-sample diversity indices.
func WriteDiversityCSV(rows []DiversityRow, path string) error {
	return marshalCSV(&rows, path)
}

// WriteRatioCSV exports the family ratio table.
func WriteRatioCSV(rows []RatioRow, path string) error {
	return marshalCSV(&rows, path)
}

// WriteTaxonomyCSV exports one row per feature-table variant, in table order.
func WriteTaxonomyCSV(e *Experiment, path string) error {
	rows := make([]TaxonomyRow, 0, len(e.Features.Variants))
	for _, v := range e.Features.Variants {
		t := e.Taxonomy.Assignments[v]
		rows = append(rows, TaxonomyRow{
			Variant: v,
			Domain:  t.Domain,
			Phylum:  t.Phylum,
			Class:   t.Class,
			Order:   t.Order,
			Family:  t.Family,
			Genus:   t.Genus,
			Species: t.Species,
		})
	}
	return marshalCSV(&rows, path)
}

func marshalCSV(rows interface{}, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.Marshal(rows, f)
}

// WriteComparison appends the condition comparison to a plain-text summary.
func WriteComparison(res ComparisonResult, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "Shannon diversity: %s (n=%d, mean %.3f) vs %s (n=%d, mean %.3f)\nWelch t = %.3f, df = %.1f, p = %.4f\nPermutation p = %.4f\n",
		res.ConditionA, res.NA, res.MeanA, res.ConditionB, res.NB, res.MeanB,
		res.TStatistic, res.DF, res.PValue, res.PermutationP)
	return err
}

func diversityChart(rows []DiversityRow) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "Shannon diversity"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Shannon index"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Sample"}),
	)

	var samples []string
	var data []opts.BarData
	for _, r := range rows {
		samples = append(samples, r.Sample)
		data = append(data, opts.BarData{Value: r.Shannon})
	}
	bar.SetXAxis(samples).AddSeries("Shannon", data)
	return bar
}

func ratioChart(rows []RatioRow, familyA, familyB string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s / %s / other", familyA, familyB)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Proportion"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Sample"}),
	)

	var samples []string
	var a, b, other []opts.BarData
	for _, r := range rows {
		samples = append(samples, r.Sample)
		a = append(a, opts.BarData{Value: r.FamilyAProp})
		b = append(b, opts.BarData{Value: r.FamilyBProp})
		other = append(other, opts.BarData{Value: r.OtherProp})
	}
	bar.SetXAxis(samples).
		AddSeries(familyA, a, charts.WithBarChartOpts(opts.BarChart{Stack: "total"})).
		AddSeries(familyB, b, charts.WithBarChartOpts(opts.BarChart{Stack: "total"})).
		AddSeries("other", other, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
	return bar
}

// WriteReport renders the community analysis charts onto one HTML page.
func WriteReport(e *Experiment, ord Ordination, divRows []DiversityRow, ratioRows []RatioRow, familyA, familyB, outputHTML string) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(
		TaxonomyBarChart(e, "family", 12),
		OrdinationChart(ord, e.Meta),
		diversityChart(divRows),
		ratioChart(ratioRows, familyA, familyB),
	)

	f, err := os.Create(outputHTML)
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(f)
}
