package reads

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
)

// QualityProfile is the per-position mean Phred score of the first Count
// reads of a file. It is what the operator looks at to pick truncation
// lengths before filtering.
type QualityProfile struct {
	File  string
	Count int
	MeanQ []float64
}

// QualityProfileFile aggregates quality scores over at most maxReads reads
// (all reads when maxReads <= 0).
func QualityProfileFile(path string, maxReads int) (QualityProfile, error) {
	prof := QualityProfile{File: filepath.Base(path)}

	r, closer, err := OpenMaybeGzip(path)
	if err != nil {
		return prof, err
	}
	defer closer()

	var sums []float64
	var counts []int

	sc := seqio.NewScanner(fastq.NewReader(r, linear.NewQSeq("", nil, alphabet.DNAredundant, alphabet.Sanger)))
	for sc.Next() {
		s := sc.Seq().(*linear.QSeq)
		for i, ql := range s.Seq {
			if i >= len(sums) {
				sums = append(sums, 0)
				counts = append(counts, 0)
			}
			sums[i] += float64(ql.Q)
			counts[i]++
		}
		prof.Count++
		if maxReads > 0 && prof.Count >= maxReads {
			break
		}
	}
	if err := sc.Error(); err != nil {
		return prof, err
	}
	if prof.Count == 0 {
		return prof, fmt.Errorf("no reads in %s", path)
	}

	prof.MeanQ = make([]float64, len(sums))
	for i := range sums {
		prof.MeanQ[i] = sums[i] / float64(counts[i])
	}
	return prof, nil
}

func qualityLineChart(prof QualityProfile) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: prof.File, Subtitle: fmt.Sprintf("mean quality over %d reads", prof.Count)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Phred score"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Cycle"}),
	)

	x := make([]int, len(prof.MeanQ))
	var yData []opts.LineData
	for i, q := range prof.MeanQ {
		x[i] = i + 1
		yData = append(yData, opts.LineData{Value: q})
	}
	smooth := true
	line.SetXAxis(x).AddSeries("mean Q", yData).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: &smooth}))
	return line
}

// PlotQualityProfiles renders all profiles onto one HTML page.
func PlotQualityProfiles(profiles []QualityProfile, outputHTML string) error {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)
	for _, prof := range profiles {
		page.AddCharts(qualityLineChart(prof))
	}

	f, err := os.Create(outputHTML)
	if err != nil {
		return err
	}
	defer f.Close()
	return page.Render(f)
}

// WriteQualityPNG writes a single profile as a PNG image next to the HTML
// report, for notebooks and slide decks that cannot embed the HTML page.
func WriteQualityPNG(prof QualityProfile, outputPNG string) error {
	p := plot.New()
	p.Title.Text = prof.File
	p.X.Label.Text = "Cycle"
	p.Y.Label.Text = "Phred score"

	pts := make(plotter.XYs, len(prof.MeanQ))
	for i, q := range prof.MeanQ {
		pts[i].X = float64(i + 1)
		pts[i].Y = q
	}
	l, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(l)
	p.Y.Min = 0

	return p.Save(7*vg.Inch, 4*vg.Inch, outputPNG)
}

// QualityProfileDir profiles every FASTQ file in dir and writes the HTML page
// plus one PNG per file into outDir.
func QualityProfileDir(dir, outDir string, maxReads int) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.fastq.gz"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no *.fastq.gz files found in %s", dir)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	var profiles []QualityProfile
	for _, f := range files {
		fmt.Printf("Profiling %s ...\n", filepath.Base(f))
		prof, err := QualityProfileFile(f, maxReads)
		if err != nil {
			return err
		}
		profiles = append(profiles, prof)

		pngName := strings.TrimSuffix(filepath.Base(f), ".fastq.gz") + "_quality.png"
		if err := WriteQualityPNG(prof, filepath.Join(outDir, pngName)); err != nil {
			return err
		}
	}

	htmlPath := filepath.Join(outDir, "quality_profiles.html")
	if err := PlotQualityProfiles(profiles, htmlPath); err != nil {
		return err
	}
	fmt.Printf("Quality profiles saved at: %s\n\n", htmlPath)
	return nil
}
