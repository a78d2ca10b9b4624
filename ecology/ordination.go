package ecology

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/gmaffy/amplicon-whisperer/asv"
)

// BrayCurtis computes the pairwise Bray-Curtis dissimilarity matrix over the
// feature table's samples. Two empty samples have dissimilarity zero.
func BrayCurtis(ft *asv.FeatureTable) [][]float64 {
	n := len(ft.Samples)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			minSum := 0
			totSum := 0
			for k := range ft.Variants {
				a := ft.Counts[i][k]
				b := ft.Counts[j][k]
				if a < b {
					minSum += a
				} else {
					minSum += b
				}
				totSum += a + b
			}
			dij := 0.0
			if totSum > 0 {
				dij = 1 - 2*float64(minSum)/float64(totSum)
			}
			d[i][j] = dij
			d[j][i] = dij
		}
	}
	return d
}

// Ordination is the first two principal-coordinate axes of a dissimilarity
// matrix, with the fraction of positive eigenvalue mass each axis explains.
type Ordination struct {
	Samples    []string
	X          []float64
	Y          []float64
	ExplainedX float64
	ExplainedY float64
}

// PCoA runs classical metric multidimensional scaling: Gower double-centering
// of the squared dissimilarities followed by an eigendecomposition, which is
// left to gonum.
func PCoA(samples []string, dist [][]float64) (Ordination, error) {
	n := len(dist)
	ord := Ordination{Samples: samples}
	if n < 3 {
		return ord, fmt.Errorf("ordination needs at least 3 samples, got %d", n)
	}
	if len(samples) != n {
		return ord, fmt.Errorf("have %d sample names for a %d x %d matrix", len(samples), n, n)
	}

	d2 := make([][]float64, n)
	rowMean := make([]float64, n)
	grand := 0.0
	for i := range dist {
		d2[i] = make([]float64, n)
		for j := range dist[i] {
			v := dist[i][j] * dist[i][j]
			d2[i][j] = v
			rowMean[i] += v
			grand += v
		}
		rowMean[i] /= float64(n)
	}
	grand /= float64(n * n)

	b := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			b.SetSym(i, j, -0.5*(d2[i][j]-rowMean[i]-rowMean[j]+grand))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(b, true); !ok {
		return ord, fmt.Errorf("eigendecomposition failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// gonum returns eigenvalues in ascending order; the two largest are the
	// first two axes.
	i1 := n - 1
	i2 := n - 2
	if vals[i1] <= 0 {
		return ord, fmt.Errorf("no positive eigenvalues; the samples may be identical")
	}

	positive := 0.0
	for _, v := range vals {
		if v > 0 {
			positive += v
		}
	}

	ord.X = make([]float64, n)
	ord.Y = make([]float64, n)
	s1 := math.Sqrt(vals[i1])
	s2 := 0.0
	if vals[i2] > 0 {
		s2 = math.Sqrt(vals[i2])
	}
	for i := 0; i < n; i++ {
		ord.X[i] = vecs.At(i, i1) * s1
		ord.Y[i] = vecs.At(i, i2) * s2
	}
	ord.ExplainedX = vals[i1] / positive
	if vals[i2] > 0 {
		ord.ExplainedY = vals[i2] / positive
	}
	return ord, nil
}

// OrdinationChart renders the ordination as a scatter, one series per
// condition.
func OrdinationChart(ord Ordination, meta map[string]SampleMeta) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: "PCoA (Bray-Curtis)"}),
		charts.WithXAxisOpts(opts.XAxis{Name: fmt.Sprintf("Axis 1 (%.1f%%)", ord.ExplainedX*100)}),
		charts.WithYAxisOpts(opts.YAxis{Name: fmt.Sprintf("Axis 2 (%.1f%%)", ord.ExplainedY*100)}),
	)

	byCondition := make(map[string][]opts.ScatterData)
	for i, sample := range ord.Samples {
		cond := meta[sample].Condition
		byCondition[cond] = append(byCondition[cond], opts.ScatterData{
			Name:  sample,
			Value: []interface{}{ord.X[i], ord.Y[i]},
		})
	}

	conds := make([]string, 0, len(byCondition))
	for cond := range byCondition {
		conds = append(conds, cond)
	}
	sort.Strings(conds)
	for _, cond := range conds {
		scatter.AddSeries(cond, byCondition[cond])
	}
	return scatter
}

// WriteOrdinationPNG writes the ordination scatter as a PNG, colored by
// condition.
func WriteOrdinationPNG(ord Ordination, meta map[string]SampleMeta, outputPNG string) error {
	p := plot.New()
	p.Title.Text = "PCoA (Bray-Curtis)"
	p.X.Label.Text = fmt.Sprintf("Axis 1 (%.1f%%)", ord.ExplainedX*100)
	p.Y.Label.Text = fmt.Sprintf("Axis 2 (%.1f%%)", ord.ExplainedY*100)

	byCondition := make(map[string]plotter.XYs)
	for i, sample := range ord.Samples {
		cond := meta[sample].Condition
		byCondition[cond] = append(byCondition[cond], plotter.XY{X: ord.X[i], Y: ord.Y[i]})
	}

	conds := make([]string, 0, len(byCondition))
	for cond := range byCondition {
		conds = append(conds, cond)
	}
	sort.Strings(conds)

	for i, cond := range conds {
		s, err := plotter.NewScatter(byCondition[cond])
		if err != nil {
			return err
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Radius = vg.Points(4)
		p.Add(s)
		p.Legend.Add(cond, s)
	}

	return p.Save(6*vg.Inch, 5*vg.Inch, outputPNG)
}

// WriteOrdinationCSV exports the sample coordinates.
func WriteOrdinationCSV(ord Ordination, meta map[string]SampleMeta, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "sample,condition,axis1,axis2\n"); err != nil {
		return err
	}
	for i, sample := range ord.Samples {
		if _, err := fmt.Fprintf(f, "%s,%s,%.6f,%.6f\n", sample, meta[sample].Condition, ord.X[i], ord.Y[i]); err != nil {
			return err
		}
	}
	return nil
}
