package asv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FeatureTable is the sample-by-variant abundance table: one row per sample,
// one column per sequence variant, every cell a non-negative count.
type FeatureTable struct {
	Samples  []string
	Variants []string
	Counts   [][]int
}

// ParseFeatureTable reads a vsearch --otutabout table (variants as rows,
// samples as columns) and transposes it into sample-major form.
func ParseFeatureTable(path string) (*FeatureTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = '\t'
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("feature table %s has no variant rows", path)
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("feature table %s has no sample columns", path)
	}
	samples := header[1:]

	ft := &FeatureTable{
		Samples: samples,
		Counts:  make([][]int, len(samples)),
	}
	for i := range ft.Counts {
		ft.Counts[i] = make([]int, 0, len(records)-1)
	}

	for _, row := range records[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("feature table %s: row %s has %d columns, want %d", path, row[0], len(row), len(header))
		}
		ft.Variants = append(ft.Variants, TrimLabel(row[0]))
		for i, cell := range row[1:] {
			count, err := strconv.Atoi(strings.TrimSpace(cell))
			if err != nil {
				return nil, fmt.Errorf("feature table %s: bad count %q for variant %s", path, cell, row[0])
			}
			if count < 0 {
				return nil, fmt.Errorf("feature table %s: negative count for variant %s in sample %s", path, row[0], samples[i])
			}
			ft.Counts[i] = append(ft.Counts[i], count)
		}
	}

	return ft, nil
}

// SampleIndex returns the row index of a sample, or -1.
func (ft *FeatureTable) SampleIndex(sample string) int {
	for i, s := range ft.Samples {
		if s == sample {
			return i
		}
	}
	return -1
}

// SampleSum is the total abundance of one sample row.
func (ft *FeatureTable) SampleSum(i int) int {
	total := 0
	for _, c := range ft.Counts[i] {
		total += c
	}
	return total
}

// VariantSum is the total abundance of one variant column.
func (ft *FeatureTable) VariantSum(j int) int {
	total := 0
	for i := range ft.Counts {
		total += ft.Counts[i][j]
	}
	return total
}

// RelativeAbundance returns the row-normalised table. Zero-total samples get
// all-zero rows.
func (ft *FeatureTable) RelativeAbundance() [][]float64 {
	rel := make([][]float64, len(ft.Samples))
	for i := range ft.Counts {
		rel[i] = make([]float64, len(ft.Variants))
		total := ft.SampleSum(i)
		if total == 0 {
			continue
		}
		for j, c := range ft.Counts[i] {
			rel[i][j] = float64(c) / float64(total)
		}
	}
	return rel
}

// SubsetSamples returns a table restricted to the named samples, in the given
// order.
func (ft *FeatureTable) SubsetSamples(keep []string) (*FeatureTable, error) {
	sub := &FeatureTable{Variants: ft.Variants}
	for _, name := range keep {
		i := ft.SampleIndex(name)
		if i < 0 {
			return nil, fmt.Errorf("sample %s not in feature table", name)
		}
		sub.Samples = append(sub.Samples, name)
		row := make([]int, len(ft.Variants))
		copy(row, ft.Counts[i])
		sub.Counts = append(sub.Counts, row)
	}
	return sub, nil
}

// WriteCSV writes the table in sample-major orientation for downstream
// visualization tooling.
func (ft *FeatureTable) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := append([]string{"sample"}, ft.Variants...)
	if err := writer.Write(header); err != nil {
		return err
	}
	for i, sample := range ft.Samples {
		row := make([]string, 0, len(ft.Variants)+1)
		row = append(row, sample)
		for _, c := range ft.Counts[i] {
			row = append(row, strconv.Itoa(c))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return writer.Error()
}
