package reads

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strings"
)

// PrimerSet is the per-sample primer pair from the metadata table.
type PrimerSet struct {
	Sample  string
	Forward string
	Reverse string
}

// ReadPrimerTable reads a tab-separated metadata file with sample,
// forward_primer and reverse_primer columns.
func ReadPrimerTable(path string) ([]PrimerSet, error) {
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
		return nil, fmt.Errorf("metadata file %s has no sample rows", path)
	}

	header := records[0]
	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range []string{"sample", "forward_primer", "reverse_primer"} {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("required column %s not found in %s", col, path)
		}
	}

	var sets []PrimerSet
	for _, row := range records[1:] {
		sets = append(sets, PrimerSet{
			Sample:  strings.TrimSpace(row[colIndex["sample"]]),
			Forward: strings.ToUpper(strings.TrimSpace(row[colIndex["forward_primer"]])),
			Reverse: strings.ToUpper(strings.TrimSpace(row[colIndex["reverse_primer"]])),
		})
	}
	return sets, nil
}

// ValidatePrimerLengths confirms that all forward primers share one length and
// all reverse primers share one length, and returns the two lengths. A mixed
// primer set would make the trim offsets wrong for some samples, so any
// inconsistency is an error that names the divergent samples.
func ValidatePrimerLengths(sets []PrimerSet) (fwdLen, revLen int, err error) {
	if len(sets) == 0 {
		return 0, 0, fmt.Errorf("no primer records to validate")
	}

	fwdByLen := make(map[int][]string)
	revByLen := make(map[int][]string)
	for _, s := range sets {
		fwdByLen[len(s.Forward)] = append(fwdByLen[len(s.Forward)], s.Sample)
		revByLen[len(s.Reverse)] = append(revByLen[len(s.Reverse)], s.Sample)
	}

	if len(fwdByLen) > 1 {
		return 0, 0, fmt.Errorf("inconsistent forward primer lengths: %s", describeLengths(fwdByLen))
	}
	if len(revByLen) > 1 {
		return 0, 0, fmt.Errorf("inconsistent reverse primer lengths: %s", describeLengths(revByLen))
	}

	for l := range fwdByLen {
		fwdLen = l
	}
	for l := range revByLen {
		revLen = l
	}
	return fwdLen, revLen, nil
}

func describeLengths(byLen map[int][]string) string {
	lengths := make([]int, 0, len(byLen))
	for l := range byLen {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)

	var parts []string
	for _, l := range lengths {
		samples := byLen[l]
		sort.Strings(samples)
		parts = append(parts, fmt.Sprintf("%dbp (%s)", l, strings.Join(samples, ", ")))
	}
	return strings.Join(parts, "; ")
}
