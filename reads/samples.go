package reads

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
)

// Sample is one paired-end sequencing library. Name is the filename prefix
// before the first underscore; Condition and Replicate are parsed from it.
type Sample struct {
	Name      string
	Condition string
	Replicate string

	ForwardPath string
	ReversePath string

	FilteredForward string
	FilteredReverse string
}

const (
	forwardTag = "_R1_001"
	reverseTag = "_R2_001"
)

// ParseSampleName splits a sample name like "KT3" into its condition label
// ("KT", the leading non-digit part) and replicate label ("3", the trailing
// digits). Names without trailing digits get an empty replicate.
func ParseSampleName(name string) (condition, replicate string) {
	i := len(name)
	for i > 0 && unicode.IsDigit(rune(name[i-1])) {
		i--
	}
	return name[:i], name[i:]
}

// DiscoverSamples enumerates the paired gzip-compressed FASTQ files in
// inputDir following the _R1_001/_R2_001 naming convention and pairs them up
// by sample. Every forward file must have a reverse mate and vice versa.
func DiscoverSamples(inputDir string) ([]Sample, error) {
	fwd, err := filepath.Glob(filepath.Join(inputDir, "*"+forwardTag+"*.fastq.gz"))
	if err != nil {
		return nil, err
	}
	rev, err := filepath.Glob(filepath.Join(inputDir, "*"+reverseTag+"*.fastq.gz"))
	if err != nil {
		return nil, err
	}
	sort.Strings(fwd)
	sort.Strings(rev)

	if len(fwd) == 0 {
		return nil, fmt.Errorf("no %s*.fastq.gz files found in %s", forwardTag, inputDir)
	}

	revByName := make(map[string]string)
	for _, r := range rev {
		revByName[sampleNameFromFile(r)] = r
	}

	var samples []Sample
	for _, f := range fwd {
		name := sampleNameFromFile(f)
		r, ok := revByName[name]
		if !ok {
			return nil, fmt.Errorf("forward file %s has no reverse mate", filepath.Base(f))
		}
		delete(revByName, name)

		cond, rep := ParseSampleName(name)
		samples = append(samples, Sample{
			Name:        name,
			Condition:   cond,
			Replicate:   rep,
			ForwardPath: f,
			ReversePath: r,
		})
	}

	if len(revByName) > 0 {
		var orphans []string
		for _, r := range revByName {
			orphans = append(orphans, filepath.Base(r))
		}
		sort.Strings(orphans)
		return nil, fmt.Errorf("reverse files without forward mates: %s", strings.Join(orphans, ", "))
	}

	return samples, nil
}

func sampleNameFromFile(path string) string {
	base := filepath.Base(path)
	return strings.SplitN(base, "_", 2)[0]
}
