package reads

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
)

// FilterParams are the per-read trimming and filtering thresholds. TrimLeftF
// and TrimLeftR are the primer lengths from the validated metadata table.
type FilterParams struct {
	TruncLenF int
	TruncLenR int
	TrimLeftF int
	TrimLeftR int
	TruncQ    int
	MaxN      int
	MinLen    int
	MaxEEF    float64
	MaxEER    float64
}

type FilterResult struct {
	Sample   string
	ReadsIn  int
	ReadsOut int
}

// OpenMaybeGzip opens a file, transparently decompressing .gz inputs. The
// returned closer closes both layers.
func OpenMaybeGzip(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, f.Close, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	closer := func() error {
		gzErr := gz.Close()
		fErr := f.Close()
		if gzErr != nil {
			return gzErr
		}
		return fErr
	}
	return gz, closer, nil
}

// trimRead applies trim-left, quality truncation and length truncation to a
// single read in place, then applies the MaxN and MaxEE filters. It reports
// whether the read survives.
func trimRead(s *linear.QSeq, trimLeft, truncLen, truncQ, maxN int, maxEE float64) bool {
	q := s.Seq
	if trimLeft >= len(q) {
		return false
	}
	q = q[trimLeft:]

	// Truncate at the first base below the quality floor.
	for i, ql := range q {
		if int(ql.Q) < truncQ {
			q = q[:i]
			break
		}
	}

	if truncLen > 0 {
		if len(q) < truncLen {
			return false
		}
		q = q[:truncLen]
	}

	ns := 0
	ee := 0.0
	for _, ql := range q {
		if ql.L == 'N' || ql.L == 'n' {
			ns++
		}
		ee += ql.Q.ProbE()
	}
	if ns > maxN {
		return false
	}
	if maxEE > 0 && ee > maxEE {
		return false
	}

	s.Seq = q
	return true
}

// FilterTrimPair runs the filter over one sample's read pair, writing the
// surviving pairs as gzip-compressed FASTQ into outDir. Both mates must pass
// for a pair to be kept. The sample's FilteredForward/FilteredReverse paths
// are filled in on success.
func FilterTrimPair(s *Sample, outDir string, p FilterParams) (FilterResult, error) {
	res := FilterResult{Sample: s.Name}

	fr, fClose, err := OpenMaybeGzip(s.ForwardPath)
	if err != nil {
		return res, err
	}
	defer fClose()
	rr, rClose, err := OpenMaybeGzip(s.ReversePath)
	if err != nil {
		return res, err
	}
	defer rClose()

	scF := seqio.NewScanner(fastq.NewReader(fr, linear.NewQSeq("", nil, alphabet.DNAredundant, alphabet.Sanger)))
	scR := seqio.NewScanner(fastq.NewReader(rr, linear.NewQSeq("", nil, alphabet.DNAredundant, alphabet.Sanger)))

	fwdOut := filepath.Join(outDir, s.Name+"_F_filt.fastq.gz")
	revOut := filepath.Join(outDir, s.Name+"_R_filt.fastq.gz")

	fOut, err := os.Create(fwdOut)
	if err != nil {
		return res, err
	}
	defer fOut.Close()
	rOut, err := os.Create(revOut)
	if err != nil {
		return res, err
	}
	defer rOut.Close()

	fGz := gzip.NewWriter(fOut)
	rGz := gzip.NewWriter(rOut)
	fw := fastq.NewWriter(fGz)
	rw := fastq.NewWriter(rGz)

	for scF.Next() {
		if !scR.Next() {
			return res, fmt.Errorf("sample %s: forward file has more reads than reverse file", s.Name)
		}
		res.ReadsIn++

		fSeq := scF.Seq().(*linear.QSeq)
		rSeq := scR.Seq().(*linear.QSeq)

		fOK := trimRead(fSeq, p.TrimLeftF, p.TruncLenF, p.TruncQ, p.MaxN, p.MaxEEF)
		rOK := trimRead(rSeq, p.TrimLeftR, p.TruncLenR, p.TruncQ, p.MaxN, p.MaxEER)
		if !fOK || !rOK {
			continue
		}
		if len(fSeq.Seq) < p.MinLen || len(rSeq.Seq) < p.MinLen {
			continue
		}

		if _, err := fw.Write(fSeq); err != nil {
			return res, err
		}
		if _, err := rw.Write(rSeq); err != nil {
			return res, err
		}
		res.ReadsOut++
	}
	if scR.Next() {
		return res, fmt.Errorf("sample %s: reverse file has more reads than forward file", s.Name)
	}
	if err := scF.Error(); err != nil {
		return res, err
	}
	if err := scR.Error(); err != nil {
		return res, err
	}

	if err := fGz.Close(); err != nil {
		return res, err
	}
	if err := rGz.Close(); err != nil {
		return res, err
	}

	s.FilteredForward = fwdOut
	s.FilteredReverse = revOut
	return res, nil
}

// FilterTrimAll filters every sample, one goroutine per sample capped at
// threads workers.
func FilterTrimAll(samples []Sample, outDir string, p FilterParams, threads int) ([]FilterResult, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]FilterResult, len(samples))

	var g errgroup.Group
	if threads > 0 {
		g.SetLimit(threads)
	}
	for i := range samples {
		i := i
		g.Go(func() error {
			res, err := FilterTrimPair(&samples[i], outDir, p)
			if err != nil {
				return fmt.Errorf("filtering %s: %w", samples[i].Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fmt.Printf("Filtering took %s\n\n", time.Since(start))
	return results, nil
}

// CountFastqReads counts records in a (possibly gzipped) FASTQ file.
func CountFastqReads(path string) (int, error) {
	r, closer, err := OpenMaybeGzip(path)
	if err != nil {
		return 0, err
	}
	defer closer()

	sc := seqio.NewScanner(fastq.NewReader(r, linear.NewQSeq("", nil, alphabet.DNAredundant, alphabet.Sanger)))
	n := 0
	for sc.Next() {
		n++
	}
	if err := sc.Error(); err != nil {
		return n, err
	}
	return n, nil
}
