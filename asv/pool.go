package asv

import (
	"fmt"
	"os"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"

	"github.com/gmaffy/amplicon-whisperer/reads"
)

// PoolSamples concatenates the per-sample merged reads into one FASTA file,
// relabelling every read with a ;sample= annotation so the feature-table
// stage can attribute counts back to samples. Returns per-sample read counts.
func PoolSamples(samples []reads.Sample, mergedPaths map[string]string, pooledFasta string) (map[string]int, error) {
	out, err := os.Create(pooledFasta)
	if err != nil {
		return nil, err
	}
	defer out.Close()

	w := fasta.NewWriter(out, 80)
	counts := make(map[string]int)

	for _, s := range samples {
		merged, ok := mergedPaths[s.Name]
		if !ok {
			return nil, fmt.Errorf("no merged reads recorded for sample %s", s.Name)
		}

		r, closer, err := reads.OpenMaybeGzip(merged)
		if err != nil {
			return nil, err
		}

		sc := seqio.NewScanner(fastq.NewReader(r, linear.NewQSeq("", nil, alphabet.DNAredundant, alphabet.Sanger)))
		n := 0
		for sc.Next() {
			sq := sc.Seq().(*linear.QSeq)
			n++
			sq.ID = fmt.Sprintf("%s.%d;sample=%s", s.Name, n, s.Name)
			sq.Desc = ""
			if _, err := w.Write(sq); err != nil {
				closer()
				return nil, err
			}
		}
		if err := sc.Error(); err != nil {
			closer()
			return nil, fmt.Errorf("reading merged reads for %s: %w", s.Name, err)
		}
		if err := closer(); err != nil {
			return nil, err
		}
		counts[s.Name] = n
	}

	return counts, nil
}
