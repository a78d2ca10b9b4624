package asv

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Taxonomy is one variant's classification across the seven standard ranks.
// Ranks below the classifier's confidence cutoff are empty.
type Taxonomy struct {
	Domain  string
	Phylum  string
	Class   string
	Order   string
	Family  string
	Genus   string
	Species string
}

// Rank returns the value at a rank name ("family", "genus", ...).
func (t Taxonomy) Rank(rank string) string {
	switch strings.ToLower(rank) {
	case "domain", "kingdom":
		return t.Domain
	case "phylum":
		return t.Phylum
	case "class":
		return t.Class
	case "order":
		return t.Order
	case "family":
		return t.Family
	case "genus":
		return t.Genus
	case "species":
		return t.Species
	}
	return ""
}

// TaxonomyTable holds one classification per variant, in file order.
type TaxonomyTable struct {
	Variants    []string
	Assignments map[string]Taxonomy
}

// TrimLabel strips the ;size= style annotations vsearch appends to sequence
// labels, leaving the bare variant identifier.
func TrimLabel(label string) string {
	if i := strings.IndexByte(label, ';'); i >= 0 {
		label = label[:i]
	}
	return strings.TrimSpace(label)
}

// ParseTaxonomy reads a vsearch --sintax --tabbedout file. The fourth column
// (the cutoff-filtered lineage) is preferred; confidence annotations are
// stripped either way.
func ParseTaxonomy(path string) (*TaxonomyTable, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	tt := &TaxonomyTable{Assignments: make(map[string]Taxonomy)}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("taxonomy file %s: malformed line %q", path, line)
		}

		variant := TrimLabel(fields[0])
		lineage := fields[1]
		if len(fields) >= 4 && fields[3] != "" {
			lineage = fields[3]
		}

		tt.Variants = append(tt.Variants, variant)
		tt.Assignments[variant] = parseLineage(lineage)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(tt.Variants) == 0 {
		return nil, fmt.Errorf("taxonomy file %s has no assignments", path)
	}
	return tt, nil
}

func parseLineage(lineage string) Taxonomy {
	var t Taxonomy
	for _, part := range strings.Split(lineage, ",") {
		part = strings.TrimSpace(part)
		if len(part) < 2 || part[1] != ':' {
			continue
		}
		value := part[2:]
		if i := strings.IndexByte(value, '('); i >= 0 {
			value = value[:i]
		}
		value = strings.TrimSpace(strings.ReplaceAll(value, "_", " "))
		switch part[0] {
		case 'd', 'k':
			t.Domain = value
		case 'p':
			t.Phylum = value
		case 'c':
			t.Class = value
		case 'o':
			t.Order = value
		case 'f':
			t.Family = value
		case 'g':
			t.Genus = value
		case 's':
			t.Species = value
		}
	}
	return t
}

// RenameVariants replaces the vsearch centroid labels with stable ASV_1..ASV_n
// identifiers, in feature-table column order, applied consistently to the
// feature table and the taxonomy table. Returns the old-to-new mapping.
func RenameVariants(ft *FeatureTable, tt *TaxonomyTable) map[string]string {
	renames := make(map[string]string, len(ft.Variants))
	for j, old := range ft.Variants {
		name := fmt.Sprintf("ASV_%d", j+1)
		renames[old] = name
		ft.Variants[j] = name
	}

	assignments := make(map[string]Taxonomy, len(tt.Assignments))
	for i, old := range tt.Variants {
		name, ok := renames[old]
		if !ok {
			// Chimeric variants classified before removal keep their label.
			name = old
		}
		tt.Variants[i] = name
		assignments[name] = tt.Assignments[old]
	}
	tt.Assignments = assignments
	return renames
}

// WriteVariantsFasta rewrites a variant FASTA with the renamed identifiers so
// the exported table, taxonomy and sequences all agree.
func WriteVariantsFasta(inFasta, outFasta string, renames map[string]string) error {
	in, err := os.Open(inFasta)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outFasta)
	if err != nil {
		return err
	}
	defer out.Close()

	w := fasta.NewWriter(out, 80)
	sc := seqio.NewScanner(fasta.NewReader(in, linear.NewSeq("", nil, alphabet.DNAredundant)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		if name, ok := renames[TrimLabel(s.ID)]; ok {
			s.ID = name
		}
		s.Desc = ""
		if _, err := w.Write(s); err != nil {
			return err
		}
	}
	return sc.Error()
}
