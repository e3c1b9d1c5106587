package data

import (
	"fmt"
	"strings"
)

// Label is the binary review class. Neutral reviews never make it into a Dataset.
type Label int

const (
	Neg Label = 0
	Pos Label = 1
)

func (l Label) String() string {
	switch l {
	case Pos:
		return "POS"
	case Neg:
		return "NEG"
	default:
		return fmt.Sprintf("Label(%d)", int(l))
	}
}

// Valid reports whether l is POS or NEG.
func (l Label) Valid() bool { return l == Pos || l == Neg }

// Float returns 1 for POS and 0 for NEG, the encoding the models train on.
func (l Label) Float() float64 {
	if l == Pos {
		return 1
	}
	return 0
}

// ParseLabel accepts POS/NEG in the spellings review exports tend to use.
// Neutral labels return ok=false with a nil error so loaders can drop them.
func ParseLabel(s string) (l Label, ok bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pos", "positive", "1", "+1", "true":
		return Pos, true, nil
	case "neg", "negative", "0", "-1", "false":
		return Neg, true, nil
	case "neutral", "neu":
		return Neg, false, nil
	}
	return Neg, false, fmt.Errorf("%w: unknown label %q", ErrInvalidRecord, s)
}

// LabelFromStars maps a 1-5 star rating to a label: 4-5 is POS, 1-2 is NEG,
// 3 is neutral and reported with ok=false.
func LabelFromStars(stars float64) (l Label, ok bool) {
	switch {
	case stars >= 4:
		return Pos, true
	case stars <= 2:
		return Neg, true
	default:
		return Neg, false
	}
}

// Record is one labelled review.
type Record struct {
	ID             int
	Text           string
	Label          Label
	WordCount      int
	SentimentScore float64
}

// Dataset is an immutable, ordered collection of records.
type Dataset struct {
	records []Record
}

// NewDataset validates and copies recs. The caller may reuse recs afterwards.
func NewDataset(recs []Record) (*Dataset, error) {
	out := make([]Record, len(recs))
	for i, r := range recs {
		if !r.Label.Valid() {
			return nil, fmt.Errorf("%w: record %d has label %s", ErrInvalidRecord, r.ID, r.Label)
		}
		if r.WordCount < 0 {
			return nil, fmt.Errorf("%w: record %d has negative word count %d", ErrInvalidRecord, r.ID, r.WordCount)
		}
		out[i] = r
	}
	return &Dataset{records: out}, nil
}

// Len returns the number of records; a nil Dataset is empty.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// At returns the i-th record.
func (d *Dataset) At(i int) Record { return d.records[i] }

// WordCounts returns every record's word count as float64, in dataset order.
func (d *Dataset) WordCounts() []float64 {
	out := make([]float64, len(d.records))
	for i, r := range d.records {
		out[i] = float64(r.WordCount)
	}
	return out
}

// CountLabels returns the number of POS and NEG records.
func (d *Dataset) CountLabels() (pos, neg int) {
	for _, r := range d.records {
		if r.Label == Pos {
			pos++
		} else {
			neg++
		}
	}
	return pos, neg
}

// Features returns the predictor rows and encoded labels for the records at idx.
// Each row holds a single column: the sentiment score.
func (d *Dataset) Features(idx []int) (X [][]float64, y []float64) {
	X = make([][]float64, len(idx))
	y = make([]float64, len(idx))
	for i, j := range idx {
		r := d.records[j]
		X[i] = []float64{r.SentimentScore}
		y[i] = r.Label.Float()
	}
	return X, y
}

// PositiveShare returns count(POS)/len(idx) over the records at idx, or 0 for an empty index.
func (d *Dataset) PositiveShare(idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	pos := 0
	for _, j := range idx {
		if d.records[j].Label == Pos {
			pos++
		}
	}
	return float64(pos) / float64(len(idx))
}
