package data

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"reviewml/pkg/sentiment"
)

// Scorer turns review text into a sentiment score.
type Scorer func(text string) float64

// LoadOptions controls how CSV rows become records.
type LoadOptions struct {
	// Scorer fills sentiment_score when the file has text but no score column.
	// Defaults to sentiment.Score.
	Scorer Scorer
	// DropDuplicates removes rows whose review text repeats an earlier row.
	DropDuplicates bool
}

// LoadStats counts what happened to each data row.
type LoadStats struct {
	Rows       int // data rows read, header excluded
	Loaded     int // rows that became records
	Neutral    int // rows dropped as neutral (3 stars or a neutral label)
	Skipped    int // malformed rows
	Duplicates int // rows dropped as repeated text; only ReadCSV fills it
}

// columns holds the header position of each known column, -1 when absent.
type columns struct {
	id, text, label, stars, words, score int
}

func parseHeader(rec []string) (columns, error) {
	c := columns{-1, -1, -1, -1, -1, -1}
	for i, h := range rec {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "id", "review_id":
			c.id = i
		case "text", "review", "body":
			c.text = i
		case "label", "sentiment", "class":
			c.label = i
		case "stars", "rating":
			c.stars = i
		case "word_count", "words", "wordcount":
			c.words = i
		case "sentiment_score", "score":
			c.score = i
		}
	}
	if c.label < 0 && c.stars < 0 {
		return c, fmt.Errorf("%w: header needs a label or stars column", ErrInvalidConfig)
	}
	if c.text < 0 && (c.words < 0 || c.score < 0) {
		return c, fmt.Errorf("%w: header needs a text column or both word_count and sentiment_score", ErrInvalidConfig)
	}
	return c, nil
}

// StreamCSV reads a header row followed by review rows from r and sends one
// Record per usable row on out. It closes out when it returns. Malformed rows
// are skipped and counted; a bad header or a read error other than a
// malformed row stops the stream.
func StreamCSV(ctx context.Context, r io.Reader, opts LoadOptions, out chan<- Record) (LoadStats, error) {
	defer close(out)
	var st LoadStats
	if opts.Scorer == nil {
		opts.Scorer = sentiment.Score
	}

	reader := csv.NewReader(bufio.NewReader(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return st, fmt.Errorf("%w: empty csv", ErrInvalidConfig)
	}
	if err != nil {
		return st, fmt.Errorf("reading csv header: %w", err)
	}
	cols, err := parseHeader(header)
	if err != nil {
		return st, err
	}

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			return st, nil
		}
		st.Rows++
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			st.Skipped++
			continue
		}
		if err != nil {
			return st, fmt.Errorf("reading csv row %d: %w", st.Rows, err)
		}

		r, ok, err := cols.record(rec, st.Rows, opts.Scorer)
		switch {
		case err != nil:
			st.Skipped++
			continue
		case !ok:
			st.Neutral++
			continue
		}
		select {
		case out <- r:
			st.Loaded++
		case <-ctx.Done():
			return st, ctx.Err()
		}
	}
}

// record converts one CSV row. ok=false with a nil error marks a neutral row.
func (c columns) record(rec []string, row int, score Scorer) (Record, bool, error) {
	field := func(i int) (string, bool) {
		if i < 0 || i >= len(rec) {
			return "", false
		}
		return strings.TrimSpace(rec[i]), true
	}

	r := Record{ID: row}
	if s, ok := field(c.id); ok && s != "" {
		id, err := strconv.Atoi(s)
		if err != nil {
			return r, false, fmt.Errorf("%w: id %q", ErrInvalidRecord, s)
		}
		r.ID = id
	}
	r.Text, _ = field(c.text)

	if s, ok := field(c.label); ok && s != "" {
		l, keep, err := ParseLabel(s)
		if err != nil || !keep {
			return r, false, err
		}
		r.Label = l
	} else if s, ok := field(c.stars); ok && s != "" {
		stars, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return r, false, fmt.Errorf("%w: stars %q", ErrInvalidRecord, s)
		}
		l, keep := LabelFromStars(stars)
		if !keep {
			return r, false, nil
		}
		r.Label = l
	} else {
		return r, false, fmt.Errorf("%w: row %d has no label", ErrInvalidRecord, row)
	}

	if s, ok := field(c.words); ok && s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return r, false, fmt.Errorf("%w: word_count %q", ErrInvalidRecord, s)
		}
		r.WordCount = n
	} else if c.text >= 0 {
		r.WordCount = sentiment.WordCount(r.Text)
	} else {
		return r, false, fmt.Errorf("%w: row %d has no word count", ErrInvalidRecord, row)
	}

	if s, ok := field(c.score); ok && s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return r, false, fmt.Errorf("%w: sentiment_score %q", ErrInvalidRecord, s)
		}
		r.SentimentScore = v
	} else if c.text >= 0 {
		r.SentimentScore = score(r.Text)
	} else {
		return r, false, fmt.Errorf("%w: row %d has no sentiment score", ErrInvalidRecord, row)
	}
	return r, true, nil
}

// ReadCSV loads a whole Dataset from r.
func ReadCSV(ctx context.Context, r io.Reader, opts LoadOptions) (*Dataset, LoadStats, error) {
	ch := make(chan Record, 256)
	type result struct {
		st  LoadStats
		err error
	}
	done := make(chan result, 1)
	go func() {
		st, err := StreamCSV(ctx, r, opts, ch)
		done <- result{st, err}
	}()

	var recs []Record
	for rec := range ch {
		recs = append(recs, rec)
	}
	res := <-done
	if res.err != nil {
		return nil, res.st, res.err
	}
	if opts.DropDuplicates {
		recs, res.st.Duplicates = DropDuplicates(recs)
		res.st.Loaded -= res.st.Duplicates
	}
	ds, err := NewDataset(recs)
	return ds, res.st, err
}

// LoadCSV opens path and loads it with ReadCSV.
func LoadCSV(ctx context.Context, path string, opts LoadOptions) (*Dataset, LoadStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, err
	}
	defer f.Close()
	return ReadCSV(ctx, f, opts)
}

// WriteCSV writes ds with the columns id,text,label,word_count,sentiment_score,
// which ReadCSV reads back.
func WriteCSV(w io.Writer, ds *Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "text", "label", "word_count", "sentiment_score"}); err != nil {
		return err
	}
	for i := 0; i < ds.Len(); i++ {
		r := ds.At(i)
		row := []string{
			strconv.Itoa(r.ID),
			r.Text,
			r.Label.String(),
			strconv.Itoa(r.WordCount),
			strconv.FormatFloat(r.SentimentScore, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
