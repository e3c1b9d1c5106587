package data

import "strings"

// DropDuplicates removes records whose text repeats an earlier record's text,
// compared case-insensitively with whitespace collapsed. Records without text
// are always kept. It returns the kept records and the number dropped.
func DropDuplicates(recs []Record) ([]Record, int) {
	seen := make(map[string]struct{})
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		key := strings.ToLower(strings.Join(strings.Fields(r.Text), " "))
		if key != "" {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, r)
	}
	return out, len(recs) - len(out)
}
