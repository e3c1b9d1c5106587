package sentiment

// lexicon maps lower-cased words to a polarity weight in -5..+5 (AFINN scale).
var lexicon = map[string]int{
	// positive
	"amazing":     4,
	"awesome":     4,
	"beautiful":   3,
	"best":        3,
	"clean":       2,
	"comfortable": 2,
	"delicious":   3,
	"enjoy":       2,
	"enjoyed":     2,
	"excellent":   3,
	"fantastic":   4,
	"favorite":    2,
	"fresh":       1,
	"friendly":    2,
	"good":        3,
	"great":       3,
	"happy":       3,
	"helpful":     2,
	"love":        3,
	"loved":       3,
	"nice":        3,
	"outstanding": 5,
	"perfect":     3,
	"pleasant":    3,
	"recommend":   2,
	"superb":      5,
	"tasty":       2,
	"wonderful":   4,
	"worth":       2,
	// negative
	"awful":         -3,
	"bad":           -3,
	"bland":         -2,
	"broken":        -1,
	"cold":          -1,
	"dirty":         -2,
	"disappointed":  -2,
	"disappointing": -2,
	"disgusting":    -3,
	"expensive":     -1,
	"hate":          -3,
	"hated":         -3,
	"horrible":      -3,
	"mediocre":      -2,
	"overpriced":    -2,
	"poor":          -2,
	"rude":          -2,
	"slow":          -1,
	"terrible":      -3,
	"unfriendly":    -2,
	"waste":         -1,
	"worse":         -3,
	"worst":         -3,
}

// negators flip the sign of the lexicon word that directly follows them.
var negators = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"don't":   true,
	"didn't":  true,
	"isn't":   true,
	"wasn't":  true,
	"aren't":  true,
	"weren't": true,
	"hardly":  true,
}
