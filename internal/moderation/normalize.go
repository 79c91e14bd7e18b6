package moderation

import "strings"

// multiReplacer folds multi-character leet sequences before the rune map
// runs. `}{` and `][` are common renderings of Cyrillic х.
var multiReplacer = strings.NewReplacer(
	"}{", "х",
	"][", "х",
	"|-|", "н",
	"|o|", "ю",
)

// confusables maps Latin lookalikes and digit substitutions onto the
// Cyrillic letters they imitate. The map is fixed, not configurable.
var confusables = map[rune]rune{
	'a': 'а',
	'b': 'в',
	'c': 'с',
	'e': 'е',
	'h': 'н',
	'k': 'к',
	'm': 'м',
	'o': 'о',
	'p': 'р',
	'r': 'г',
	't': 'т',
	'u': 'и',
	'x': 'х',
	'y': 'у',
	'0': 'о',
	'3': 'з',
	'4': 'ч',
	'6': 'б',
	'@': 'а',
	'$': 'с',
}

// normalize lowercases the word and folds confusable characters so leet
// spellings land on the canonical Cyrillic form before fuzzy matching.
func normalize(word string) string {
	word = strings.ToLower(word)
	word = multiReplacer.Replace(word)
	var b strings.Builder
	b.Grow(len(word))
	for _, r := range word {
		if repl, ok := confusables[r]; ok {
			r = repl
		}
		b.WriteRune(r)
	}
	return b.String()
}

// levenshtein computes the edit distance between two rune slices.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
