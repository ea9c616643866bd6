package news

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

// CleanText prepares text for comparison: strip HTML tags, NFKC-normalize,
// replace everything except letters/digits with spaces, collapse whitespace.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = htmlTagRe.ReplaceAllString(text, " ")
	text = norm.NFKC.String(text)

	runes := make([]rune, 0, len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			runes = append(runes, r)
		} else {
			runes = append(runes, ' ')
		}
	}
	return strings.Join(strings.Fields(string(runes)), " ")
}

// TextRatio is a sequence-match ratio in [0,1]: twice the total length of
// matching blocks divided by the combined length, over lower-cased runes.
func TextRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	ar := []rune(strings.ToLower(a))
	br := []rune(strings.ToLower(b))
	matched := matchingRunes(ar, br)
	return 2 * float64(matched) / float64(len(ar)+len(br))
}

// matchingRunes counts runes covered by matching blocks: find the longest
// common substring, then recurse on the pieces left and right of it.
func matchingRunes(a, b []rune) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingRunes(a[:ai], b[:bi])
	total += matchingRunes(a[ai+size:], b[bi+size:])
	return total
}

// longestMatch finds the longest common substring of a and b with
// a single-row dynamic programming table.
func longestMatch(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > size {
					size = cur[j]
					ai = i - size
					bi = j - size
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return ai, bi, size
}
