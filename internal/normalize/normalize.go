// Package normalize post-processes translated Japanese text for clearer
// TTS pronunciation. It is a pure function, ported rule-for-rule from
// original_source's postprocess_for_tts (server/core/translation.py).
package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	explanationRe = regexp.MustCompile(`(?is)Explanation:.*`)
	fractionRe    = regexp.MustCompile(`(\d+)/(\d+)`)
	percentRe     = regexp.MustCompile(`(\d)[%％]`)
	upperRunRe    = regexp.MustCompile(`[A-Z]{4,}`)
	// ぁ-ゖ hiragana, ァ-ヺ katakana, \x{4E00}-\x{9FFF} CJK ideographs.
	alnumThenJPRe = regexp.MustCompile(`([A-Za-z0-9])\s+([\x{3041}-\x{3096}\x{30A1}-\x{30FA}\x{4E00}-\x{9FFF}])`)
	jpThenAlnumRe = regexp.MustCompile(`([\x{3041}-\x{3096}\x{30A1}-\x{30FA}\x{4E00}-\x{9FFF}])\s+([A-Za-z0-9])`)
	letterNumRe   = regexp.MustCompile(`([A-Za-z])\s+(\d)`)
	numLetterRe   = regexp.MustCompile(`(\d)\s+([A-Za-z])`)
)

// Normalize applies the rules in spec.md §4.4, in order. It is idempotent:
// Normalize(Normalize(x)) == Normalize(x) for all x.
func Normalize(text string) string {
	// 1. Remove "Explanation:" and everything after it (case-insensitive).
	text = explanationRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	// 2. Fractions: "1/2" -> "1分の2". Repeated until none is left, so a
	// chain like "1/2/3" is fully rewritten in a single call.
	for fractionRe.MatchString(text) {
		text = fractionRe.ReplaceAllString(text, "${1}分の${2}")
	}

	// 3. Decimal point between digits -> "てん". Chained decimals like
	// "3.2.1" must become "3てん2てん1"; a capturing-group regexp would
	// consume the shared middle digit and miss the second separator, so
	// this walks runes and reuses the right-hand digit as the next
	// left-hand candidate, mirroring Python's zero-width lookaround.
	text = replaceBetweenDigits(text, '.', "てん")

	// 4. Wave dash between digits -> "から".
	text = replaceBetweenDigitsAny(text, []rune{'〜', '～'}, "から")

	// 5. Percent sign (half- or full-width) after a digit -> "パーセント".
	text = percentRe.ReplaceAllString(text, "${1}パーセント")

	// 6. Remaining '.' -> space.
	text = strings.ReplaceAll(text, ".", " ")

	// 7. '-' and '_' -> space.
	text = strings.ReplaceAll(text, "-", " ")
	text = strings.ReplaceAll(text, "_", " ")

	// 8. Uppercase run of >= 4 letters -> title case.
	text = upperRunRe.ReplaceAllStringFunc(text, titleCase)

	// 9/10. Remove whitespace between ASCII letter/digit and Japanese, and
	// between ASCII letter and ASCII digit, on both sides.
	for {
		replaced := alnumThenJPRe.ReplaceAllString(text, "${1}${2}")
		replaced = jpThenAlnumRe.ReplaceAllString(replaced, "${1}${2}")
		replaced = letterNumRe.ReplaceAllString(replaced, "${1}${2}")
		replaced = numLetterRe.ReplaceAllString(replaced, "${1}${2}")
		if replaced == text {
			break
		}
		text = replaced
	}

	// Rules 6 and 7 can leave a leading or trailing space ("OK." -> "OK ").
	return strings.TrimSpace(text)
}

func titleCase(run string) string {
	if run == "" {
		return run
	}
	return strings.ToUpper(run[:1]) + strings.ToLower(run[1:])
}

// replaceBetweenDigits replaces a single-rune separator found between two
// digits with repl, without consuming the right-hand digit — so a second,
// adjacent separator/digit pair immediately following is still matched.
func replaceBetweenDigits(text string, sep rune, repl string) string {
	return replaceBetweenDigitsAny(text, []rune{sep}, repl)
}

func replaceBetweenDigitsAny(text string, seps []rune, repl string) string {
	r := []rune(text)
	n := len(r)
	var b strings.Builder
	i := 0
	for i < n {
		if i+2 < n && unicode.IsDigit(r[i]) && isOneOf(r[i+1], seps) && unicode.IsDigit(r[i+2]) {
			b.WriteRune(r[i])
			b.WriteString(repl)
			i += 2 // skip separator; land back on the shared digit
			continue
		}
		b.WriteRune(r[i])
		i++
	}
	return b.String()
}

func isOneOf(r rune, set []rune) bool {
	for _, s := range set {
		if r == s {
			return true
		}
	}
	return false
}
