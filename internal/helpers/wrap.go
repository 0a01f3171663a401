package helpers

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Wrap fills text into lines of at most width runes the way Python's textwrap.fill does:
// whitespace runs collapse to a single space, hyphenated words may break after a hyphen,
// words longer than width are broken, and lines are joined with "\n". Lines never carry
// trailing spaces.
func Wrap(text string, width int) string {
	return strings.Join(WrapLines(text, width), "\n")
}

// WrapLines is Wrap without the final join.
func WrapLines(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if width <= 0 {
		return []string{strings.Join(words, " ")}
	}

	// chunks are word pieces and single " " separators
	var chunks []string
	for i, w := range words {
		if i > 0 {
			chunks = append(chunks, " ")
		}
		chunks = append(chunks, hyphenPieces(w)...)
	}

	var lines []string
	for len(chunks) > 0 {
		if chunks[0] == " " && len(lines) > 0 {
			chunks = chunks[1:]
		}
		var (
			cur []string
			n   int
		)
		for len(chunks) > 0 {
			l := utf8.RuneCountInString(chunks[0])
			if n+l > width {
				break
			}
			cur = append(cur, chunks[0])
			n += l
			chunks = chunks[1:]
		}
		if len(chunks) > 0 && utf8.RuneCountInString(chunks[0]) > width && n < width {
			var piece string
			piece, chunks[0] = splitLong(chunks[0], width-n)
			cur = append(cur, piece)
		}
		if len(cur) > 0 && cur[len(cur)-1] == " " {
			cur = cur[:len(cur)-1]
		}
		if len(cur) > 0 {
			lines = append(lines, strings.Join(cur, ""))
		}
	}
	return lines
}

// hyphenPieces splits a word where textwrap would: after the hyphen of a hyphenated word
// ("long-awaited" gives "long-" and "awaited") and around a "--" dash between words.
func hyphenPieces(word string) []string {
	r := []rune(word)
	n := len(r)
	at := func(i int) rune {
		if i < 0 || i >= n {
			return ' '
		}
		return r[i]
	}
	// dashEnd is the end of a run of two or more hyphens at i that is followed by a word
	// rune, or -1.
	dashEnd := func(i int) int {
		j := i
		for j < n && r[j] == '-' {
			j++
		}
		if j-i >= 2 && j < n && isWordRune(r[j]) {
			return j
		}
		return -1
	}

	var out []string
	for p := 0; p < n; {
		if p > 0 && isWordPunct(r[p-1]) {
			if j := dashEnd(p); j > 0 {
				out = append(out, string(r[p:j]))
				p = j
				continue
			}
		}
		e := p + 1
		for ; e < n; e++ {
			if at(e-1) == '-' && e-1 > p &&
				((isLetter(at(e-3)) && isLetter(at(e-2))) || (isLetter(at(e-4)) && at(e-3) == '-' && isLetter(at(e-2)))) &&
				isLetter(at(e)) && (isLetter(at(e+1)) || (at(e+1) == '-' && isLetter(at(e+2)))) {
				break
			}
			if isWordPunct(at(e-1)) && dashEnd(e) > 0 {
				break
			}
		}
		out = append(out, string(r[p:e]))
		p = e
	}
	return out
}

func isWordRune(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' }

func isLetter(r rune) bool { return unicode.IsLetter(r) || r == '_' }

func isWordPunct(r rune) bool { return isWordRune(r) || strings.ContainsRune(`!"'&.,?`, r) }

// splitLong cuts room runes off the front of chunk, preferring to end just after the last
// hyphen that fits.
func splitLong(chunk string, room int) (string, string) {
	runes := []rune(chunk)
	end := room
	for i := room - 1; i > 0; i-- {
		if runes[i] == '-' {
			if strings.Trim(string(runes[:i]), "-") != "" {
				end = i + 1
			}
			break
		}
	}
	return string(runes[:end]), string(runes[end:])
}
