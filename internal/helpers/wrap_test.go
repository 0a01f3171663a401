package helpers

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestWrap(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{
			name:  "fills greedily",
			in:    "Tonight the city council approved a brand new park downtown.",
			width: 30,
			want:  "Tonight the city council\napproved a brand new park\ndowntown.",
		},
		{
			name:  "collapses whitespace",
			in:    "  Breaking\n\nnews   tonight  ",
			width: 30,
			want:  "Breaking news tonight",
		},
		{
			name:  "breaks long words",
			in:    "ab " + strings.Repeat("x", 12),
			width: 5,
			want:  "ab xx\nxxxxx\nxxxxx",
		},
		{
			name:  "breaks after hyphen",
			in:    "The council approved a long-awaited plan today.",
			width: 30,
			want:  "The council approved a long-\nawaited plan today.",
		},
		{
			name:  "long hyphenated word",
			in:    "state-of-the-art",
			width: 10,
			want:  "state-of-\nthe-art",
		},
		{
			name:  "leading hyphen stays",
			in:    "-5 degrees",
			width: 30,
			want:  "-5 degrees",
		},
		{
			name:  "dash between words",
			in:    "The mayor--visibly moved--thanked residents.",
			width: 16,
			want:  "The mayor--\nvisibly moved--\nthanked\nresidents.",
		},
		{
			name:  "short hyphen parts stay whole",
			in:    "A high-speed x-ray scan",
			width: 9,
			want:  "A high-\nspeed\nx-ray\nscan",
		},
		{
			name:  "long word breaks at hyphen",
			in:    "COVID-19 cases rise",
			width: 6,
			want:  "COVID-\n19\ncases\nrise",
		},
		{
			name:  "exact fit",
			in:    "abcde fghij",
			width: 5,
			want:  "abcde\nfghij",
		},
		{
			name:  "empty",
			in:    "   ",
			width: 30,
			want:  "",
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Wrap(tc.in, tc.width); got != tc.want {
				t.Fatalf("Wrap(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
			}
		})
	}
}

func TestWrapKeepsEveryWord(t *testing.T) {
	t.Parallel()
	script := "In a dramatic late night session, the City Council approved a new park, promising green space for thousands of residents."
	lines := WrapLines(script, 30)
	for _, l := range lines {
		if utf8.RuneCountInString(l) > 30 {
			t.Fatalf("line over width: %q", l)
		}
	}
	if strings.Join(lines, " ") != script {
		t.Fatalf("wrapped text lost words: %q", strings.Join(lines, " "))
	}
}
