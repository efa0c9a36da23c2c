package sentence

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/sentences"
	"golang.org/x/text/language"
)

// abbreviations lists, per language base, lowercase abbreviations (without
// the final period) that do not end a sentence.
var abbreviations = map[string][]string{
	"en": {
		"dr", "mr", "mrs", "ms", "prof", "jr", "sr", "st", "vs",
		"e.g", "i.e", "approx", "b.i.d", "t.i.d", "q.i.d", "p.o",
	},
}

// closers may follow a sentence terminator before the boundary.
const closers = "\"')]}’”»"

// Splitter segments note text into sentences.
//
// Boundaries come from Unicode UAX #29 sentence segmentation, refined the
// way a Punkt-style tokenizer treats clinical text: a boundary needs
// sentence-final punctuation, known abbreviations and initials do not end
// a sentence, and a terminator followed by a digit-initial token does.
type Splitter struct {
	lang          language.Tag
	abbreviations map[string]struct{}
}

// NewSplitter creates a Splitter for the given language. Languages without
// an abbreviation list still split; they just never merge on abbreviations.
func NewSplitter(tag language.Tag) *Splitter {
	base, _ := tag.Base()
	set := make(map[string]struct{})
	for _, a := range abbreviations[base.String()] {
		set[a] = struct{}{}
	}
	return &Splitter{lang: tag, abbreviations: set}
}

// Language returns the splitter's language tag.
func (s *Splitter) Language() language.Tag {
	return s.lang
}

// Split returns the trimmed, non-empty sentences of text in order.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []string
	var pending strings.Builder
	flush := func() {
		if t := strings.TrimSpace(pending.String()); t != "" {
			out = append(out, t)
		}
		pending.Reset()
	}

	iter := sentences.FromString(text)
	for iter.Next() {
		for _, piece := range splitBeforeDigits(iter.Value()) {
			pending.WriteString(piece)
			if s.closes(pending.String()) {
				flush()
			}
		}
	}
	flush()
	return out
}

// closes reports whether seg ends a sentence.
func (s *Splitter) closes(seg string) bool {
	trimmed := strings.TrimRightFunc(seg, unicode.IsSpace)
	if !endsWithTerminator(trimmed) {
		return false
	}
	return !s.endsWithAbbreviation(trimmed)
}

func (s *Splitter) endsWithAbbreviation(trimmed string) bool {
	word := trimmed[strings.LastIndexFunc(trimmed, unicode.IsSpace)+1:]
	word = strings.TrimLeft(word, "([{\"'")
	if !strings.HasSuffix(word, ".") {
		return false
	}
	word = strings.TrimSuffix(word, ".")
	if word == "" {
		return false
	}
	if utf8.RuneCountInString(word) == 1 {
		r, _ := utf8.DecodeRuneInString(word)
		return unicode.IsUpper(r)
	}
	_, ok := s.abbreviations[strings.ToLower(word)]
	return ok
}

func endsWithTerminator(trimmed string) bool {
	trimmed = strings.TrimRight(trimmed, closers)
	r, _ := utf8.DecodeLastRuneInString(trimmed)
	return isTerminator(r)
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？':
		return true
	}
	return false
}

// splitBeforeDigits cuts seg after every terminator (plus closers and
// whitespace) that is followed by a digit. UAX #29 keeps "pain. 2nd" in
// one segment because the next word does not start with an uppercase letter.
func splitBeforeDigits(seg string) []string {
	var pieces []string
	start := 0
	for i := 0; i < len(seg); i++ {
		if seg[i] != '.' && seg[i] != '!' && seg[i] != '?' {
			continue
		}
		j := i + 1
		for j < len(seg) && strings.IndexByte(`"')]}`, seg[j]) >= 0 {
			j++
		}
		k := j
		for k < len(seg) && isASCIISpace(seg[k]) {
			k++
		}
		if k > j && k < len(seg) && seg[k] >= '0' && seg[k] <= '9' {
			pieces = append(pieces, seg[start:k])
			start = k
		}
		i = k - 1
	}
	return append(pieces, seg[start:])
}

func isASCIISpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}
