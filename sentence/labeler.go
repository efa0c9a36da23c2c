package sentence

import (
	"log/slog"

	"github.com/poiesic/notevec/core"
	"golang.org/x/text/language"
)

// IndexMode selects how a sentence's index within its note is derived.
type IndexMode int

const (
	// PositionalIndex numbers sentences by their position in the note.
	PositionalIndex IndexMode = iota
	// FirstOccurrenceIndex gives a sentence the position of the first
	// textually identical sentence in the same note, so repeated sentences
	// share a tag.
	FirstOccurrenceIndex
)

// Stats summarizes a labeling pass.
type Stats struct {
	Notes        int
	Sentences    int // sentences found by the splitter
	Labeled      int // sentences emitted into the corpus
	Dropped      int // sentences with no tokens after cleaning
	MaxSentences int // most sentences in a single note
}

// Labeler turns notes into a tagged corpus.
type Labeler struct {
	splitter *Splitter
	mode     IndexMode
	logger   *slog.Logger
}

// Option configures a Labeler.
type Option func(*Labeler)

// WithIndexMode sets how sentence indices are derived.
// Default is PositionalIndex.
func WithIndexMode(mode IndexMode) Option {
	return func(l *Labeler) {
		l.mode = mode
	}
}

// WithLanguage sets the language used for sentence boundaries.
// Default is English.
func WithLanguage(tag language.Tag) Option {
	return func(l *Labeler) {
		l.splitter = NewSplitter(tag)
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Labeler) {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
	}
}

// NewLabeler creates a Labeler.
func NewLabeler(opts ...Option) *Labeler {
	l := &Labeler{
		splitter: NewSplitter(language.English),
		mode:     PositionalIndex,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With("component", "labeler")
	return l
}

// Label splits, cleans and tags every note in order. Notes keep their
// relative order in the corpus, as do sentences within a note.
func (l *Labeler) Label(notes []core.NoteRecord) (core.Corpus, Stats) {
	var corpus core.Corpus
	var stats Stats
	for i := range notes {
		labeled, found := l.LabelNote(&notes[i])
		corpus = append(corpus, labeled...)

		stats.Notes++
		stats.Sentences += found
		stats.Labeled += len(labeled)
		stats.Dropped += found - len(labeled)
		if found > stats.MaxSentences {
			stats.MaxSentences = found
		}
	}

	l.logger.Debug("labeled notes",
		"notes", stats.Notes,
		"sentences", stats.Sentences,
		"labeled", stats.Labeled,
		"max_sentences", stats.MaxSentences)
	return corpus, stats
}

// LabelNote labels the sentences of one note. It also returns how many
// sentences the splitter found, including those dropped for having no tokens.
func (l *Labeler) LabelNote(note *core.NoteRecord) ([]core.LabeledSentence, int) {
	sents := l.splitter.Split(note.Text)
	if len(sents) == 0 {
		return nil, 0
	}

	var first map[string]int
	if l.mode == FirstOccurrenceIndex {
		first = make(map[string]int, len(sents))
		for i, s := range sents {
			if _, seen := first[s]; !seen {
				first[s] = i
			}
		}
	}

	out := make([]core.LabeledSentence, 0, len(sents))
	for i, s := range sents {
		tokens := Clean(s)
		if len(tokens) == 0 {
			continue
		}
		idx := i
		if first != nil {
			idx = first[s]
		}
		out = append(out, core.LabeledSentence{
			Tokens: tokens,
			Tag:    core.MakeTag(note.ID, idx),
		})
	}
	return out, len(sents)
}
