package core

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Category is the note category as stored in the notes table.
type Category int

const (
	// CategoryPhysician selects physician notes.
	CategoryPhysician Category = iota + 1
	// CategorySocialWork selects social work notes.
	CategorySocialWork
)

// String returns the value used in the CATEGORY column.
func (c Category) String() string {
	switch c {
	case CategoryPhysician:
		return "Physician"
	case CategorySocialWork:
		return "Social Work"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// ParseCategory maps a CATEGORY column value to a Category.
// Surrounding whitespace is ignored; the comparison is case-sensitive.
func ParseCategory(s string) (Category, error) {
	switch strings.TrimSpace(s) {
	case "Physician":
		return CategoryPhysician, nil
	case "Social Work":
		return CategorySocialWork, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
}

// NoteRecord is one row of the notes table.
type NoteRecord struct {
	ID       int64
	Category Category
	Text     string // NULL text is loaded as ""
}

// LabeledSentence is the unit of the training corpus: a cleaned token
// sequence and the tag naming the sentence it came from.
type LabeledSentence struct {
	Tokens []string
	Tag    string
}

// Corpus is the ordered training corpus. Tags are not unique.
type Corpus []LabeledSentence

// Tokens returns the total number of tokens in the corpus.
func (c Corpus) Tokens() int {
	n := 0
	for _, s := range c {
		n += len(s.Tokens)
	}
	return n
}

// Digest returns a BLAKE2b-64 digest over every tag and token in order.
// Two corpora with the same sentences in the same order share a digest.
func (c Corpus) Digest() ID {
	h, _ := blake2b.New(8, nil)
	for _, s := range c {
		h.Write([]byte(s.Tag))
		h.Write([]byte{0})
		for _, tok := range s.Tokens {
			h.Write([]byte(tok))
			h.Write([]byte{' '})
		}
		h.Write([]byte{'\n'})
	}
	return ID(binary.LittleEndian.Uint64(h.Sum(nil)))
}

// MakeTag builds the "{note_id}-{sentence_index}" tag of a sentence.
func MakeTag(noteID int64, index int) string {
	return strconv.FormatInt(noteID, 10) + "-" + strconv.Itoa(index)
}

// ParseTag splits a tag produced by MakeTag.
func ParseTag(tag string) (noteID int64, index int, err error) {
	cut := strings.LastIndexByte(tag, '-')
	if cut <= 0 || cut == len(tag)-1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	noteID, err = strconv.ParseInt(tag[:cut], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	index, err = strconv.Atoi(tag[cut+1:])
	if err != nil || index < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	return noteID, index, nil
}

// Stage is a step of the training pipeline's state machine.
type Stage int

const (
	StageIdle Stage = iota
	StageLoaded
	StageLabeled
	StageVocabBuilt
	StageTrained // only entered when training epochs are configured
	StageSaved
	StageCompacted
	StageReleased
)

var stageNames = [...]string{
	StageIdle:       "idle",
	StageLoaded:     "loaded",
	StageLabeled:    "labeled",
	StageVocabBuilt: "vocab_built",
	StageTrained:    "trained",
	StageSaved:      "saved",
	StageCompacted:  "compacted",
	StageReleased:   "released",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Run records one execution of the training pipeline.
type Run struct {
	Id           string
	Stage        Stage // last stage reached
	Artifact     string
	Notes        int
	Sentences    int // sentences found before cleaning
	Labeled      int // corpus entries
	MaxSentences int // most sentences seen in a single note
	VocabSize    int
	Tags         int // unique tags
	CorpusDigest ID
	Error        string // terminal error, empty on success
	StartedAt    time.Time
	UpdatedAt    time.Time
}

// Failed reports whether the run ended with an error.
func (r *Run) Failed() bool {
	return r.Error != ""
}

// TagVector is a trained sentence vector exported from a model.
type TagVector struct {
	Tag      string
	NoteID   int64
	Sentence int
	Vector   []float32
}

// NewTagVector builds a TagVector, deriving the note and sentence from the tag.
func NewTagVector(tag string, vector []float32) (*TagVector, error) {
	noteID, index, err := ParseTag(tag)
	if err != nil {
		return nil, err
	}
	return &TagVector{Tag: tag, NoteID: noteID, Sentence: index, Vector: vector}, nil
}

// SimilarityMatch is a tag ranked by similarity to a query vector.
type SimilarityMatch struct {
	Tag   string
	Score float32
}
