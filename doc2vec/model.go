package doc2vec

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"math/rand/v2"
	"strconv"

	"github.com/poiesic/notevec/core"
)

// Model is a paragraph-vector model: one vector per retained token, one per
// sentence tag, and the output weights used for negative sampling.
//
// A Model is not safe for concurrent mutation. Train parallelizes internally.
type Model struct {
	cfg Config

	words     []VocabWord
	wordIndex map[string]int
	tags      []VocabTag
	tagIndex  map[string]int

	rawWords  int64 // token occurrences counted by BuildVocab
	sentences int   // corpus entries counted by BuildVocab

	wordVectors []float32 // len(words) x VectorSize
	docVectors  []float32 // len(tags) x VectorSize
	syn1neg     []float32 // len(words) x VectorSize
	wordLocks   []float32
	docLocks    []float32
	cumTable    []uint32

	compacted bool
	logger    *slog.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
	}
}

// New creates an empty model.
func New(cfg Config, opts ...Option) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Model{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "doc2vec")
	return m, nil
}

// Config returns the model's hyperparameters.
func (m *Model) Config() Config {
	return m.cfg
}

// BuildVocab scans the corpus once: it counts tokens, retains those seen at
// least MinCount times, registers every tag, prepares downsampling and the
// noise distribution, and initializes all weights.
//
// It returns core.ErrEmptyCorpus when the corpus is empty or no token
// reaches MinCount.
func (m *Model) BuildVocab(ctx context.Context, corpus core.Corpus) error {
	if m.compacted {
		return ErrCompacted
	}
	if len(corpus) == 0 {
		return fmt.Errorf("%w: no labeled sentences", core.ErrEmptyCorpus)
	}
	for i := range corpus {
		if err := core.ValidateLabeledSentence(&corpus[i]); err != nil {
			return fmt.Errorf("corpus entry %d: %w", i, err)
		}
	}

	counts, raw, err := countWords(ctx, corpus, m.cfg.Workers)
	if err != nil {
		return fmt.Errorf("counting tokens: %w", err)
	}
	words := retainWords(counts, m.cfg.MinCount)
	if len(words) == 0 {
		return fmt.Errorf("%w: no token appears %d or more times", core.ErrEmptyCorpus, m.cfg.MinCount)
	}
	applySampling(words, m.cfg.Sample)

	m.words = words
	m.wordIndex = indexWords(words)
	m.tags = collectTags(corpus)
	m.tagIndex = indexTags(m.tags)
	m.rawWords = raw
	m.sentences = len(corpus)
	m.cumTable = makeCumTable(words)
	m.resetWeights()

	m.logger.Info("vocabulary built",
		"sentences", len(corpus),
		"raw_tokens", raw,
		"unique_tokens", len(counts),
		"retained", len(words),
		"tags", len(m.tags))
	return nil
}

func indexWords(words []VocabWord) map[string]int {
	index := make(map[string]int, len(words))
	for i, w := range words {
		index[w.Word] = i
	}
	return index
}

func indexTags(tags []VocabTag) map[string]int {
	index := make(map[string]int, len(tags))
	for i, t := range tags {
		index[t.Tag] = i
	}
	return index
}

// resetWeights initializes input vectors uniformly in (-0.5, 0.5)/VectorSize,
// each row seeded from its token or tag, and zeroes the output weights.
func (m *Model) resetWeights() {
	dim := m.cfg.VectorSize
	m.wordVectors = make([]float32, len(m.words)*dim)
	for i, w := range m.words {
		m.seedVector(m.wordVectors[i*dim:(i+1)*dim], w.Word)
	}
	m.docVectors = make([]float32, len(m.tags)*dim)
	for i, t := range m.tags {
		m.seedVector(m.docVectors[i*dim:(i+1)*dim], "tag "+t.Tag)
	}
	m.syn1neg = make([]float32, len(m.words)*dim)
	m.wordLocks = ones(len(m.words))
	m.docLocks = ones(len(m.tags))
}

func (m *Model) seedVector(v []float32, key string) {
	id := core.IDFromContent(strconv.FormatInt(m.cfg.Seed, 10) + " " + key)
	rng := rand.New(rand.NewPCG(uint64(id), uint64(m.cfg.Seed)))
	inv := 1 / float32(len(v))
	for i := range v {
		v[i] = (rng.Float32() - 0.5) * inv
	}
}

func ones(n int) []float32 {
	v := make([]float32, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func (m *Model) built() bool {
	return len(m.words) > 0
}

// VocabSize returns the number of retained tokens.
func (m *Model) VocabSize() int {
	return len(m.words)
}

// Words returns the retained tokens, most frequent first.
func (m *Model) Words() []VocabWord {
	return m.words
}

// Tags returns the unique tags in first-seen order.
func (m *Model) Tags() []VocabTag {
	return m.tags
}

// Compacted reports whether Compact has been applied.
func (m *Model) Compacted() bool {
	return m.compacted
}

// HasDocVectors reports whether per-tag vectors are available.
func (m *Model) HasDocVectors() bool {
	return m.docVectors != nil && len(m.tags) > 0
}

// WordVector returns the vector of a retained token. The slice aliases the
// model's weights and must not be modified.
func (m *Model) WordVector(word string) ([]float32, bool) {
	i, ok := m.wordIndex[word]
	if !ok {
		return nil, false
	}
	dim := m.cfg.VectorSize
	return m.wordVectors[i*dim : (i+1)*dim], true
}

// DocVector returns the vector of a tag. The slice aliases the model's
// weights and must not be modified.
func (m *Model) DocVector(tag string) ([]float32, bool) {
	if m.docVectors == nil {
		return nil, false
	}
	i, ok := m.tagIndex[tag]
	if !ok {
		return nil, false
	}
	dim := m.cfg.VectorSize
	return m.docVectors[i*dim : (i+1)*dim], true
}

// DocVectors iterates over every tag and its vector in tag order.
// It yields nothing when tag vectors were discarded.
func (m *Model) DocVectors() iter.Seq2[string, []float32] {
	return func(yield func(string, []float32) bool) {
		if m.docVectors == nil {
			return
		}
		dim := m.cfg.VectorSize
		for i, t := range m.tags {
			if !yield(t.Tag, m.docVectors[i*dim:(i+1)*dim]) {
				return
			}
		}
	}
}

// CompactOptions selects what Compact keeps.
type CompactOptions struct {
	// KeepDocVectors keeps the per-tag vectors.
	KeepDocVectors bool
	// KeepInference keeps the output weights, word lock factors and the
	// noise table needed by InferVector.
	KeepInference bool
}

// Compact discards training-only state. Tag lock factors are always
// dropped. Compaction is irreversible: BuildVocab and Train fail afterwards.
func (m *Model) Compact(opts CompactOptions) {
	m.docLocks = nil
	if !opts.KeepInference {
		m.syn1neg = nil
		m.wordLocks = nil
		m.cumTable = nil
	}
	if !opts.KeepDocVectors {
		m.docVectors = nil
	}
	m.compacted = true
	m.logger.Debug("model compacted",
		"keep_doc_vectors", opts.KeepDocVectors,
		"keep_inference", opts.KeepInference)
}
