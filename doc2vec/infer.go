package doc2vec

import (
	"math/rand/v2"
	"strings"

	"github.com/poiesic/notevec/core"
)

// defaultInferEpochs is used when the model was configured with no epochs.
const defaultInferEpochs = 5

type inferOptions struct {
	epochs   int
	alpha    float32
	minAlpha float32
}

// InferOption configures InferVector.
type InferOption func(*inferOptions)

// WithInferEpochs sets the number of passes over the tokens.
func WithInferEpochs(n int) InferOption {
	return func(o *inferOptions) {
		o.epochs = n
	}
}

// WithInferAlpha sets the starting and final learning rates.
func WithInferAlpha(alpha, minAlpha float32) InferOption {
	return func(o *inferOptions) {
		o.alpha = alpha
		o.minAlpha = minAlpha
	}
}

// InferVector computes a vector for unseen tokens by training a fresh tag
// vector against the frozen word vectors and output weights. The result is
// deterministic for a given model and token list.
func (m *Model) InferVector(tokens []string, opts ...InferOption) ([]float32, error) {
	if !m.built() {
		return nil, ErrVocabularyNotBuilt
	}
	if m.syn1neg == nil || m.cumTable == nil {
		return nil, ErrInferenceUnavailable
	}

	o := inferOptions{epochs: m.cfg.Epochs, alpha: m.cfg.Alpha, minAlpha: m.cfg.MinAlpha}
	if o.epochs <= 0 {
		o.epochs = defaultInferEpochs
	}
	for _, opt := range opts {
		opt(&o)
	}

	joined := strings.Join(tokens, " ")
	doc := make([]float32, m.cfg.VectorSize)
	m.seedVector(doc, "infer "+joined)

	rng := rand.New(rand.NewPCG(uint64(core.IDFromContent(joined)), uint64(m.cfg.Seed)))
	b := newBuffers(m.cfg.VectorSize)
	learn := learnFlags{doc: true}
	alpha := o.alpha
	step := float32(0)
	if o.epochs > 1 {
		step = (o.alpha - o.minAlpha) / float32(o.epochs-1)
	}
	for e := 0; e < o.epochs; e++ {
		m.trainDocument(tokens, doc, 1, alpha, rng, b, learn)
		alpha -= step
	}
	return doc, nil
}
