package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/notevec/core"
	"github.com/poiesic/notevec/doc2vec"
	"github.com/poiesic/notevec/sentence"
)

// Searcher finds the tags of a trained model most similar to free text.
type Searcher struct {
	model  *doc2vec.Model
	index  *Index
	logger *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithIndex uses a prebuilt index instead of indexing the model's tag vectors.
func WithIndex(index *Index) Option {
	return func(s *Searcher) error {
		s.index = index
		return nil
	}
}

// NewSearcher creates a new searcher over a model. The model must retain its
// tag vectors and inference state.
func NewSearcher(model *doc2vec.Model, opts ...Option) (*Searcher, error) {
	if model == nil {
		return nil, ErrModelRequired
	}

	s := &Searcher{
		model:  model,
		logger: slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.index == nil {
		index, err := FromModel(model)
		if err != nil {
			return nil, err
		}
		s.index = index
	}
	s.logger = s.logger.With("component", "searcher")
	return s, nil
}

// Index returns the searcher's index.
func (s *Searcher) Index() *Index {
	return s.index
}

// FindSimilar infers a vector for text and returns up to maxHits nearest tags.
func (s *Searcher) FindSimilar(ctx context.Context, text string, maxHits int) ([]core.SimilarityMatch, error) {
	return s.FindSimilarWithMonitor(ctx, text, maxHits, nil)
}

// FindSimilarWithMonitor is FindSimilar with a monitor receiving callbacks at
// each stage of the search.
func (s *Searcher) FindSimilarWithMonitor(ctx context.Context, text string, maxHits int, monitor SearchMonitor) ([]core.SimilarityMatch, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	monitor.Start(text)

	tokens := sentence.Clean(text)
	monitor.AfterTokenize(tokens)

	vector, err := s.model.InferVector(tokens)
	if err != nil {
		s.logger.Error("error inferring vector for query", "err", err)
		return nil, err
	}
	monitor.AfterInference(vector)

	matches, err := s.index.Nearest(vector, maxHits)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("search complete", "tokens", len(tokens), "hits", len(matches))
	monitor.Finish(matches)
	return matches, nil
}
