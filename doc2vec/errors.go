package doc2vec

import (
	"errors"
	"fmt"

	"github.com/poiesic/notevec/core"
)

var (
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid doc2vec config")

	// ErrVocabularyNotBuilt is returned when training or inference runs before BuildVocab.
	ErrVocabularyNotBuilt = errors.New("vocabulary not built")

	// ErrCompacted is returned when a compacted model is asked to build or train.
	ErrCompacted = errors.New("model has been compacted")

	// ErrInferenceUnavailable is returned by InferVector when compaction
	// dropped the structures inference needs.
	ErrInferenceUnavailable = errors.New("inference structures were discarded")

	// ErrInvalidArtifact is returned when an artifact cannot be decoded.
	ErrInvalidArtifact = fmt.Errorf("%w: invalid format", core.ErrArtifact)
)
