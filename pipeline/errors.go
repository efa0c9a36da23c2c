package pipeline

import "errors"

var (
	// ErrSourceRequired is returned when a note source opener is not provided.
	ErrSourceRequired = errors.New("note source required")

	// ErrArtifactPathRequired is returned when the artifact path is empty.
	ErrArtifactPathRequired = errors.New("artifact path required")

	// ErrInvalidEpochs is returned when a negative epoch count is configured.
	ErrInvalidEpochs = errors.New("epochs must not be negative")

	// ErrNoTagVectors is returned when exporting a model compacted without its tag vectors.
	ErrNoTagVectors = errors.New("model has no tag vectors")
)
