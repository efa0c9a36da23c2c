package doc2vec

import "fmt"

// Mode selects the paragraph-vector training algorithm.
type Mode int

const (
	// DM is the distributed-memory model: the tag vector and the context
	// words jointly predict each target word.
	DM Mode = iota
	// DBOW is the distributed bag-of-words model: the tag vector alone
	// predicts each word of the sentence.
	DBOW
)

func (m Mode) String() string {
	switch m {
	case DM:
		return "dm"
	case DBOW:
		return "dbow"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Config holds the model hyperparameters.
type Config struct {
	// MinCount drops tokens seen fewer times than this.
	MinCount int
	// Window is the maximum distance between a target and a context word.
	Window int
	// VectorSize is the dimensionality of word and tag vectors.
	VectorSize int
	// Sample is the downsampling threshold for frequent tokens; 0 disables it.
	Sample float64
	// Negative is the number of noise words drawn per prediction.
	Negative int
	// Workers is the size of the worker pool used for counting and training.
	Workers int
	// Epochs is the number of training passes Train makes. 0 builds the
	// vocabulary and initial weights only.
	Epochs int
	// Alpha and MinAlpha bound the linearly decaying learning rate.
	Alpha    float32
	MinAlpha float32
	Mode     Mode
	// DMMean averages the DM input layer instead of summing it.
	DMMean bool
	// Seed makes weight initialization and sampling reproducible.
	Seed int64
}

// DefaultConfig returns the fixed configuration of the notes model.
func DefaultConfig() Config {
	return Config{
		MinCount:   5,
		Window:     10,
		VectorSize: 200,
		Sample:     1e-4,
		Negative:   5,
		Workers:    8,
		Epochs:     0,
		Alpha:      0.025,
		MinAlpha:   0.0001,
		Mode:       DM,
		Seed:       1,
	}
}

// Validate checks that every hyperparameter is usable.
func (c Config) Validate() error {
	switch {
	case c.MinCount < 1:
		return fmt.Errorf("%w: MinCount must be at least 1", ErrInvalidConfig)
	case c.Window < 1:
		return fmt.Errorf("%w: Window must be at least 1", ErrInvalidConfig)
	case c.VectorSize < 1:
		return fmt.Errorf("%w: VectorSize must be at least 1", ErrInvalidConfig)
	case c.Sample < 0:
		return fmt.Errorf("%w: Sample cannot be negative", ErrInvalidConfig)
	case c.Negative < 1:
		return fmt.Errorf("%w: Negative must be at least 1", ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: Workers must be at least 1", ErrInvalidConfig)
	case c.Epochs < 0:
		return fmt.Errorf("%w: Epochs cannot be negative", ErrInvalidConfig)
	case c.Alpha <= 0 || c.MinAlpha < 0 || c.MinAlpha > c.Alpha:
		return fmt.Errorf("%w: need 0 <= MinAlpha <= Alpha and Alpha > 0", ErrInvalidConfig)
	case c.Mode != DM && c.Mode != DBOW:
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidConfig, c.Mode)
	}
	return nil
}
