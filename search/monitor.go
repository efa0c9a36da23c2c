package search

import "github.com/poiesic/notevec/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterTokenize(tokens []string)
	AfterInference(vector []float32)
	Finish(matches []core.SimilarityMatch)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                  {}
func (n *noopMonitor) AfterTokenize(_ []string)        {}
func (n *noopMonitor) AfterInference(_ []float32)      {}
func (n *noopMonitor) Finish(_ []core.SimilarityMatch) {}
