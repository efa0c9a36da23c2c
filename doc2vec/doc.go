// Package doc2vec implements paragraph-vector embeddings (PV-DM and PV-DBOW)
// trained with negative sampling.
//
// A Model is built in two steps: BuildVocab scans a core.Corpus once to fix
// the vocabulary, tag set, downsampling rates and initial weights; Train then
// runs the configured number of epochs over a worker pool. After training the
// model can be saved, compacted to drop training-only state, and loaded again.
//
//	m, err := doc2vec.New(doc2vec.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	if err := m.BuildVocab(ctx, corpus); err != nil {
//	    return err
//	}
//	if err := m.Train(ctx, corpus); err != nil {
//	    return err
//	}
//	if err := doc2vec.Save("d2v-200", m); err != nil {
//	    return err
//	}
//	m.Compact(doc2vec.CompactOptions{KeepDocVectors: true, KeepInference: true})
//
// The artifact is a single MUS-encoded file. It is specific to this package
// and not readable by other embedding libraries.
package doc2vec
