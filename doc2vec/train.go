package doc2vec

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/notevec/core"
)

// jobWords is the target number of tokens per training job.
const jobWords = 10000

// ProgressFunc receives the number of tokens processed so far and the total
// for the whole training run. It may be called from several goroutines.
type ProgressFunc func(done, total int64)

type trainOptions struct {
	epochs   int
	progress ProgressFunc
}

// TrainOption configures a Train call.
type TrainOption func(*trainOptions)

// WithEpochs overrides the configured number of passes for one Train call.
func WithEpochs(n int) TrainOption {
	return func(o *trainOptions) {
		o.epochs = n
	}
}

// WithProgress reports training progress.
func WithProgress(fn ProgressFunc) TrainOption {
	return func(o *trainOptions) {
		o.progress = fn
	}
}

// learnFlags selects which weights a training step updates.
type learnFlags struct {
	doc    bool
	words  bool
	hidden bool
}

// buffers is per-job scratch space.
type buffers struct {
	idx   []int
	neu1  []float32
	neu1e []float32
}

func newBuffers(dim int) *buffers {
	return &buffers{neu1: make([]float32, dim), neu1e: make([]float32, dim)}
}

type job struct {
	lo, hi int
	words  int64 // tokens in corpus[lo:hi]
	offset int64 // tokens in the epoch before this job
}

func splitJobs(corpus core.Corpus) ([]job, int64) {
	var jobs []job
	var total int64
	cur := job{}
	for i, s := range corpus {
		cur.words += int64(len(s.Tokens))
		if cur.words >= jobWords || i == len(corpus)-1 {
			cur.hi = i + 1
			jobs = append(jobs, cur)
			total += cur.words
			cur = job{lo: i + 1, offset: total}
		}
	}
	return jobs, total
}

// Train runs the configured number of epochs over the corpus. Each epoch is
// split into jobs executed on a worker pool; workers update shared weights
// without locking. The learning rate decays linearly from Alpha to MinAlpha
// over the whole run. Zero epochs is a no-op.
//
// Sentences whose tag was not seen by BuildVocab are skipped.
func (m *Model) Train(ctx context.Context, corpus core.Corpus, opts ...TrainOption) error {
	if m.compacted {
		return ErrCompacted
	}
	if !m.built() {
		return ErrVocabularyNotBuilt
	}

	o := trainOptions{epochs: m.cfg.Epochs}
	for _, opt := range opts {
		opt(&o)
	}
	if o.epochs <= 0 || len(corpus) == 0 {
		return nil
	}

	pool, err := ants.NewPool(m.cfg.Workers)
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	jobs, epochWords := splitJobs(corpus)
	total := int64(o.epochs) * epochWords
	var done atomic.Int64

	m.logger.Info("training started",
		"epochs", o.epochs,
		"sentences", len(corpus),
		"jobs_per_epoch", len(jobs),
		"mode", m.cfg.Mode.String())

	for epoch := 0; epoch < o.epochs; epoch++ {
		var wg sync.WaitGroup
		for ji, j := range jobs {
			if err := ctx.Err(); err != nil {
				wg.Wait()
				return err
			}
			alpha := m.alphaAt(int64(epoch)*epochWords+j.offset, total)
			src := rand.NewPCG(uint64(m.cfg.Seed), uint64(epoch)<<32|uint64(ji))
			part := corpus[j.lo:j.hi]
			words := j.words

			wg.Add(1)
			err := pool.Submit(func() {
				defer wg.Done()
				m.trainJob(part, alpha, rand.New(src))
				n := done.Add(words)
				if o.progress != nil {
					o.progress(n, total)
				}
			})
			if err != nil {
				wg.Done()
				wg.Wait()
				return fmt.Errorf("submitting training job: %w", err)
			}
		}
		wg.Wait()
		m.logger.Debug("epoch finished", "epoch", epoch+1)
	}
	return ctx.Err()
}

func (m *Model) alphaAt(progress, total int64) float32 {
	if total <= 0 {
		return m.cfg.Alpha
	}
	frac := float32(progress) / float32(total)
	return max(m.cfg.Alpha-(m.cfg.Alpha-m.cfg.MinAlpha)*frac, m.cfg.MinAlpha)
}

func (m *Model) trainJob(part core.Corpus, alpha float32, rng *rand.Rand) {
	dim := m.cfg.VectorSize
	b := newBuffers(dim)
	learn := learnFlags{doc: true, words: true, hidden: true}
	for _, s := range part {
		t, ok := m.tagIndex[s.Tag]
		if !ok {
			continue
		}
		doc := m.docVectors[t*dim : (t+1)*dim]
		m.trainDocument(s.Tokens, doc, m.docLocks[t], alpha, rng, b, learn)
	}
}

// trainDocument runs one pass of the configured algorithm over tokens with
// doc as the tag vector.
func (m *Model) trainDocument(tokens []string, doc []float32, docLock, alpha float32, rng *rand.Rand, b *buffers, learn learnFlags) {
	b.idx = b.idx[:0]
	for _, tok := range tokens {
		i, ok := m.wordIndex[tok]
		if !ok {
			continue
		}
		if keep := m.words[i].Keep; keep < 1 && rng.Float32() > keep {
			continue
		}
		b.idx = append(b.idx, i)
	}
	if len(b.idx) == 0 {
		return
	}

	if m.cfg.Mode == DBOW {
		for _, target := range b.idx {
			clear(b.neu1e)
			m.negativeSample(target, doc, b.neu1e, alpha, rng, learn.hidden)
			if learn.doc {
				axpy(docLock, b.neu1e, doc)
			}
		}
		return
	}

	dim := m.cfg.VectorSize
	window := m.cfg.Window
	for pos, target := range b.idx {
		reduced := rng.IntN(window)
		start := max(0, pos-window+reduced)
		end := min(len(b.idx), pos+window+1-reduced)

		copy(b.neu1, doc)
		count := 1
		for j := start; j < end; j++ {
			if j == pos {
				continue
			}
			w := b.idx[j]
			axpy(1, m.wordVectors[w*dim:(w+1)*dim], b.neu1)
			count++
		}
		inv := 1 / float32(count)
		if m.cfg.DMMean {
			scale(b.neu1, inv)
		}

		clear(b.neu1e)
		m.negativeSample(target, b.neu1, b.neu1e, alpha, rng, learn.hidden)
		if !m.cfg.DMMean {
			scale(b.neu1e, inv)
		}

		if learn.doc {
			axpy(docLock, b.neu1e, doc)
		}
		if learn.words {
			for j := start; j < end; j++ {
				if j == pos {
					continue
				}
				w := b.idx[j]
				axpy(m.wordLocks[w], b.neu1e, m.wordVectors[w*dim:(w+1)*dim])
			}
		}
	}
}

// negativeSample scores the target against l1 plus Negative noise words,
// accumulating the input-layer error in neu1e.
func (m *Model) negativeSample(target int, l1, neu1e []float32, alpha float32, rng *rand.Rand, learnHidden bool) {
	dim := m.cfg.VectorSize
	for d := 0; d <= m.cfg.Negative; d++ {
		word, label := target, float32(1)
		if d > 0 {
			word = m.drawNoise(rng)
			if word == target {
				continue
			}
			label = 0
		}
		row := m.syn1neg[word*dim : (word+1)*dim]
		g := (label - sigmoid(dot(l1, row))) * alpha
		axpy(g, row, neu1e)
		if learnHidden {
			axpy(g, l1, row)
		}
	}
}

func (m *Model) drawNoise(rng *rand.Rand) int {
	r := rng.Uint32N(m.cumTable[len(m.cumTable)-1])
	return sort.Search(len(m.cumTable), func(i int) bool {
		return m.cumTable[i] > r
	})
}
