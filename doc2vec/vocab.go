package doc2vec

import (
	"context"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/notevec/core"
)

// cumTableDomain is the range the negative-sampling table is scaled to.
const cumTableDomain = 1<<31 - 1

// nsExponent flattens the unigram distribution used for noise words.
const nsExponent = 0.75

// VocabWord is a retained token.
type VocabWord struct {
	Word  string
	Count int64
	// Keep is the probability an occurrence survives downsampling.
	Keep float32
}

// VocabTag is a sentence tag; Count is how many corpus entries carry it.
type VocabTag struct {
	Tag   string
	Count int64
}

// countWords counts token frequencies over corpus, one shard per worker.
func countWords(ctx context.Context, corpus core.Corpus, workers int) (map[string]int64, int64, error) {
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, 0, err
	}
	defer pool.Release()

	chunk := (len(corpus) + workers - 1) / workers
	shards := make([]map[string]int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		lo := i * chunk
		if lo >= len(corpus) {
			break
		}
		hi := min(lo+chunk, len(corpus))
		part, shard := corpus[lo:hi], i

		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			counts := make(map[string]int64)
			for _, s := range part {
				for _, tok := range s.Tokens {
					counts[tok]++
				}
			}
			shards[shard] = counts
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, 0, err
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	merged := make(map[string]int64)
	for _, shard := range shards {
		for tok, n := range shard {
			merged[tok] += n
			total += n
		}
	}
	return merged, total, nil
}

// retainWords keeps tokens seen at least minCount times, most frequent first.
func retainWords(counts map[string]int64, minCount int) []VocabWord {
	words := make([]VocabWord, 0, len(counts))
	for tok, n := range counts {
		if n >= int64(minCount) {
			words = append(words, VocabWord{Word: tok, Count: n, Keep: 1})
		}
	}
	slices.SortFunc(words, func(a, b VocabWord) int {
		if a.Count != b.Count {
			if a.Count > b.Count {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Word, b.Word)
	})
	return words
}

// collectTags lists unique tags in first-seen order.
func collectTags(corpus core.Corpus) []VocabTag {
	index := make(map[string]int)
	var tags []VocabTag
	for _, s := range corpus {
		i, ok := index[s.Tag]
		if !ok {
			i = len(tags)
			index[s.Tag] = i
			tags = append(tags, VocabTag{Tag: s.Tag})
		}
		tags[i].Count++
	}
	return tags
}

// applySampling sets each word's downsampling keep-probability.
// With threshold t = sample*retained, a word seen c times survives with
// probability (sqrt(c/t)+1)*(t/c), capped at 1.
func applySampling(words []VocabWord, sample float64) {
	var retained int64
	for _, w := range words {
		retained += w.Count
	}
	threshold := sample * float64(retained)
	for i := range words {
		if sample <= 0 {
			words[i].Keep = 1
			continue
		}
		c := float64(words[i].Count)
		p := (math.Sqrt(c/threshold) + 1) * (threshold / c)
		words[i].Keep = float32(min(p, 1))
	}
}

// makeCumTable builds the cumulative table used to draw noise words with
// probability proportional to count^0.75.
func makeCumTable(words []VocabWord) []uint32 {
	var norm float64
	for _, w := range words {
		norm += math.Pow(float64(w.Count), nsExponent)
	}
	table := make([]uint32, len(words))
	var cumulative float64
	for i, w := range words {
		cumulative += math.Pow(float64(w.Count), nsExponent)
		table[i] = uint32(math.Round(cumulative / norm * cumTableDomain))
	}
	if len(table) > 0 {
		table[len(table)-1] = cumTableDomain
	}
	return table
}
