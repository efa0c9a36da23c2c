package core

import (
	"errors"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// ErrMalformedRecord indicates serialized bytes that do not decode to a record.
var ErrMalformedRecord = errors.New("malformed record")

// TagVectorMUS serializes TagVector values in MUS format.
var TagVectorMUS = tagVectorMUS{}

// RunMUS serializes Run values in MUS format.
var RunMUS = runMUS{}

// Float32sMUS serializes float32 slices as a varint length followed by
// fixed-width elements.
var Float32sMUS = float32sMUS{}

type unmarshaler[T any] interface {
	Unmarshal(bs []byte) (T, int, error)
}

// musReader threads offset and first error through a sequence of field reads.
type musReader struct {
	bs  []byte
	n   int
	err error
}

func read[T any](r *musReader, u unmarshaler[T]) (v T) {
	if r.err != nil {
		return v
	}
	v, n, err := u.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

type float32sMUS struct{}

func (float32sMUS) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (float32sMUS) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 || length > (len(bs)-n)/4 {
		return nil, n, ErrMalformedRecord
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, length)
	for i := range v {
		var m int
		v[i], m, err = raw.Float32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (float32sMUS) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

type tagVectorMUS struct{}

func (tagVectorMUS) Marshal(v TagVector, bs []byte) (n int) {
	n = ord.String.Marshal(v.Tag, bs)
	n += varint.Int64.Marshal(v.NoteID, bs[n:])
	n += varint.Int.Marshal(v.Sentence, bs[n:])
	n += Float32sMUS.Marshal(v.Vector, bs[n:])
	return n
}

func (tagVectorMUS) Unmarshal(bs []byte) (v TagVector, n int, err error) {
	r := &musReader{bs: bs}
	v.Tag = read[string](r, ord.String)
	v.NoteID = read[int64](r, varint.Int64)
	v.Sentence = read[int](r, varint.Int)
	v.Vector = read[[]float32](r, Float32sMUS)
	return v, r.n, r.err
}

func (tagVectorMUS) Size(v TagVector) (size int) {
	size = ord.String.Size(v.Tag)
	size += varint.Int64.Size(v.NoteID)
	size += varint.Int.Size(v.Sentence)
	return size + Float32sMUS.Size(v.Vector)
}

type runMUS struct{}

func (runMUS) Marshal(v Run, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += varint.Int.Marshal(int(v.Stage), bs[n:])
	n += ord.String.Marshal(v.Artifact, bs[n:])
	for _, c := range v.counts() {
		n += varint.Int.Marshal(c, bs[n:])
	}
	n += varint.Uint64.Marshal(uint64(v.CorpusDigest), bs[n:])
	n += ord.String.Marshal(v.Error, bs[n:])
	n += varint.Int64.Marshal(v.StartedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(v.UpdatedAt.UnixMicro(), bs[n:])
	return n
}

func (runMUS) Unmarshal(bs []byte) (v Run, n int, err error) {
	r := &musReader{bs: bs}
	v.Id = read[string](r, ord.String)
	v.Stage = Stage(read[int](r, varint.Int))
	v.Artifact = read[string](r, ord.String)
	v.Notes = read[int](r, varint.Int)
	v.Sentences = read[int](r, varint.Int)
	v.Labeled = read[int](r, varint.Int)
	v.MaxSentences = read[int](r, varint.Int)
	v.VocabSize = read[int](r, varint.Int)
	v.Tags = read[int](r, varint.Int)
	v.CorpusDigest = ID(read[uint64](r, varint.Uint64))
	v.Error = read[string](r, ord.String)
	started := read[int64](r, varint.Int64)
	updated := read[int64](r, varint.Int64)
	if r.err != nil {
		return Run{}, r.n, r.err
	}
	v.StartedAt = time.UnixMicro(started).UTC()
	v.UpdatedAt = time.UnixMicro(updated).UTC()
	return v, r.n, nil
}

func (runMUS) Size(v Run) (size int) {
	size = ord.String.Size(v.Id)
	size += varint.Int.Size(int(v.Stage))
	size += ord.String.Size(v.Artifact)
	for _, c := range v.counts() {
		size += varint.Int.Size(c)
	}
	size += varint.Uint64.Size(uint64(v.CorpusDigest))
	size += ord.String.Size(v.Error)
	size += varint.Int64.Size(v.StartedAt.UnixMicro())
	return size + varint.Int64.Size(v.UpdatedAt.UnixMicro())
}

// counts lists the integer counters in wire order.
func (r Run) counts() [6]int {
	return [6]int{r.Notes, r.Sentences, r.Labeled, r.MaxSentences, r.VocabSize, r.Tags}
}
