package doc2vec

import (
	"fmt"
	"os"

	"github.com/google/renameio"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/notevec/core"
)

const (
	artifactMagic   = "notevec/doc2vec"
	artifactVersion = 1
)

// encoder runs a field sequence either to size the output or to write it.
type encoder struct {
	buf    []byte
	n      int
	sizing bool
}

func (e *encoder) putString(v string) {
	if e.sizing {
		e.n += ord.String.Size(v)
		return
	}
	e.n += ord.String.Marshal(v, e.buf[e.n:])
}

func (e *encoder) putInt(v int) {
	if e.sizing {
		e.n += varint.Int.Size(v)
		return
	}
	e.n += varint.Int.Marshal(v, e.buf[e.n:])
}

func (e *encoder) putInt64(v int64) {
	if e.sizing {
		e.n += varint.Int64.Size(v)
		return
	}
	e.n += varint.Int64.Marshal(v, e.buf[e.n:])
}

func (e *encoder) putUint32(v uint32) {
	if e.sizing {
		e.n += varint.Uint32.Size(v)
		return
	}
	e.n += varint.Uint32.Marshal(v, e.buf[e.n:])
}

func (e *encoder) putFloat32(v float32) {
	if e.sizing {
		e.n += raw.Float32.Size(v)
		return
	}
	e.n += raw.Float32.Marshal(v, e.buf[e.n:])
}

func (e *encoder) putFloat64(v float64) {
	if e.sizing {
		e.n += raw.Float64.Size(v)
		return
	}
	e.n += raw.Float64.Marshal(v, e.buf[e.n:])
}

func (e *encoder) putBool(v bool) {
	if e.sizing {
		e.n += ord.Bool.Size(v)
		return
	}
	e.n += ord.Bool.Marshal(v, e.buf[e.n:])
}

func (e *encoder) putFloats(v []float32) {
	if e.sizing {
		e.n += core.Float32sMUS.Size(v)
		return
	}
	e.n += core.Float32sMUS.Marshal(v, e.buf[e.n:])
}

// decoder reads fields in order, keeping the first error.
type decoder struct {
	bs  []byte
	n   int
	err error
}

type unmarshaler[T any] interface {
	Unmarshal(bs []byte) (T, int, error)
}

func read[T any](d *decoder, u unmarshaler[T]) (v T) {
	if d.err != nil {
		return v
	}
	v, n, err := u.Unmarshal(d.bs[d.n:])
	d.n += n
	d.err = err
	return v
}

func (m *Model) encode(e *encoder) {
	e.putString(artifactMagic)
	e.putInt(artifactVersion)

	c := m.cfg
	e.putInt(c.MinCount)
	e.putInt(c.Window)
	e.putInt(c.VectorSize)
	e.putFloat64(c.Sample)
	e.putInt(c.Negative)
	e.putInt(c.Workers)
	e.putInt(c.Epochs)
	e.putFloat32(c.Alpha)
	e.putFloat32(c.MinAlpha)
	e.putInt(int(c.Mode))
	e.putBool(c.DMMean)
	e.putInt64(c.Seed)

	e.putBool(m.compacted)
	e.putInt64(m.rawWords)
	e.putInt(m.sentences)

	e.putInt(len(m.words))
	for _, w := range m.words {
		e.putString(w.Word)
		e.putInt64(w.Count)
		e.putFloat32(w.Keep)
	}
	e.putInt(len(m.tags))
	for _, t := range m.tags {
		e.putString(t.Tag)
		e.putInt64(t.Count)
	}

	e.putFloats(m.wordVectors)
	e.putFloats(m.docVectors)
	e.putFloats(m.syn1neg)
	e.putFloats(m.wordLocks)
	e.putFloats(m.docLocks)
	e.putInt(len(m.cumTable))
	for _, v := range m.cumTable {
		e.putUint32(v)
	}
}

// Encode serializes the model.
func Encode(m *Model) []byte {
	sizer := &encoder{sizing: true}
	m.encode(sizer)
	w := &encoder{buf: make([]byte, sizer.n)}
	m.encode(w)
	return w.buf[:w.n]
}

// Decode deserializes a model written by Encode.
func Decode(data []byte, opts ...Option) (*Model, error) {
	d := &decoder{bs: data}
	if magic := read[string](d, ord.String); d.err != nil || magic != artifactMagic {
		return nil, fmt.Errorf("%w: bad header", ErrInvalidArtifact)
	}
	if v := read[int](d, varint.Int); d.err == nil && v != artifactVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidArtifact, v)
	}

	var c Config
	c.MinCount = read[int](d, varint.Int)
	c.Window = read[int](d, varint.Int)
	c.VectorSize = read[int](d, varint.Int)
	c.Sample = read[float64](d, raw.Float64)
	c.Negative = read[int](d, varint.Int)
	c.Workers = read[int](d, varint.Int)
	c.Epochs = read[int](d, varint.Int)
	c.Alpha = read[float32](d, raw.Float32)
	c.MinAlpha = read[float32](d, raw.Float32)
	c.Mode = Mode(read[int](d, varint.Int))
	c.DMMean = read[bool](d, ord.Bool)
	c.Seed = read[int64](d, varint.Int64)
	if d.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, d.err)
	}

	m, err := New(c, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	m.compacted = read[bool](d, ord.Bool)
	m.rawWords = read[int64](d, varint.Int64)
	m.sentences = read[int](d, varint.Int)

	if n := read[int](d, varint.Int); d.err == nil {
		if n < 0 || n > len(data) {
			return nil, fmt.Errorf("%w: word count %d", ErrInvalidArtifact, n)
		}
		m.words = make([]VocabWord, n)
		for i := range m.words {
			m.words[i].Word = read[string](d, ord.String)
			m.words[i].Count = read[int64](d, varint.Int64)
			m.words[i].Keep = read[float32](d, raw.Float32)
		}
	}
	if n := read[int](d, varint.Int); d.err == nil {
		if n < 0 || n > len(data) {
			return nil, fmt.Errorf("%w: tag count %d", ErrInvalidArtifact, n)
		}
		m.tags = make([]VocabTag, n)
		for i := range m.tags {
			m.tags[i].Tag = read[string](d, ord.String)
			m.tags[i].Count = read[int64](d, varint.Int64)
		}
	}

	m.wordVectors = read[[]float32](d, core.Float32sMUS)
	m.docVectors = read[[]float32](d, core.Float32sMUS)
	m.syn1neg = read[[]float32](d, core.Float32sMUS)
	m.wordLocks = read[[]float32](d, core.Float32sMUS)
	m.docLocks = read[[]float32](d, core.Float32sMUS)
	if n := read[int](d, varint.Int); d.err == nil && n > 0 {
		if n > len(data) {
			return nil, fmt.Errorf("%w: table size %d", ErrInvalidArtifact, n)
		}
		m.cumTable = make([]uint32, n)
		for i := range m.cumTable {
			m.cumTable[i] = read[uint32](d, varint.Uint32)
		}
	}
	if d.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, d.err)
	}

	if len(m.words) > 0 {
		m.wordIndex = indexWords(m.words)
	}
	if len(m.tags) > 0 {
		m.tagIndex = indexTags(m.tags)
	}
	if err := m.checkShapes(); err != nil {
		return nil, err
	}
	return m, nil
}

// checkShapes verifies every matrix is either absent or sized for the vocabulary.
func (m *Model) checkShapes() error {
	dim := m.cfg.VectorSize
	shapes := []struct {
		name string
		got  int
		want int
	}{
		{"word vectors", len(m.wordVectors), len(m.words) * dim},
		{"doc vectors", len(m.docVectors), len(m.tags) * dim},
		{"output weights", len(m.syn1neg), len(m.words) * dim},
		{"word locks", len(m.wordLocks), len(m.words)},
		{"doc locks", len(m.docLocks), len(m.tags)},
		{"noise table", len(m.cumTable), len(m.words)},
	}
	for _, s := range shapes {
		if s.got != 0 && s.got != s.want {
			return fmt.Errorf("%w: %s has %d entries, want %d", ErrInvalidArtifact, s.name, s.got, s.want)
		}
	}
	return nil
}

// Save writes the model to path atomically; a failed save leaves any
// existing file untouched and no partial file behind.
func Save(path string, m *Model) error {
	if err := renameio.WriteFile(path, Encode(m), 0o644); err != nil {
		return fmt.Errorf("%w: saving %s: %w", core.ErrArtifact, path, err)
	}
	return nil
}

// Load reads a model saved by Save.
func Load(path string, opts ...Option) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %s: %w", core.ErrArtifact, path, err)
	}
	m, err := Decode(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return m, nil
}
