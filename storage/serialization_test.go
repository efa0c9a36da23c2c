package storage

import (
	"testing"
	"time"

	"github.com/poiesic/notevec/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalTagVector(t *testing.T) {
	tests := []struct {
		name   string
		vector *core.TagVector
	}{
		{"empty vector", &core.TagVector{Tag: "1-0", NoteID: 1}},
		{"populated", &core.TagVector{Tag: "42-7", NoteID: 42, Sentence: 7, Vector: []float32{0.5, -0.25, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalTagVector(tt.vector)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalTagVector(data)
			require.NoError(t, err)
			assert.Equal(t, tt.vector.Tag, decoded.Tag)
			assert.Equal(t, tt.vector.NoteID, decoded.NoteID)
			assert.Equal(t, tt.vector.Sentence, decoded.Sentence)
			assert.Equal(t, len(tt.vector.Vector), len(decoded.Vector))
			for i := range tt.vector.Vector {
				assert.Equal(t, tt.vector.Vector[i], decoded.Vector[i])
			}
		})
	}
}

func TestMarshalUnmarshalRun(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	run := &core.Run{
		Id:           "0b9f",
		Stage:        core.StageCompacted,
		Artifact:     "d2v-200",
		Notes:        10,
		Sentences:    40,
		Labeled:      38,
		MaxSentences: 9,
		VocabSize:    120,
		Tags:         38,
		CorpusDigest: core.IDFromContent("corpus"),
		Error:        "",
		StartedAt:    now,
		UpdatedAt:    now.Add(time.Second),
	}

	decoded, err := UnmarshalRun(MarshalRun(run))
	require.NoError(t, err)
	assert.Equal(t, run, decoded)
}

func TestUnmarshal_Invalid(t *testing.T) {
	_, err := UnmarshalTagVector(nil)
	assert.ErrorIs(t, err, ErrSerializationFailed)

	_, err = UnmarshalRun([]byte{0xff})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
