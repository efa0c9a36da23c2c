package core

import (
	"reflect"
	"testing"
	"time"
)

func TestRunMUS_RoundTrip(t *testing.T) {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	run := Run{
		Id:           "5f0c2a8e-run",
		Stage:        StageCompacted,
		Artifact:     "d2v-200",
		Notes:        2700,
		Sentences:    51234,
		Labeled:      50011,
		MaxSentences: 311,
		VocabSize:    9120,
		Tags:         48000,
		CorpusDigest: IDFromContent("corpus"),
		StartedAt:    started,
		UpdatedAt:    started.Add(90 * time.Second),
	}

	buf := make([]byte, RunMUS.Size(run))
	n := RunMUS.Marshal(run, buf)
	if n != len(buf) {
		t.Fatalf("Marshal() wrote %d bytes, Size() reported %d", n, len(buf))
	}

	got, m, err := RunMUS.Unmarshal(buf)
	if err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}
	if m != n {
		t.Errorf("Unmarshal() read %d bytes, want %d", m, n)
	}
	if !reflect.DeepEqual(got, run) {
		t.Errorf("Unmarshal() = %+v, want %+v", got, run)
	}
}

func TestTagVectorMUS_Truncated(t *testing.T) {
	tv := TagVector{Tag: "9-1", NoteID: 9, Sentence: 1, Vector: []float32{0.5, -0.25, 1}}
	buf := make([]byte, TagVectorMUS.Size(tv))
	TagVectorMUS.Marshal(tv, buf)

	if _, _, err := TagVectorMUS.Unmarshal(buf[:len(buf)-5]); err == nil {
		t.Errorf("Unmarshal() of truncated bytes succeeded")
	}
}
