package badger

import (
	"encoding/binary"
	"strconv"
	"time"
)

// Key prefixes for different data types
const (
	tagVectorPrefix = "tagvec"
	runPrefix       = "run"
	runDatePrefix   = "rund"
)

// makeTagVectorKey generates a key for a tag vector.
// Format: prefix:tag, where tags are "{note_id}-{sentence_index}".
func makeTagVectorKey(tag string) []byte {
	return []byte(tagVectorPrefix + ":" + tag)
}

// makeNoteVectorPrefix generates the key prefix shared by every sentence
// of a note. The trailing '-' keeps note 1 from matching note 12.
func makeNoteVectorPrefix(noteID int64) []byte {
	return []byte(tagVectorPrefix + ":" + strconv.FormatInt(noteID, 10) + "-")
}

// makeRunKey generates a key for a run record by ID.
func makeRunKey(id string) []byte {
	return []byte(runPrefix + ":" + id)
}

// makeRunDateKey generates a composite key for the run start-time index.
// Format: prefix:timestamp:id
func makeRunDateKey(startedAt time.Time, id string) []byte {
	prefix := []byte(runDatePrefix + ":")
	buf := make([]byte, len(prefix)+8+len(id))
	offset := copy(buf, prefix)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(startedAt.UnixMicro()))
	offset += 8
	copy(buf[offset:], id)
	return buf
}

// runIDFromDateKey extracts the run ID from a start-time index key.
func runIDFromDateKey(key []byte) string {
	return string(key[len(runDatePrefix)+1+8:])
}
