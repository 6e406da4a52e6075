package selection

import (
	"path/filepath"

	"vocamail/internal/fileutil"
)

// CursorFile is the name of the persisted sequential cursor.
const CursorFile = "seq_state.json"

type cursorState struct {
	StartingSeqNo int `json:"starting_seq_no"`
}

// CursorStore persists the sequential selection cursor.
type CursorStore struct {
	path string
}

// NewCursorStore returns a cursor store for seq_state.json inside dir.
func NewCursorStore(dir string) *CursorStore {
	return &CursorStore{path: filepath.Join(dir, CursorFile)}
}

// Path returns the cursor file location.
func (c *CursorStore) Path() string {
	return c.path
}

// Load returns the persisted cursor. A missing or malformed file reads as 0.
func (c *CursorStore) Load() int {
	var state cursorState
	if _, err := fileutil.ReadJSON(c.path, &state); err != nil || state.StartingSeqNo < 0 {
		return 0
	}
	return state.StartingSeqNo
}

// Save persists value as the cursor.
func (c *CursorStore) Save(value int) error {
	return fileutil.WriteJSONAtomic(c.path, cursorState{StartingSeqNo: value})
}

// NextCursor computes the cursor that governs the next sequential selection:
// current+count, reset to 0 when that reaches or exceeds poolSize.
func NextCursor(current, count, poolSize int) int {
	next := current + count
	if next >= poolSize {
		return 0
	}
	return next
}

// Advance moves the persisted cursor forward before the selection it governs
// and returns the value to select from. The new value is returned even when
// persisting it fails.
func (c *CursorStore) Advance(poolSize, count int) (int, error) {
	next := NextCursor(c.Load(), count, poolSize)
	return next, c.Save(next)
}
