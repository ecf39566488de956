package walker

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// JournalEntry is the pre-image of one rotated record: everything needed to
// put the record back at its old version by hand.
type JournalEntry struct {
	RunID       string            `json:"run_id"`
	Collection  string            `json:"collection"`
	ID          int64             `json:"id"`
	FromVersion int               `json:"from_version"`
	ToVersion   int               `json:"to_version"`
	Encrypted   map[string][]byte `json:"encrypted,omitempty"`
	Index       map[string]string `json:"index,omitempty"`
	At          time.Time         `json:"at"`
}

// Journal writes zstd-compressed JSON lines. Each Open/Close pair produces
// one zstd frame, so a file appended to by several runs stays readable.
type Journal struct {
	mu     sync.Mutex
	zw     *zstd.Encoder
	enc    *json.Encoder
	file   *os.File
	closed bool
}

// OpenJournal opens (or creates) the journal file at path for appending.
func OpenJournal(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	j, err := NewJournal(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	j.file = f
	return j, nil
}

// NewJournal writes journal entries to w. Closing the journal does not close w.
func NewJournal(w io.Writer) (*Journal, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("creating journal encoder: %w", err)
	}
	return &Journal{zw: zw, enc: json.NewEncoder(zw)}, nil
}

// Record appends one entry. Entries are buffered until Flush.
func (j *Journal) Record(entry JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return errors.New("journal is closed")
	}
	if err := j.enc.Encode(entry); err != nil {
		return fmt.Errorf("writing journal entry %d: %w", entry.ID, err)
	}
	return nil
}

// Flush pushes buffered entries to the underlying file and syncs it. Called
// before every batch commit, so a committed rotation always has its
// pre-image on disk.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.zw.Flush(); err != nil {
		return fmt.Errorf("flushing journal: %w", err)
	}
	if j.file != nil {
		if err := j.file.Sync(); err != nil {
			return fmt.Errorf("syncing journal: %w", err)
		}
	}
	return nil
}

// Close ends the zstd frame and closes the file opened by OpenJournal.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.closed {
		return nil
	}
	j.closed = true

	err := j.zw.Close()
	if j.file != nil {
		err = errors.Join(err, j.file.Close())
	}
	return err
}

// ReadJournal decodes every entry from a journal stream.
func ReadJournal(r io.Reader) ([]JournalEntry, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("creating journal decoder: %w", err)
	}
	defer zr.Close()

	var entries []JournalEntry
	dec := json.NewDecoder(zr)
	for {
		var entry JournalEntry
		if err := dec.Decode(&entry); err != nil {
			if errors.Is(err, io.EOF) {
				return entries, nil
			}
			return entries, fmt.Errorf("reading journal entry %d: %w", len(entries)+1, err)
		}
		entries = append(entries, entry)
	}
}

// ReadJournalFile decodes every entry from the journal file at path.
func ReadJournalFile(path string) ([]JournalEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()
	return ReadJournal(f)
}
