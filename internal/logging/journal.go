package logging

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// #region journal-writer
// JournalWriter appends decision records as zstd-compressed JSON lines, one
// file per UTC day.
type JournalWriter struct {
	baseDir string
	prefix  string

	mu     sync.Mutex
	curDay string
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
}

// NewJournalWriter writes files named <prefix>-<YYYY-MM-DD>.jsonl.zst under baseDir.
func NewJournalWriter(baseDir, prefix string) *JournalWriter {
	return &JournalWriter{baseDir: baseDir, prefix: prefix}
}

// Write appends one record.
func (j *JournalWriter) Write(rec DecisionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	day := time.Now().UTC().Format("2006-01-02")
	if day != j.curDay {
		if err := j.rotateLocked(day); err != nil {
			return fmt.Errorf("rotate journal: %w", err)
		}
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := j.w.Write(b); err != nil {
		return err
	}
	if err := j.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := j.w.Flush(); err != nil {
		return err
	}
	return j.enc.Flush()
}

// Close flushes and closes the current file.
func (j *JournalWriter) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closeLocked()
}

// Path returns the file a record written on day would land in.
func (j *JournalWriter) Path(day time.Time) string {
	return filepath.Join(j.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", j.prefix, day.UTC().Format("2006-01-02")))
}

func (j *JournalWriter) rotateLocked(day string) error {
	if err := j.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(j.baseDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(j.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", j.prefix, day))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	j.f = f
	j.enc = enc
	j.w = bufio.NewWriterSize(enc, 32*1024)
	j.curDay = day
	return nil
}

func (j *JournalWriter) closeLocked() error {
	var err1 error
	if j.w != nil {
		_ = j.w.Flush()
	}
	if j.enc != nil {
		err1 = j.enc.Close()
		j.enc = nil
	}
	if j.f != nil {
		_ = j.f.Close()
		j.f = nil
	}
	j.w = nil
	j.curDay = ""
	return err1
}

// #endregion journal-writer

// #region journal-reader
// ReadJournal decodes every record in a journal file. A file still open for
// writing ends mid-frame; the records flushed so far are returned.
func ReadJournal(path string) ([]DecisionRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	return decodeLines(dec)
}

func decodeLines(r io.Reader) ([]DecisionRecord, error) {
	var out []DecisionRecord
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var rec DecisionRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return nil, fmt.Errorf("decode journal line: %w", err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return out, nil
}

// #endregion journal-reader
