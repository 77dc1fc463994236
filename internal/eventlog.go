package internal

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// OpenEventLog opens the JSONL event log at path for appending. A path with
// a .gz extension is written gzip-compressed; each open appends a fresh gzip
// member, which gzip readers decode as one concatenated stream.
func OpenEventLog(path string) (io.WriteCloser, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".gz") {
		return &gzipEventLog{gz: gzip.NewWriter(file), file: file}, nil
	}
	return file, nil
}

// gzipEventLog couples a gzip stream with its backing file. Close must flush
// the gzip footer before the file closes or the last events are lost.
type gzipEventLog struct {
	gz   *gzip.Writer
	file *os.File
}

func (w *gzipEventLog) Write(p []byte) (int, error) {
	return w.gz.Write(p)
}

func (w *gzipEventLog) Close() error {
	if err := w.gz.Close(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
