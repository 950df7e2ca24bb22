// Package fingerprint computes content identities for corpus files.
//
// A file's identity is the SHA-256 of its full byte content: two files with
// equal hashes are byte-identical regardless of path or mtime, which is the
// basis for exact-duplicate detection independent of the similarity engine.
package fingerprint

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"
)

// chunkSize is the read granularity for hashing. Files are never loaded
// whole, so arbitrarily large inputs are supported.
const chunkSize = 64 * 1024

// FileRecord describes one analyzed file. Identity is ContentHash.
type FileRecord struct {
	Path        string
	ContentHash string
	ByteSize    int64
	LineCount   int
	ModifiedAt  time.Time
}

// ReadError is returned when a file cannot be fingerprinted: permission
// denied, deleted mid-run, or a read that exceeded the per-file deadline.
// The file is excluded from downstream analysis; the run continues.
type ReadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// Fingerprint computes the FileRecord for path. The context is checked
// between chunks so a stalled read surfaces as a *ReadError instead of
// hanging the run.
func Fingerprint(ctx context.Context, path string) (*FileRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer f.Close()

	hasher := sha256.New()
	buf := make([]byte, chunkSize)

	var size int64
	var lines int
	var lastByte byte

	for {
		if err := ctx.Err(); err != nil {
			return nil, &ReadError{Path: path, Err: err}
		}

		n, err := f.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			hasher.Write(chunk)
			size += int64(n)
			lines += bytes.Count(chunk, []byte{'\n'})
			lastByte = chunk[n-1]
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ReadError{Path: path, Err: err}
		}
	}

	// A trailing partial line still counts as a line.
	if size > 0 && lastByte != '\n' {
		lines++
	}

	return &FileRecord{
		Path:        path,
		ContentHash: hex.EncodeToString(hasher.Sum(nil)),
		ByteSize:    size,
		LineCount:   lines,
		ModifiedAt:  info.ModTime().UTC(),
	}, nil
}

// HashBytes computes the SHA-256 hex digest of in-memory content.
// Used by tests and by candidate ID derivation; file hashing goes through
// Fingerprint so content is streamed.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
