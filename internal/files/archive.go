package files

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/oriys/vega/internal/domain"
	"github.com/oriys/vega/internal/metrics"
)

// writeChunkSize bounds how much of one entry's content is handed to
// the compressor per write, so large archives stream instead of
// materializing.
const writeChunkSize = 32 * 1024

// ArchiveName returns the download filename for an app's archive.
func ArchiveName(appID string) string {
	return fmt.Sprintf("app_%s_files.zip", appID)
}

// EntryName normalizes a stored filename for its archive entry,
// appending the category's canonical extension when the stored name
// lacks it. Names that already carry the extension pass through
// unchanged.
func EntryName(filename string, fileType domain.FileType) string {
	ext := fileType.Extension()
	if strings.HasSuffix(filename, ext) {
		return filename
	}
	return filename + ext
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// BuildArchive writes the files into w as a deflate-compressed zip,
// one entry per file in input order, and returns the archive size in
// bytes. Content bytes are copied verbatim. An empty input produces a
// valid empty archive. When w is an http.Flusher the stream is flushed
// after every entry.
func BuildArchive(w io.Writer, entries []domain.StoredFile) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	flusher, _ := w.(http.Flusher)

	for _, f := range entries {
		ew, err := zw.Create(EntryName(f.Filename, f.FileType))
		if err != nil {
			return cw.n, fmt.Errorf("create archive entry %q: %w", f.Filename, err)
		}
		for off := 0; off < len(f.Content); off += writeChunkSize {
			end := min(off+writeChunkSize, len(f.Content))
			if _, err := ew.Write(f.Content[off:end]); err != nil {
				return cw.n, fmt.Errorf("write archive entry %q: %w", f.Filename, err)
			}
		}
		if err := zw.Flush(); err != nil {
			return cw.n, fmt.Errorf("flush archive entry %q: %w", f.Filename, err)
		}
		if flusher != nil {
			flusher.Flush()
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("close archive: %w", err)
	}

	metrics.Global().RecordArchive(len(entries), cw.n)
	return cw.n, nil
}
