package contextdoc

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Document is one suite-level reference document: either inline text or a file
// path resolved at load time.
type Document struct {
	ID       string
	Text     string
	FilePath string
}

const delimiter = "\n---\n"

var pdfMagic = []byte("%PDF")

// Loader flattens context documents into one string shared by every case in a
// run.
type Loader struct {
	Logger *slog.Logger
}

// Load concatenates all documents with a "---" delimiter. A document that
// fails to load contributes an inline error marker instead of aborting the
// rest, so one bad document cannot blank out the whole context.
func (l *Loader) Load(docs []Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		part, err := loadOne(d)
		if err != nil {
			if l != nil && l.Logger != nil {
				l.Logger.Warn("context document failed to load", "document", d.ID, "error", err)
			}
			parts = append(parts, fmt.Sprintf("[Error loading context %s]: %v", d.ID, err))
			continue
		}
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, delimiter)
}

func loadOne(d Document) (string, error) {
	if d.Text != "" {
		return d.Text, nil
	}

	path := strings.TrimSpace(d.FilePath)
	if path == "" {
		return "", nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if isPDF(path, b) {
		// PDF content stays opaque; the model sees a clearly marked binary
		// block rather than mangled bytes.
		return fmt.Sprintf("[PDF document %s, base64]\n%s",
			filepath.Base(path), base64.StdEncoding.EncodeToString(b)), nil
	}
	return string(b), nil
}

func isPDF(path string, content []byte) bool {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return true
	}
	return bytes.HasPrefix(content, pdfMagic)
}
