package extract

import (
	"fmt"
	"log/slog"
	"strings"
)

const defaultMaxArchiveDepth = 4

// Extractor dispatches raw file bytes to a format-specific text decoder.
// The zero value is not usable; construct with NewExtractor.
type Extractor struct {
	maxArchiveDepth int
	logger          *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithMaxArchiveDepth bounds recursion into nested archives.
// Default is 4 levels.
func WithMaxArchiveDepth(depth int) Option {
	return func(e *Extractor) {
		if depth < 1 {
			depth = 1
		}
		e.maxArchiveDepth = depth
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// NewExtractor creates a text extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		maxArchiveDepth: defaultMaxArchiveDepth,
		logger:          slog.Default().With("component", "extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract decodes file content into plain text based on the filename suffix.
// On failure it returns a placeholder describing the problem and false, so
// downstream aggregation always has something durable to log.
func (e *Extractor) Extract(data []byte, filename string) (string, bool) {
	text, err := e.extract(data, filename, 0)
	if err != nil {
		e.logger.Warn("extraction failed", "file", filename, "err", err)
		return fmt.Sprintf("[error extracting %s: %v]", filename, err), false
	}
	return text, true
}

func (e *Extractor) extract(data []byte, filename string, depth int) (text string, err error) {
	// Third-party decoders can panic on corrupt input; a panic here must be
	// indistinguishable from an ordinary decode error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()

	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".pdf"):
		return extractPDF(data)
	case strings.HasSuffix(name, ".docx"):
		return extractDOCX(data)
	case strings.HasSuffix(name, ".xlsx"):
		return extractXLSX(data)
	case strings.HasSuffix(name, ".xls"):
		return extractXLS(data)
	case strings.HasSuffix(name, ".zip"):
		return e.extractArchive(data, depth)
	default:
		return decodePermissive(data), nil
	}
}

// decodePermissive interprets bytes as UTF-8 text, dropping undecodable
// sequences and NUL bytes instead of failing.
func decodePermissive(data []byte) string {
	s := strings.ToValidUTF8(string(data), "")
	return strings.ReplaceAll(s, "\x00", "")
}
