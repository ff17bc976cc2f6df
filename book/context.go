package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// ProtocolVersion is mdBook version (major.minor) book model follows.
const ProtocolVersion = "0.4"

// Context is what mdBook passes to preprocessor together with the book.
type Context struct {
	Root          string         `json:"root"`
	Config        map[string]any `json:"config"`
	Renderer      string         `json:"renderer"`
	MdbookVersion string         `json:"mdbook_version"`
}

// SourceDir returns absolute (when root is absolute) path to the book sources.
func (c *Context) SourceDir() string {
	src := "src"
	if b, ok := c.Config["book"].(map[string]any); ok {
		if s, ok := b["src"].(string); ok && len(s) > 0 {
			src = s
		}
	}
	if filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(c.Root, src)
}

// PreprocessorOptions returns [preprocessor.<name>] table from book.toml or
// nil if there is none.
func (c *Context) PreprocessorOptions(name string) map[string]any {
	pp, ok := c.Config["preprocessor"].(map[string]any)
	if !ok {
		return nil
	}
	opts, _ := pp[name].(map[string]any)
	return opts
}

// CompatibleVersion reports whether mdBook which invoked us speaks the same
// protocol version. Only major and minor numbers are compared.
func (c *Context) CompatibleVersion() bool {
	return majorMinor(c.MdbookVersion) == ProtocolVersion
}

func majorMinor(ver string) string {
	ver = strings.TrimPrefix(strings.TrimSpace(ver), "v")
	parts := strings.SplitN(ver, ".", 3)
	if len(parts) < 2 {
		return ver
	}
	for _, p := range parts[:2] {
		if _, err := strconv.Atoi(p); err != nil {
			return ver
		}
	}
	return parts[0] + "." + parts[1]
}

var ErrBadInput = errors.New("malformed preprocessor input")

// ParseInput decodes [context, book] pair mdBook writes to preprocessor
// stdin.
func ParseInput(r io.Reader) (*Context, *Book, error) {
	var pair []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&pair); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrBadInput, err)
	}
	if len(pair) != 2 {
		return nil, nil, fmt.Errorf("%w: expected [context, book], got %d elements", ErrBadInput, len(pair))
	}

	ctx := &Context{}
	if err := json.Unmarshal(pair[0], ctx); err != nil {
		return nil, nil, fmt.Errorf("%w: context: %w", ErrBadInput, err)
	}
	b := &Book{}
	if err := json.Unmarshal(pair[1], b); err != nil {
		return nil, nil, fmt.Errorf("%w: book: %w", ErrBadInput, err)
	}
	return ctx, b, nil
}

// WriteBook encodes book the way mdBook expects it on preprocessor stdout.
func WriteBook(w io.Writer, b *Book) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("unable to encode book: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("unable to write book: %w", err)
	}
	return nil
}
