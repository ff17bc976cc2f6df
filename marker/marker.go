// Package marker locates and parses json-table placeholder tags in chapter
// text:
//
//	{{json-table path="tables/example.json"}}
//
// Attribute values are double quoted and cannot contain quotes, there is no
// escaping. Attribute names are case sensitive. Only "path" is meaningful,
// other attributes are parsed and returned as is.
package marker

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Opening is the literal every tag starts with.
	Opening = "{{json-table"
	closing = "}}"

	PathAttr = "path"
)

var (
	ErrMalformedTag       = errors.New("malformed json-table tag")
	ErrUnterminatedValue  = fmt.Errorf("%w: attribute value has no closing quote", ErrMalformedTag)
	ErrUnterminatedTag    = fmt.Errorf("%w: tag is not closed", ErrMalformedTag)
	ErrMissingPath        = fmt.Errorf("%w: path attribute is absent or empty", ErrMalformedTag)
	ErrDuplicateAttribute = fmt.Errorf("%w: duplicate attribute", ErrMalformedTag)
)

// Tag is a single parsed placeholder. Start and End are byte offsets of the
// whole tag in the text it was found in.
type Tag struct {
	Start int
	End   int
	Path  string
	Attrs map[string]string
}

// Raw returns tag text as it appears in source.
func (t *Tag) Raw(text string) string {
	return text[t.Start:t.End]
}

// SyntaxError describes where in the text tag parsing failed.
type SyntaxError struct {
	Err     error
	Line    int
	Column  int
	Context string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v (line %d, column %d)", e.Err, e.Line, e.Column)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Contains reports whether text has anything looking like a tag opening.
func Contains(text string) bool {
	return strings.Contains(text, Opening)
}

// Find locates first tag in text. It returns nil tag and nil error when text
// has no tag opening.
func Find(text string) (*Tag, error) {
	return FindFrom(text, 0)
}

// FindFrom is Find starting at byte offset. Offsets in returned tag are
// relative to the beginning of text.
func FindFrom(text string, offset int) (*Tag, error) {
	if offset < 0 || offset > len(text) {
		return nil, fmt.Errorf("offset %d is out of range [0, %d]", offset, len(text))
	}
	i := strings.Index(text[offset:], Opening)
	if i < 0 {
		return nil, nil
	}
	l := newLexer(text, offset+i)
	return l.tag()
}

// FindAll returns all tags in text in order of appearance. It stops on the
// first malformed tag.
func FindAll(text string) ([]*Tag, error) {
	var tags []*Tag
	for offset := 0; ; {
		t, err := FindFrom(text, offset)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return tags, nil
		}
		tags = append(tags, t)
		offset = t.End
	}
}
