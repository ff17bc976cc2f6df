package marker

import (
	"fmt"

	parse "github.com/tdewolff/parse/v2"
)

type lexer struct {
	in    *parse.Input
	start int
}

func newLexer(text string, start int) *lexer {
	in := parse.NewInputString(text)
	in.Move(start)
	in.Skip()
	return &lexer{in: in, start: start}
}

func (l *lexer) eof() bool {
	return l.in.Peek(0) == 0 && l.in.Err() != nil
}

func (l *lexer) fail(err error, format string, args ...any) error {
	if format != "" {
		err = fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
	}
	pe := parse.NewErrorLexer(l.in, "%v", err)
	return &SyntaxError{Err: err, Line: pe.Line, Column: pe.Column, Context: pe.Context}
}

func (l *lexer) skipSpace() {
	for isSpace(l.in.Peek(0)) {
		l.in.Move(1)
	}
}

func (l *lexer) atClosing() bool {
	return l.in.Peek(0) == '}' && l.in.Peek(1) == '}'
}

// tag parses whole tag, input is positioned at Opening.
func (l *lexer) tag() (*Tag, error) {
	l.in.Move(len(Opening))

	// tag name must end here
	switch c := l.in.Peek(0); {
	case l.eof():
		return nil, l.fail(ErrUnterminatedTag, "")
	case !isSpace(c) && !l.atClosing():
		return nil, l.fail(ErrMalformedTag, "unexpected character %q after tag name", c)
	}

	t := &Tag{Start: l.start, Attrs: make(map[string]string)}
	for {
		l.skipSpace()
		if l.atClosing() {
			l.in.Move(len(closing))
			break
		}
		if l.eof() {
			return nil, l.fail(ErrUnterminatedTag, "")
		}

		name, value, err := l.attribute()
		if err != nil {
			return nil, err
		}
		if _, exists := t.Attrs[name]; exists {
			return nil, l.fail(ErrDuplicateAttribute, "%q", name)
		}
		t.Attrs[name] = value

		// attributes must be separated
		if c := l.in.Peek(0); !isSpace(c) && !l.atClosing() && !l.eof() {
			return nil, l.fail(ErrMalformedTag, "unexpected character %q after attribute %q", c, name)
		}
	}
	t.End = l.in.Offset()

	t.Path = t.Attrs[PathAttr]
	if len(t.Path) == 0 {
		return nil, l.fail(ErrMissingPath, "")
	}
	return t, nil
}

// attribute parses name="value".
func (l *lexer) attribute() (string, string, error) {
	l.in.Skip()
	if !isNameStart(l.in.Peek(0)) {
		return "", "", l.fail(ErrMalformedTag, "unexpected character %q, attribute name expected", l.in.Peek(0))
	}
	for isNameChar(l.in.Peek(0)) {
		l.in.Move(1)
	}
	name := string(l.in.Shift())

	l.skipSpace()
	if l.in.Peek(0) != '=' {
		if l.eof() {
			return "", "", l.fail(ErrUnterminatedTag, "")
		}
		return "", "", l.fail(ErrMalformedTag, "'=' expected after attribute %q", name)
	}
	l.in.Move(1)
	l.skipSpace()
	if l.in.Peek(0) != '"' {
		if l.eof() {
			return "", "", l.fail(ErrUnterminatedTag, "")
		}
		return "", "", l.fail(ErrMalformedTag, "quoted value expected for attribute %q", name)
	}
	l.in.Move(1)
	l.in.Skip()

	for l.in.Peek(0) != '"' {
		if l.eof() {
			return "", "", l.fail(ErrUnterminatedValue, "attribute %q", name)
		}
		l.in.Move(1)
	}
	value := string(l.in.Shift())
	l.in.Move(1)
	return name, value, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNameStart(c byte) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || c == '-' || ('0' <= c && c <= '9')
}
