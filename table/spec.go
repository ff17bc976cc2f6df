// Package table loads table specs (JSON files with columns and rows) and
// renders them as GitHub flavored markdown pipe tables.
package table

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/h2non/filetype"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "json-table.schema.json"

var ErrInvalidSpec = errors.New("invalid table spec")

// Row maps column name to JSON value as it was written in the file.
type Row map[string]json.RawMessage

// Spec is a loaded table spec. Column order is significant, row keys not
// listed in Columns are ignored when rendering.
type Spec struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Issue is a single problem found in the table spec file. Location is a JSON
// pointer into the document.
type Issue struct {
	Location string
	Message  string
}

// SpecError is returned when file content cannot be used as a table spec.
type SpecError struct {
	Source string
	Issues []Issue
	Cause  error
}

func (e *SpecError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	if len(parts) == 0 && e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return fmt.Sprintf("%v (%s): %s", ErrInvalidSpec, e.Source, strings.Join(parts, "; "))
}

func (e *SpecError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrInvalidSpec}
	}
	return []error{ErrInvalidSpec, e.Cause}
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
})

// Load reads and parses table spec file. Read failures are returned wrapped,
// so errors.Is(err, fs.ErrNotExist) works for absent files.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read table spec: %w", err)
	}
	return Parse(data, path)
}

// Parse validates data against table spec schema and decodes it. Source is
// used in error messages only.
func Parse(data []byte, source string) (*Spec, error) {
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		return nil, &SpecError{Source: source, Issues: []Issue{{Message: fmt.Sprintf("file looks like %s, not JSON", kind.MIME.Value)}}}
	}

	text, enc, err := decodeText(data)
	if err != nil {
		return nil, &SpecError{Source: source, Issues: []Issue{{Message: fmt.Sprintf("unable to decode %s text", enc)}}, Cause: err}
	}

	doc, err := decodeJSON(text)
	if err != nil {
		return nil, &SpecError{Source: source, Issues: []Issue{{Message: err.Error()}}, Cause: err}
	}

	schema, err := compiledSchema()
	if err != nil {
		// embedded schema is broken - nothing user could do about it
		panic(fmt.Sprintf("unable to compile table spec schema: %v", err))
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, &SpecError{Source: source, Issues: collectIssues(verr), Cause: err}
		}
		return nil, &SpecError{Source: source, Issues: []Issue{{Message: err.Error()}}, Cause: err}
	}

	spec := &Spec{}
	if err := json.Unmarshal(text, spec); err != nil {
		// schema passed, so this is not expected
		return nil, &SpecError{Source: source, Issues: []Issue{{Message: err.Error()}}, Cause: err}
	}
	return spec, nil
}

// decodeJSON decodes single JSON value keeping numbers as they were written.
// Anything but whitespace after the value is an error.
func decodeJSON(text []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(text))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file is empty")
		}
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON value at offset %d", dec.InputOffset())
	}
	return doc, nil
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
