package table

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Options changes how table is rendered. Zero value produces exactly what
// tags always produced: no escaping at all.
type Options struct {
	// EscapePipes replaces '|' with '\|' in header and cells, so values
	// containing pipes do not break table layout.
	EscapePipes bool
}

const separatorCell = "---"

// Render produces markdown pipe table: header, separator and one line per
// row, every line (including the last one) terminated with '\n'.
func (s *Spec) Render(opts Options) string {
	var buf strings.Builder

	header := make([]string, len(s.Columns))
	separator := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		header[i] = opts.cell(col)
		separator[i] = separatorCell
	}
	writeLine(&buf, header)
	writeLine(&buf, separator)

	cells := make([]string, len(s.Columns))
	for _, row := range s.Rows {
		for i, col := range s.Columns {
			cells[i] = opts.cell(CellText(row[col]))
		}
		writeLine(&buf, cells)
	}
	return buf.String()
}

func writeLine(buf *strings.Builder, cells []string) {
	buf.WriteByte('|')
	buf.WriteString(strings.Join(cells, "|"))
	buf.WriteString("|\n")
}

func (o Options) cell(text string) string {
	if o.EscapePipes {
		return strings.ReplaceAll(text, "|", `\|`)
	}
	return text
}

// CellText returns textual form of a cell value: the value is decoded and
// encoded back as compact JSON, then one surrounding quote is removed from
// each end. This is applied to values of any type, absent value gives empty
// string. Numbers keep digits as written, object keys come out sorted.
func CellText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	text := string(raw)
	if value, err := decodeValue(raw); err == nil {
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(value); err == nil {
			text = strings.TrimSuffix(buf.String(), "\n")
		}
	}
	text = strings.TrimPrefix(text, `"`)
	return strings.TrimSuffix(text, `"`)
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}
