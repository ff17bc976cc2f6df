// Package book defines the document tree exchanged with mdBook and its JSON
// wire representation.
package book

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

//go:generate go tool go-enum -f $GOFILE

// ItemKind identifies BookItem variant, names match mdBook JSON tags.
// ENUM(Chapter, Separator, PartTitle)
type ItemKind int

// Book is the whole document tree. Top level keys we do not interpret are
// kept and sent back as is.
type Book struct {
	Sections []BookItem

	// mdBook 0.5 renamed "sections" to "items", remember what we got
	key   string
	extra map[string]json.RawMessage
}

// BookItem is one of Chapter, Separator or PartTitle.
type BookItem struct {
	Kind      ItemKind
	Chapter   *Chapter
	PartTitle string
}

// Chapter holds chapter text and nested items.
type Chapter struct {
	Name        string     `json:"name"`
	Content     string     `json:"content"`
	Number      []int      `json:"number"`
	SubItems    []BookItem `json:"sub_items"`
	Path        *string    `json:"path"`
	SourcePath  *string    `json:"source_path"`
	ParentNames []string   `json:"parent_names"`
}

const (
	sectionsKey      = "sections"
	itemsKey         = "items"
	nonExhaustiveKey = "__non_exhaustive"
)

var ErrUnknownItem = errors.New("unknown book item")

func (b *Book) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("book is null")
	}

	b.key = sectionsKey
	raw, ok := fields[sectionsKey]
	if !ok {
		if raw, ok = fields[itemsKey]; ok {
			b.key = itemsKey
		}
	}
	if !ok {
		return fmt.Errorf("book has neither %q nor %q", sectionsKey, itemsKey)
	}
	delete(fields, b.key)

	b.Sections = nil
	if err := json.Unmarshal(raw, &b.Sections); err != nil {
		return fmt.Errorf("unable to decode %s: %w", b.key, err)
	}
	b.extra = fields
	return nil
}

func (b Book) MarshalJSON() ([]byte, error) {
	key := b.key
	if key == "" {
		key = sectionsKey
	}
	out := make(map[string]any, len(b.extra)+2)
	for k, v := range b.extra {
		out[k] = v
	}
	if key == sectionsKey {
		// mdBook 0.4 expects marker field to be present
		if _, ok := out[nonExhaustiveKey]; !ok {
			out[nonExhaustiveKey] = nil
		}
	}
	out[key] = nonNilItems(b.Sections)
	return json.Marshal(out)
}

func (it *BookItem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		if kind, err := ParseItemKind(name); err != nil || kind != ItemKindSeparator {
			return fmt.Errorf("%w: %q", ErrUnknownItem, name)
		}
		*it = BookItem{Kind: ItemKindSeparator}
		return nil
	}

	var variant map[string]json.RawMessage
	if err := json.Unmarshal(data, &variant); err != nil {
		return err
	}
	if len(variant) != 1 {
		return fmt.Errorf("%w: expected single variant, got %d keys", ErrUnknownItem, len(variant))
	}
	for name, raw := range variant {
		kind, err := ParseItemKind(name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnknownItem, err)
		}
		switch kind {
		case ItemKindChapter:
			ch := &Chapter{}
			if err := json.Unmarshal(raw, ch); err != nil {
				return fmt.Errorf("unable to decode chapter: %w", err)
			}
			*it = BookItem{Kind: ItemKindChapter, Chapter: ch}
		case ItemKindPartTitle:
			var title string
			if err := json.Unmarshal(raw, &title); err != nil {
				return fmt.Errorf("unable to decode part title: %w", err)
			}
			*it = BookItem{Kind: ItemKindPartTitle, PartTitle: title}
		default:
			// separator is never an object
			return fmt.Errorf("%w: %q", ErrUnknownItem, name)
		}
	}
	return nil
}

func (it BookItem) MarshalJSON() ([]byte, error) {
	switch it.Kind {
	case ItemKindChapter:
		if it.Chapter == nil {
			return nil, errors.New("chapter item without chapter")
		}
		return json.Marshal(map[string]*Chapter{ItemKindChapter.String(): it.Chapter})
	case ItemKindSeparator:
		return json.Marshal(ItemKindSeparator.String())
	case ItemKindPartTitle:
		return json.Marshal(map[string]string{ItemKindPartTitle.String(): it.PartTitle})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, it.Kind)
	}
}

// chapterJSON breaks MarshalJSON recursion.
type chapterJSON Chapter

func (c Chapter) MarshalJSON() ([]byte, error) {
	// mdBook uses Vec for these, null is not accepted
	c.SubItems = nonNilItems(c.SubItems)
	if c.ParentNames == nil {
		c.ParentNames = []string{}
	}
	return json.Marshal(chapterJSON(c))
}

func nonNilItems(items []BookItem) []BookItem {
	if items == nil {
		return []BookItem{}
	}
	return items
}

// NewChapter returns chapter item with given name and content. Used when
// books are assembled in code (tests, render command).
func NewChapter(name, content string, subItems ...BookItem) BookItem {
	return BookItem{Kind: ItemKindChapter, Chapter: &Chapter{Name: name, Content: content, SubItems: subItems}}
}

// DisplayName returns chapter name prefixed with section number, as mdBook
// shows it in table of content.
func (c *Chapter) DisplayName() string {
	if len(c.Number) == 0 {
		return c.Name
	}
	var buf bytes.Buffer
	for _, n := range c.Number {
		fmt.Fprintf(&buf, "%d.", n)
	}
	buf.WriteByte(' ')
	buf.WriteString(c.Name)
	return buf.String()
}
