// Package expand replaces json-table tags in book chapters with rendered
// markdown tables.
package expand

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"mdjt/book"
	"mdjt/config"
	"mdjt/marker"
	"mdjt/table"
)

// Expander is bound to a single preprocessor invocation.
type Expander struct {
	cfg  config.TableConfig
	pctx *book.Context
	log  *zap.Logger
	rpt  *config.Report

	// table spec files already copied to debug report
	stored map[string]struct{}
}

// New returns expander for the book described by pctx. Report could be nil.
func New(cfg config.TableConfig, pctx *book.Context, log *zap.Logger, rpt *config.Report) *Expander {
	if pctx == nil {
		pctx = &book.Context{}
	}
	return &Expander{
		cfg:    cfg,
		pctx:   pctx,
		log:    log.Named("expand"),
		rpt:    rpt,
		stored: make(map[string]struct{}),
	}
}

// Book expands tags in every chapter of the book in document order. On error
// book content is left in undefined state and must not be used.
func (e *Expander) Book(ctx context.Context, b *book.Book) error {
	var chapters, tables int

	start := time.Now()
	err := b.ForEachChapter(func(ch *book.Chapter) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := e.Chapter(ch)
		if err != nil {
			return fmt.Errorf("chapter %q: %w", ch.DisplayName(), err)
		}
		chapters++
		tables += n
		return nil
	})
	if err != nil {
		return err
	}

	e.log.Debug("Book processed", zap.Int("chapters", chapters), zap.Int("tables", tables), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Chapter expands tags in a single chapter and returns number of tables
// rendered. Unless expand_all is set only the first tag is replaced, the rest
// are left in the text untouched (and are not even parsed).
func (e *Expander) Chapter(ch *book.Chapter) (int, error) {
	if !marker.Contains(ch.Content) {
		return 0, nil
	}

	text := ch.Content

	var (
		out   strings.Builder
		pos   int
		count int
	)
	out.Grow(len(text))

	for {
		tag, err := marker.FindFrom(text, pos)
		if err != nil {
			return 0, err
		}
		if tag == nil {
			break
		}

		rendered, err := e.render(ch, tag)
		if err != nil {
			return 0, fmt.Errorf("table %q: %w", tag.Path, err)
		}
		out.WriteString(text[pos:tag.Start])
		out.WriteString(rendered)
		pos = tag.End
		count++

		if !e.cfg.ExpandAll {
			break
		}
	}
	out.WriteString(text[pos:])

	ch.Content = out.String()
	return count, nil
}

func (e *Expander) render(ch *book.Chapter, tag *marker.Tag) (string, error) {
	for name, value := range tag.Attrs {
		if name != marker.PathAttr {
			e.log.Debug("Ignoring tag attribute", zap.String("chapter", ch.Name), zap.String("name", name), zap.String("value", value))
		}
	}

	path := e.resolve(ch, tag.Path)

	// stored even when it fails to load
	e.store(tag.Path, path)

	spec, err := table.Load(path)
	if err != nil {
		return "", err
	}

	opts := table.Options{EscapePipes: e.cfg.EscapePipes}
	md := spec.Render(opts)

	if e.cfg.Verify {
		for _, problem := range spec.Verify(md, opts) {
			e.log.Warn("Rendered table may be broken", zap.String("chapter", ch.DisplayName()), zap.String("path", tag.Path), zap.String("problem", problem))
		}
	}

	e.log.Debug("Table expanded", zap.String("chapter", ch.DisplayName()), zap.String("path", tag.Path), zap.String("file", path), zap.Int("rows", len(spec.Rows)))
	return md, nil
}

// resolve returns file name table spec should be read from.
func (e *Expander) resolve(ch *book.Chapter, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	switch e.cfg.Base {
	case config.BaseRoot:
		return filepath.Join(e.pctx.Root, path)
	case config.BaseSrc:
		return filepath.Join(e.pctx.SourceDir(), path)
	case config.BaseChapter:
		// draft chapters have no source, use book sources
		if ch.SourcePath == nil {
			return filepath.Join(e.pctx.SourceDir(), path)
		}
		return filepath.Join(e.pctx.SourceDir(), filepath.Dir(filepath.FromSlash(*ch.SourcePath)), path)
	default:
		// mdBook starts preprocessors in book root
		return path
	}
}

// store copies table spec into debug report under name derived from the path
// as written in the tag, so specs with the same base name do not clash.
func (e *Expander) store(name, path string) {
	if e.rpt == nil {
		return
	}
	key := path
	if abs, err := filepath.Abs(path); err == nil {
		key = abs
	}
	if _, ok := e.stored[key]; ok {
		return
	}
	e.stored[key] = struct{}{}

	ext := filepath.Ext(name)
	if err := e.rpt.StoreCopy("tables/"+slug.Make(strings.TrimSuffix(name, ext))+ext, path); err != nil {
		e.log.Warn("Unable to store table spec in debug report", zap.String("file", path), zap.Error(err))
	}
}
