package book

import (
	"mdjt/utils/debug"
)

const previewRunes = 120

// Dump returns indented text representation of the book for debug report.
func (b *Book) Dump() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "book (%s): %d chapters", b.key, b.Chapters())
	dumpItems(tw, 1, b.Sections)
	return tw.String()
}

func dumpItems(tw *debug.TreeWriter, depth int, items []BookItem) {
	for _, it := range items {
		switch it.Kind {
		case ItemKindSeparator:
			tw.Line(depth, "separator")
		case ItemKindPartTitle:
			tw.Line(depth, "part")
			tw.TextBlock(depth+1, "title", it.PartTitle)
		case ItemKindChapter:
			ch := it.Chapter
			tw.Line(depth, "chapter")
			tw.TextBlock(depth+1, "name", ch.DisplayName())
			if ch.SourcePath != nil {
				tw.TextBlock(depth+1, "source", *ch.SourcePath)
			}
			tw.TextPreview(depth+1, "content", ch.Content, previewRunes)
			if len(ch.SubItems) > 0 {
				dumpItems(tw, depth+1, ch.SubItems)
			}
		}
	}
}
