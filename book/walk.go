package book

import "errors"

// SkipChildren could be returned by WalkFunc to skip chapter sub items.
var SkipChildren = errors.New("skip sub items")

// WalkFunc is called for every chapter. Returning error other than
// SkipChildren stops the walk.
type WalkFunc func(ch *Chapter) error

// ForEachChapter visits all chapters in document order: chapter itself
// first, then its sub items. Separators and part titles are skipped.
func (b *Book) ForEachChapter(fn WalkFunc) error {
	return walkItems(b.Sections, fn)
}

func walkItems(items []BookItem, fn WalkFunc) error {
	for i := range items {
		if items[i].Kind != ItemKindChapter || items[i].Chapter == nil {
			continue
		}
		ch := items[i].Chapter
		if err := fn(ch); err != nil {
			if errors.Is(err, SkipChildren) {
				continue
			}
			return err
		}
		if err := walkItems(ch.SubItems, fn); err != nil {
			return err
		}
	}
	return nil
}

// Chapters returns number of chapters in the book including nested ones.
func (b *Book) Chapters() (count int) {
	_ = b.ForEachChapter(func(*Chapter) error {
		count++
		return nil
	})
	return count
}
