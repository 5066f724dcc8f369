package components

// List is a scrollable list with a cursor. The completion popup keeps one
// per open popup.
type List struct {
	Items    []string
	Cursor   int
	Offset   int
	PageSize int
}

// NewList creates a list with the given page size.
func NewList(pageSize int) *List {
	return &List{PageSize: pageSize}
}

// SetItems replaces items and resets cursor.
func (l *List) SetItems(items []string) {
	l.Items = items
	l.Cursor = 0
	l.Offset = 0
}

// Retain replaces items but keeps the cursor on the selected item when it
// is still present, so narrowing a popup does not lose the selection.
func (l *List) Retain(items []string) {
	current, ok := l.Current()
	l.SetItems(items)
	if !ok {
		return
	}
	for i, item := range items {
		if item == current {
			l.Cursor = i
			l.scrollTo(i)
			return
		}
	}
}

// Len returns the number of items.
func (l *List) Len() int {
	return len(l.Items)
}

// Down moves the cursor down.
func (l *List) Down() {
	if l.Cursor < len(l.Items)-1 {
		l.Cursor++
		if l.Cursor >= l.Offset+l.PageSize {
			l.Offset++
		}
	}
}

// Up moves the cursor up.
func (l *List) Up() {
	if l.Cursor > 0 {
		l.Cursor--
		if l.Cursor < l.Offset {
			l.Offset--
		}
	}
}

// Visible returns the currently visible items.
func (l *List) Visible() []string {
	if len(l.Items) == 0 {
		return nil
	}
	end := min(l.Offset+l.PageSize, len(l.Items))
	return l.Items[l.Offset:end]
}

// Current returns the item under the cursor.
func (l *List) Current() (string, bool) {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return "", false
	}
	return l.Items[l.Cursor], true
}

// Selected returns the index of the selected item.
func (l *List) Selected() int {
	return l.Cursor
}

// IsSelected returns true if the given absolute index is the cursor.
func (l *List) IsSelected(absIdx int) bool {
	return absIdx == l.Cursor
}

// RelToAbs converts a relative (visible) index to absolute.
func (l *List) RelToAbs(relIdx int) int {
	return l.Offset + relIdx
}

func (l *List) scrollTo(idx int) {
	if l.PageSize <= 0 {
		return
	}
	if idx >= l.Offset+l.PageSize {
		l.Offset = idx - l.PageSize + 1
	}
	if idx < l.Offset {
		l.Offset = idx
	}
}
