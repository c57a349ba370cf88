package facts

// ItemCount applies the counting rule shared by summary, count and diff:
// a list under "data" counts its length, an object under "data" counts as
// one item, and anything else (including a missing "data") counts as zero.
func ItemCount(value any) int {
	obj, ok := value.(map[string]any)
	if !ok {
		return 0
	}
	switch data := obj[DataKey].(type) {
	case []any:
		return len(data)
	case map[string]any:
		return 1
	default:
		return 0
	}
}

// CategoryCount is one row of a summary.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Summary holds per-category item counts and their total.
type Summary struct {
	File       string          `json:"file"`
	Categories []CategoryCount `json:"categories"`
	TotalItems int             `json:"total_items"`
}

// Summarize counts the items of every category, sorted by name.
func (d *Document) Summarize() (*Summary, error) {
	if !d.IsObject() {
		return nil, ErrRootNotObject
	}

	s := &Summary{
		File:       d.Path,
		Categories: make([]CategoryCount, 0, len(d.Categories)),
	}
	for _, name := range d.Names() {
		n := ItemCount(d.Categories[name])
		s.Categories = append(s.Categories, CategoryCount{Category: name, Count: n})
		s.TotalItems += n
	}
	return s, nil
}

// Count returns the item count of a single category.
func (d *Document) Count(category string) (int, error) {
	value, err := d.Category(category)
	if err != nil {
		return 0, err
	}
	return ItemCount(value), nil
}

// List returns all category names, sorted.
func (d *Document) List() ([]string, error) {
	if !d.IsObject() {
		return nil, ErrRootNotObject
	}
	return d.Names(), nil
}
