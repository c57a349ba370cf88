package facts

// Extract writes the category's value verbatim to outputPath.
func (d *Document) Extract(category, outputPath string) error {
	value, err := d.Category(category)
	if err != nil {
		return err
	}
	return writeJSON(outputPath, value)
}

// FilterItems returns the object items of a list-shaped category whose
// field key holds a string exactly equal to value. Order is preserved.
// No type coercion or nested lookups are performed.
func (d *Document) FilterItems(category, key, value string) ([]any, error) {
	items, err := d.items(category)
	if err != nil {
		return nil, err
	}

	kept := make([]any, 0)
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := obj[key].(string); ok && s == value {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

// Filter runs FilterItems and writes {"data": kept} to outputPath.
// It returns the number of items written.
func (d *Document) Filter(category, key, value, outputPath string) (int, error) {
	kept, err := d.FilterItems(category, key, value)
	if err != nil {
		return 0, err
	}
	if err := writeJSON(outputPath, map[string]any{DataKey: kept}); err != nil {
		return 0, err
	}
	return len(kept), nil
}
