package facts

import "fmt"

// ValidationReport separates hard errors, which make a document unusable,
// from per-category warnings meant for a human to review.
type ValidationReport struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether no hard errors were found.
func (r *ValidationReport) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks the structure of the document. It never fails; problems
// are collected in the returned report.
func (d *Document) Validate() *ValidationReport {
	report := &ValidationReport{
		Errors:   []string{},
		Warnings: []string{},
	}

	if !d.IsObject() {
		report.Errors = append(report.Errors, "Root element is not an object")
		return report
	}

	for _, name := range d.Names() {
		obj, ok := d.Categories[name].(map[string]any)
		if !ok {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("Category '%s' is not an object", name))
			continue
		}

		data, ok := obj[DataKey]
		if !ok {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("Category '%s' missing '%s' key", name, DataKey))
			continue
		}

		switch data.(type) {
		case []any, map[string]any:
		default:
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("Category '%s' data is neither list nor object", name))
		}
	}

	return report
}
