package facts

import "sort"

// CountComparison compares one category present in both documents.
type CountComparison struct {
	Category    string `json:"category"`
	FirstCount  int    `json:"first_count"`
	SecondCount int    `json:"second_count"`
	Equal       bool   `json:"equal"`
}

// DiffReport is the category-level difference between two documents.
type DiffReport struct {
	OnlyInFirst  []string          `json:"only_in_first"`
	OnlyInSecond []string          `json:"only_in_second"`
	Common       []CountComparison `json:"common"`
}

// Diff compares the category sets of d and other, and the item counts of the
// categories they share. All lists are sorted by category name.
func (d *Document) Diff(other *Document) (*DiffReport, error) {
	if !d.IsObject() || !other.IsObject() {
		return nil, ErrRootNotObject
	}

	report := &DiffReport{
		OnlyInFirst:  []string{},
		OnlyInSecond: []string{},
		Common:       []CountComparison{},
	}

	for _, name := range d.Names() {
		otherValue, ok := other.Categories[name]
		if !ok {
			report.OnlyInFirst = append(report.OnlyInFirst, name)
			continue
		}
		first := ItemCount(d.Categories[name])
		second := ItemCount(otherValue)
		report.Common = append(report.Common, CountComparison{
			Category:    name,
			FirstCount:  first,
			SecondCount: second,
			Equal:       first == second,
		})
	}

	for name := range other.Categories {
		if _, ok := d.Categories[name]; !ok {
			report.OnlyInSecond = append(report.OnlyInSecond, name)
		}
	}
	sort.Strings(report.OnlyInSecond)

	return report, nil
}
