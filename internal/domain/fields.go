package domain

// FieldValues is a snapshot of an entity's watched fields keyed by their
// wire name. Values are plain comparable types; optional numbers are stored
// as nil or float64 so that equality compares contents, not pointers.
type FieldValues map[string]any

// Diff returns the names in fields whose values differ between a and b, in
// the order given.
func (a FieldValues) Diff(b FieldValues, fields []string) []string {
	var changed []string
	for _, f := range fields {
		if a[f] != b[f] {
			changed = append(changed, f)
		}
	}
	return changed
}

func optionalFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
