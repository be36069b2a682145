package model

// FieldValue is the text read for one field, or a fault string standing in for it.
type FieldValue struct {
	ID    string
	Value string
	Fault bool
}

// TargetResult holds the values read from one target, in the target's field order.
type TargetResult struct {
	Target Target
	Fields []FieldValue
}

// Value returns the value stored for id and whether the field exists.
func (r TargetResult) Value(id string) (string, bool) {
	for _, f := range r.Fields {
		if f.ID == id {
			return f.Value, true
		}
	}
	return "", false
}

// Faults counts the fields carrying a fault string.
func (r TargetResult) Faults() int {
	n := 0
	for _, f := range r.Fields {
		if f.Fault {
			n++
		}
	}
	return n
}

// Report is the result of one cycle: one entry per configured target, in configuration order.
type Report struct {
	Results []TargetResult
}
