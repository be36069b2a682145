package model

// DefaultTag is the element name searched when a target does not set one.
const DefaultTag = "span"

// Target is one status page and the element ids read from it.
type Target struct {
	Name   string
	URL    string
	Tag    string
	Fields []string
}

// ElementTag returns the tag searched for field ids on this target.
func (t Target) ElementTag() string {
	if t.Tag == "" {
		return DefaultTag
	}
	return t.Tag
}
