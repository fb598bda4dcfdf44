package entity

import (
	"fmt"
	"reflect"
)

// Attribute is a single element of the DICOM JSON model (PS3.18 F.2).
type Attribute struct {
	VR           string        `json:"vr"`
	Value        []interface{} `json:"Value,omitempty"`
	BulkDataURI  string        `json:"BulkDataURI,omitempty"`
	InlineBinary string        `json:"InlineBinary,omitempty"`
}

// Attributes is a flat attribute bag keyed by tag, as returned by the archive per row.
type Attributes map[string]Attribute

// ExtractAttrs copies the attributes whose tag appears in tags.
func ExtractAttrs(attrs Attributes, tags []string) Attributes {
	wanted := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		wanted[tag] = struct{}{}
	}

	extracted := make(Attributes)
	for tag, attr := range attrs {
		if _, ok := wanted[tag]; ok {
			extracted[tag] = attr
		}
	}
	return extracted
}

// EqualsIgnoreSpecificCharacterSet reports whether both bags hold the same attributes,
// not counting Specific Character Set.
func EqualsIgnoreSpecificCharacterSet(a, b Attributes) bool {
	for tag, attr := range a {
		if tag == TagSpecificCharacterSet {
			continue
		}
		other, ok := b[tag]
		if !ok || !reflect.DeepEqual(attr, other) {
			return false
		}
	}
	for tag := range b {
		if tag == TagSpecificCharacterSet {
			continue
		}
		if _, ok := a[tag]; !ok {
			return false
		}
	}
	return true
}

// String returns the first value of tag rendered as text. Person names use their
// alphabetic representation.
func (a Attributes) String(tag string) string {
	attr, ok := a[tag]
	if !ok || len(attr.Value) == 0 {
		return ""
	}

	switch v := attr.Value[0].(type) {
	case string:
		return v
	case map[string]interface{}:
		if name, ok := v["Alphabetic"].(string); ok {
			return name
		}
		return ""
	case float64:
		return fmt.Sprintf("%g", v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Clone returns a shallow copy of the bag.
func (a Attributes) Clone() Attributes {
	clone := make(Attributes, len(a))
	for tag, attr := range a {
		clone[tag] = attr
	}
	return clone
}
