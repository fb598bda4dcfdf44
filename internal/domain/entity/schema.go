package entity

// FilterField describes one control of the filter form.
type FilterField struct {
	Tag         string         `json:"tag"`
	Type        string         `json:"type,omitempty"`
	FilterKey   string         `json:"filterKey,omitempty"`
	Description string         `json:"description,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Text        string         `json:"text,omitempty"`
	ID          string         `json:"id,omitempty"`
	Options     []SelectOption `json:"options,omitempty"`
}

// SelectOption is a choice of a select control.
type SelectOption struct {
	Value string `json:"value"`
	Text  string `json:"text"`
	Title string `json:"title,omitempty"`
}

// FilterSchema is the declarative layout of one filter panel.
type FilterSchema struct {
	// LineLength is the number of fields per line; nil lets the front end decide.
	LineLength *int          `json:"lineLength,omitempty"`
	Schema     []FilterField `json:"schema"`
}

// ExpandLineLength is the line length of the expandable filter panel.
const ExpandLineLength = 2
