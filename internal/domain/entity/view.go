package entity

// FixedHeaderScrollThreshold is the scroll offset in pixels past which the page
// header is pinned and the filter controls are hidden.
const FixedHeaderScrollThreshold = 73

// ViewState holds the presentation flags of the study page.
type ViewState struct {
	Expanded       bool `json:"expanded"`
	FixedHeader    bool `json:"fixedHeader"`
	ContentVisible bool `json:"contentVisible"`
}

// NewViewState returns the flags of a freshly opened page.
func NewViewState() ViewState {
	return ViewState{
		Expanded:       false,
		FixedHeader:    false,
		ContentVisible: true,
	}
}

// ToggleExpand flips the detail panel.
func (v *ViewState) ToggleExpand() {
	v.Expanded = !v.Expanded
}

// Scroll recomputes the header flags for the given scroll position.
func (v *ViewState) Scroll(position int) {
	if position > FixedHeaderScrollThreshold {
		v.FixedHeader = true
		v.ContentVisible = false
		return
	}
	v.FixedHeader = false
	v.ContentVisible = true
}

// StudyPageConfig selects what the study page shows.
type StudyPageConfig struct {
	Tab            Tab            `json:"tab"`
	AccessLocation AccessLocation `json:"accessLocation"`
}

// NotificationLevel tells the front end how to present a notification.
type NotificationLevel string

const (
	NotificationInfo  NotificationLevel = "info"
	NotificationError NotificationLevel = "error"
)

// Notification is a user visible message produced by a page operation.
type Notification struct {
	Level NotificationLevel `json:"level"`
	Text  string            `json:"text"`
}
