package entity

// AccessLocation selects which part of the AE directory a user works with.
type AccessLocation string

const (
	AccessLocationInternal AccessLocation = "internal"
	AccessLocationExternal AccessLocation = "external"
)

// AccessLocations lists every location in display order.
var AccessLocations = []AccessLocation{AccessLocationExternal, AccessLocationInternal}

// IsValid reports whether l is a known access location.
func (l AccessLocation) IsValid() bool {
	return l == AccessLocationInternal || l == AccessLocationExternal
}

// Aet describes a DICOM application entity known to the archive.
type Aet struct {
	DicomAETitle        string   `json:"dicomAETitle"`
	DicomDescription    string   `json:"dicomDescription,omitempty"`
	DicomDeviceName     string   `json:"dicomDeviceName,omitempty"`
	DcmOtherAETitle     []string `json:"dcmOtherAETitle,omitempty"`
	DcmAcceptedUserRole []string `json:"dcmAcceptedUserRole,omitempty"`
	// AliasOf is set on entries derived from another entry's dcmOtherAETitle.
	AliasOf string `json:"aliasOf,omitempty"`
}

// NewAet creates a descriptor that only carries a title.
func NewAet(title string) Aet {
	return Aet{DicomAETitle: title}
}

// ExtendAetsWithAlias returns aets with one extra entry per alias title, placed right
// after the entry that declares it.
func ExtendAetsWithAlias(aets []Aet) []Aet {
	extended := make([]Aet, 0, len(aets))
	for _, aet := range aets {
		extended = append(extended, aet)
		for _, alias := range aet.DcmOtherAETitle {
			if alias == "" || alias == aet.DicomAETitle {
				continue
			}
			clone := aet
			clone.DicomAETitle = alias
			clone.DcmOtherAETitle = nil
			clone.AliasOf = aet.DicomAETitle
			clone.DicomDescription = "Alias of " + aet.DicomAETitle
			if aet.DicomDescription != "" {
				clone.DicomDescription += " (" + aet.DicomDescription + ")"
			}
			extended = append(extended, clone)
		}
	}
	return extended
}

// DirectoryListing is the unpartitioned AE directory as fetched from the archive.
type DirectoryListing struct {
	Aes  []Aet `json:"aes"`
	Aets []Aet `json:"aets"`
}

// ApplicationEntities is the AE directory of one study page, split per access location.
type ApplicationEntities struct {
	Aes        map[AccessLocation][]Aet `json:"aes"`
	Aets       map[AccessLocation][]Aet `json:"aets"`
	AetsAreSet bool                     `json:"aetsAreSet"`
}

// NewApplicationEntities returns an empty, not yet loaded directory.
func NewApplicationEntities() ApplicationEntities {
	return ApplicationEntities{
		Aes: map[AccessLocation][]Aet{
			AccessLocationExternal: {},
			AccessLocationInternal: {},
		},
		Aets: map[AccessLocation][]Aet{
			AccessLocationExternal: {},
			AccessLocationInternal: {},
		},
	}
}
