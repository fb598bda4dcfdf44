package entity

// Patient groups the studies of one patient attribute combination.
type Patient struct {
	Attrs   Attributes
	Studies []*Study
}

// Study is one result row, linked back to its patient group.
type Study struct {
	Attrs   Attributes
	Patient *Patient
	// Offset is the position of the row in the overall result, counting earlier pages.
	Offset int
}

// NewPatient creates a patient group with the given studies.
func NewPatient(attrs Attributes, studies []*Study) *Patient {
	return &Patient{
		Attrs:   attrs,
		Studies: studies,
	}
}

// NewStudy creates a study of patient at the given result offset.
func NewStudy(attrs Attributes, patient *Patient, offset int) *Study {
	return &Study{
		Attrs:   attrs,
		Patient: patient,
		Offset:  offset,
	}
}

// StudyCount returns the number of studies across all patient groups.
func StudyCount(patients []*Patient) int {
	count := 0
	for _, p := range patients {
		count += len(p.Studies)
	}
	return count
}
