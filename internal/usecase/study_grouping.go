package usecase

import (
	"pacs-study-browser/internal/domain/entity"
)

// groupStudies folds result rows into fresh patient groups. Consecutive rows with the
// same patient attributes share a group. limit is the page size the user asked for;
// a row beyond it only tells that more results exist and is dropped.
func groupStudies(rows []entity.Attributes, patientTags []string, offset, limit int) ([]*entity.Patient, bool) {
	var patients []*entity.Patient
	var patient *entity.Patient

	for i, row := range rows {
		patAttrs := entity.ExtractAttrs(row, patientTags)
		if patient == nil || !entity.EqualsIgnoreSpecificCharacterSet(patient.Attrs, patAttrs) {
			patient = entity.NewPatient(patAttrs, nil)
			patients = append(patients, patient)
		}
		patient.Studies = append(patient.Studies, entity.NewStudy(row, patient, offset+i))
	}

	more := limit > 0 && len(rows) > limit
	if more {
		last := patients[len(patients)-1]
		last.Studies = last.Studies[:len(last.Studies)-1]
		if len(last.Studies) == 0 {
			patients = patients[:len(patients)-1]
		}
	}
	return patients, more
}
