package converter

import (
	"pacs-study-browser/internal/delivery/dto"
	"pacs-study-browser/internal/domain/entity"
)

// PatientsToResponses flattens patient groups for the wire; the study to patient
// back-reference is dropped.
func PatientsToResponses(patients []*entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(patients))
	for i, patient := range patients {
		studies := make([]dto.StudyResponse, len(patient.Studies))
		for j, study := range patient.Studies {
			studies[j] = dto.StudyResponse{
				Attrs:  study.Attrs,
				Offset: study.Offset,
			}
		}
		responses[i] = dto.PatientResponse{
			Attrs:   patient.Attrs,
			Studies: studies,
		}
	}
	return responses
}

// FilterRequestToModel converts the form state of tab into a filter model. Paging and
// the study size range fall back to the defaults of tab when the request omits them.
func FilterRequestToModel(tab entity.Tab, req *dto.FilterRequest) entity.FilterModel {
	model := entity.DefaultFilterModel(tab)
	model.Aet = req.Aet
	if req.Limit > 0 {
		model.Limit = req.Limit
	}
	model.Offset = req.Offset
	model.OrderBy = req.OrderBy
	model.FuzzyMatching = req.FuzzyMatching

	model.PatientName = req.PatientName
	model.PatientID = req.PatientID
	model.IssuerOfPatientID = req.IssuerOfPatientID

	model.AccessionNumber = req.AccessionNumber
	model.StudyDate = req.StudyDate
	model.StudyTime = req.StudyTime
	model.StudyDescription = req.StudyDescription
	model.ModalitiesInStudy = req.ModalitiesInStudy
	model.InstitutionalDepartmentName = req.InstitutionalDepartmentName
	model.ReferringPhysicianName = req.ReferringPhysicianName
	model.StudyInstanceUID = req.StudyInstanceUID
	if req.StudySizeInKB != nil {
		model.StudySizeInKB = *req.StudySizeInKB
	}
	model.Incomplete = req.Incomplete
	model.RetrieveFailed = req.RetrieveFailed

	model.PatientSex = req.PatientSex
	model.PatientBirthDate = req.PatientBirthDate
	model.OnlyWithStudies = req.OnlyWithStudies

	model.ScheduledStationAETitle = req.ScheduledStationAETitle
	model.ScheduledProcedureStepStartDate = req.ScheduledProcedureStepStartDate
	model.Modality = req.Modality
	model.ScheduledProcedureStepStatus = req.ScheduledProcedureStepStatus
	return model
}
