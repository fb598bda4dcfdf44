package service

import (
	"strconv"

	"pacs-study-browser/internal/domain/entity"
)

type FilterSchemaService interface {
	// GetFilterSchema builds the main (expand false) or the expandable (expand true)
	// filter panel of tab. aes feeds the calling AET select.
	GetFilterSchema(tab entity.Tab, aes []entity.Aet, quantityText entity.QuantityText, expand bool) entity.FilterSchema
}

type filterSchemaService struct{}

func NewFilterSchemaService() FilterSchemaService {
	return &filterSchemaService{}
}

var limitOptions = []int{10, 20, 50, 100, 200}

func (s *filterSchemaService) GetFilterSchema(tab entity.Tab, aes []entity.Aet, quantityText entity.QuantityText, expand bool) entity.FilterSchema {
	var fields []entity.FilterField
	switch tab {
	case entity.TabPatient:
		fields = patientFields(aes, quantityText, expand)
	case entity.TabMWL:
		fields = mwlFields(aes, quantityText, expand)
	default:
		fields = studyFields(aes, quantityText, expand)
	}

	schema := entity.FilterSchema{Schema: fields}
	if expand {
		lineLength := entity.ExpandLineLength
		schema.LineLength = &lineLength
	}
	return schema
}

func studyFields(aes []entity.Aet, quantityText entity.QuantityText, expand bool) []entity.FilterField {
	if !expand {
		return []entity.FilterField{
			input("PatientName", "Patient name"),
			input("PatientID", "Patient ID"),
			input("IssuerOfPatientID", "Issuer of patient"),
			input("AccessionNumber", "Accession number"),
			rangePicker("StudyDate", "Study date"),
			rangePicker("StudyTime", "Study time"),
			{Tag: "modality", FilterKey: "ModalitiesInStudy", Description: "Modality", Placeholder: "Modality"},
			aetSelect(aes),
			limitSelect(),
			submitButton(),
		}
	}
	return []entity.FilterField{
		input("StudyDescription", "Study description"),
		input("InstitutionalDepartmentName", "Institutional department name"),
		input("ReferringPhysicianName", "Referring physician"),
		input("StudyInstanceUID", "Study Instance UID"),
		input("StudySizeInKB", "Study size in KB (range)"),
		checkbox("incomplete", "Only incomplete studies"),
		checkbox("retrievefailed", "Only failed to be retrieved"),
		checkbox("fuzzymatching", "Fuzzy Matching"),
		orderBySelect([]entity.SelectOption{
			{Value: "-StudyDate,-StudyTime", Text: "Study date, newest first"},
			{Value: "StudyDate,StudyTime", Text: "Study date, oldest first"},
			{Value: "PatientName", Text: "Patient name"},
			{Value: "-PatientName", Text: "Patient name, descending"},
		}),
		quantityButton("count", quantityText.Count),
		quantityButton("size", quantityText.Size),
	}
}

func patientFields(aes []entity.Aet, quantityText entity.QuantityText, expand bool) []entity.FilterField {
	if !expand {
		return []entity.FilterField{
			input("PatientName", "Patient name"),
			input("PatientID", "Patient ID"),
			input("IssuerOfPatientID", "Issuer of patient"),
			aetSelect(aes),
			limitSelect(),
			submitButton(),
		}
	}
	return []entity.FilterField{
		{
			Tag:         "select",
			FilterKey:   "PatientSex",
			Description: "Patient sex",
			Placeholder: "Patient sex",
			Options: []entity.SelectOption{
				{Value: "F", Text: "Female"},
				{Value: "M", Text: "Male"},
				{Value: "O", Text: "Other"},
			},
		},
		rangePicker("PatientBirthDate", "Birth date"),
		checkbox("onlyWithStudies", "Only with studies"),
		checkbox("fuzzymatching", "Fuzzy Matching"),
		orderBySelect([]entity.SelectOption{
			{Value: "PatientName", Text: "Patient name"},
			{Value: "-PatientName", Text: "Patient name, descending"},
			{Value: "PatientBirthDate", Text: "Birth date"},
		}),
		quantityButton("count", quantityText.Count),
	}
}

func mwlFields(aes []entity.Aet, quantityText entity.QuantityText, expand bool) []entity.FilterField {
	if !expand {
		return []entity.FilterField{
			input("PatientName", "Patient name"),
			input("PatientID", "Patient ID"),
			input("AccessionNumber", "Accession number"),
			input("ScheduledStationAETitle", "Scheduled station AE title"),
			rangePicker("ScheduledProcedureStepStartDate", "SPS start date"),
			{Tag: "modality", FilterKey: "Modality", Description: "Modality", Placeholder: "Modality"},
			aetSelect(aes),
			limitSelect(),
			submitButton(),
		}
	}
	return []entity.FilterField{
		{
			Tag:         "select",
			FilterKey:   "ScheduledProcedureStepStatus",
			Description: "SPS status",
			Placeholder: "SPS status",
			Options: []entity.SelectOption{
				{Value: "SCHEDULED", Text: "Scheduled"},
				{Value: "ARRIVED", Text: "Arrived"},
				{Value: "READY", Text: "Ready"},
				{Value: "STARTED", Text: "Started"},
				{Value: "DEPARTED", Text: "Departed"},
				{Value: "CANCELED", Text: "Canceled"},
				{Value: "DISCONTINUED", Text: "Discontinued"},
				{Value: "COMPLETED", Text: "Completed"},
			},
		},
		checkbox("fuzzymatching", "Fuzzy Matching"),
		orderBySelect([]entity.SelectOption{
			{Value: "-ScheduledProcedureStepSequence.ScheduledProcedureStepStartDate", Text: "SPS start date, newest first"},
			{Value: "ScheduledProcedureStepSequence.ScheduledProcedureStepStartDate", Text: "SPS start date, oldest first"},
		}),
		quantityButton("count", quantityText.Count),
	}
}

func input(key, description string) entity.FilterField {
	return entity.FilterField{
		Tag:         "input",
		Type:        "text",
		FilterKey:   key,
		Description: description,
		Placeholder: description,
	}
}

func rangePicker(key, description string) entity.FilterField {
	return entity.FilterField{
		Tag:         "range-picker",
		FilterKey:   key,
		Description: description,
	}
}

func checkbox(key, text string) entity.FilterField {
	return entity.FilterField{
		Tag:       "checkbox",
		FilterKey: key,
		Text:      text,
	}
}

func aetSelect(aes []entity.Aet) entity.FilterField {
	options := make([]entity.SelectOption, 0, len(aes))
	for _, aet := range aes {
		options = append(options, entity.SelectOption{
			Value: aet.DicomAETitle,
			Text:  aet.DicomAETitle,
			Title: aet.DicomDescription,
		})
	}
	return entity.FilterField{
		Tag:         "html-select",
		FilterKey:   "aet",
		Description: "AET",
		Placeholder: "AET",
		Options:     options,
	}
}

func limitSelect() entity.FilterField {
	options := make([]entity.SelectOption, 0, len(limitOptions))
	for _, limit := range limitOptions {
		value := strconv.Itoa(limit)
		options = append(options, entity.SelectOption{Value: value, Text: value})
	}
	return entity.FilterField{
		Tag:         "select",
		FilterKey:   "limit",
		Description: "Limit",
		Placeholder: "Limit",
		Options:     options,
	}
}

func orderBySelect(options []entity.SelectOption) entity.FilterField {
	return entity.FilterField{
		Tag:         "select",
		FilterKey:   "orderby",
		Description: "Order by",
		Placeholder: "Order by",
		Options:     options,
	}
}

func quantityButton(id, text string) entity.FilterField {
	return entity.FilterField{
		Tag:  "button",
		ID:   id,
		Text: text,
	}
}

func submitButton() entity.FilterField {
	return entity.FilterField{
		Tag:  "button",
		ID:   "submit",
		Text: "SUBMIT",
	}
}
