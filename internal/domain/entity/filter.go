package entity

import (
	"net/url"
	"strconv"
)

// Tab is the display mode of the study page, taken from the route.
type Tab string

const (
	TabStudy   Tab = "study"
	TabPatient Tab = "patient"
	TabMWL     Tab = "mwl"
)

// IsValid reports whether t is a known tab.
func (t Tab) IsValid() bool {
	switch t {
	case TabStudy, TabPatient, TabMWL:
		return true
	}
	return false
}

// Resource returns the QIDO resource path segment queried for the tab.
func (t Tab) Resource() string {
	switch t {
	case TabPatient:
		return "patients"
	case TabMWL:
		return "mwlitems"
	default:
		return "studies"
	}
}

const (
	DefaultLimit         = 20
	DefaultStudySizeInKB = "1000-"
)

// FilterModel is the bound state of the filter form. Tab decides which of the
// tab-specific fields are sent to the archive.
type FilterModel struct {
	Tab           Tab    `json:"tab"`
	Aet           string `json:"aet,omitempty"`
	Limit         int    `json:"limit"`
	Offset        int    `json:"offset"`
	OrderBy       string `json:"orderby,omitempty"`
	FuzzyMatching bool   `json:"fuzzymatching,omitempty"`

	PatientName       string `json:"PatientName,omitempty"`
	PatientID         string `json:"PatientID,omitempty"`
	IssuerOfPatientID string `json:"IssuerOfPatientID,omitempty"`

	// study
	AccessionNumber             string `json:"AccessionNumber,omitempty"`
	StudyDate                   string `json:"StudyDate,omitempty"`
	StudyTime                   string `json:"StudyTime,omitempty"`
	StudyDescription            string `json:"StudyDescription,omitempty"`
	ModalitiesInStudy           string `json:"ModalitiesInStudy,omitempty"`
	InstitutionalDepartmentName string `json:"InstitutionalDepartmentName,omitempty"`
	ReferringPhysicianName      string `json:"ReferringPhysicianName,omitempty"`
	StudyInstanceUID            string `json:"StudyInstanceUID,omitempty"`
	StudySizeInKB               string `json:"StudySizeInKB,omitempty"`
	Incomplete                  bool   `json:"incomplete,omitempty"`
	RetrieveFailed              bool   `json:"retrievefailed,omitempty"`

	// patient
	PatientSex       string `json:"PatientSex,omitempty"`
	PatientBirthDate string `json:"PatientBirthDate,omitempty"`
	OnlyWithStudies  bool   `json:"onlyWithStudies,omitempty"`

	// mwl
	ScheduledStationAETitle         string `json:"ScheduledStationAETitle,omitempty"`
	ScheduledProcedureStepStartDate string `json:"ScheduledProcedureStepStartDate,omitempty"`
	Modality                        string `json:"Modality,omitempty"`
	ScheduledProcedureStepStatus    string `json:"ScheduledProcedureStepStatus,omitempty"`
}

// DefaultFilterModel returns the initial filter model for tab.
func DefaultFilterModel(tab Tab) FilterModel {
	model := FilterModel{
		Tab:    tab,
		Limit:  DefaultLimit,
		Offset: 0,
	}
	if tab == TabStudy {
		model.StudySizeInKB = DefaultStudySizeInKB
	}
	return model
}

// Clone returns an independent copy of the model.
func (m FilterModel) Clone() FilterModel {
	return m
}

// Params renders the model as archive query parameters. The calling AET is not a
// query parameter and never appears here.
func (m FilterModel) Params() url.Values {
	params := url.Values{}
	set := func(key, value string) {
		if value != "" {
			params.Set(key, value)
		}
	}
	flag := func(key string, on bool) {
		if on {
			params.Set(key, "true")
		}
	}

	if m.Limit > 0 {
		params.Set("limit", strconv.Itoa(m.Limit))
	}
	if m.Offset > 0 {
		params.Set("offset", strconv.Itoa(m.Offset))
	}
	set("orderby", m.OrderBy)
	flag("fuzzymatching", m.FuzzyMatching)
	params.Set("includefield", "all")

	set("PatientName", m.PatientName)
	set("PatientID", m.PatientID)
	set("IssuerOfPatientID", m.IssuerOfPatientID)

	switch m.Tab {
	case TabPatient:
		set("PatientSex", m.PatientSex)
		set("PatientBirthDate", m.PatientBirthDate)
		flag("onlyWithStudies", m.OnlyWithStudies)
	case TabMWL:
		set("ScheduledProcedureStepSequence.ScheduledStationAETitle", m.ScheduledStationAETitle)
		set("ScheduledProcedureStepSequence.ScheduledProcedureStepStartDate", m.ScheduledProcedureStepStartDate)
		set("ScheduledProcedureStepSequence.Modality", m.Modality)
		set("ScheduledProcedureStepSequence.ScheduledProcedureStepStatus", m.ScheduledProcedureStepStatus)
		set("AccessionNumber", m.AccessionNumber)
	default:
		set("AccessionNumber", m.AccessionNumber)
		set("StudyDate", m.StudyDate)
		set("StudyTime", m.StudyTime)
		set("StudyDescription", m.StudyDescription)
		set("ModalitiesInStudy", m.ModalitiesInStudy)
		set("InstitutionalDepartmentName", m.InstitutionalDepartmentName)
		set("ReferringPhysicianName", m.ReferringPhysicianName)
		set("StudyInstanceUID", m.StudyInstanceUID)
		set("StudySizeInKB", m.StudySizeInKB)
		flag("incomplete", m.Incomplete)
		flag("retrievefailed", m.RetrieveFailed)
	}

	return params
}

// QuantityText holds the labels of the count and size buttons.
type QuantityText struct {
	Count string `json:"count"`
	Size  string `json:"size"`
}

// DefaultQuantityText returns the labels shown before any quantity was queried.
func DefaultQuantityText() QuantityText {
	return QuantityText{Count: "COUNT", Size: "SIZE"}
}
