package dto

import (
	"pacs-study-browser/internal/domain/entity"
)

// Request DTOs

type FilterRequest struct {
	Aet           string `json:"aet" validate:"omitempty,max=16"`
	Limit         int    `json:"limit" validate:"gte=0,lte=1000"` // 0 keeps the default page size
	Offset        int    `json:"offset" validate:"gte=0"`
	OrderBy       string `json:"orderby" validate:"omitempty,max=128"`
	FuzzyMatching bool   `json:"fuzzymatching"`

	PatientName       string `json:"PatientName" validate:"omitempty,max=64"`
	PatientID         string `json:"PatientID" validate:"omitempty,max=64"`
	IssuerOfPatientID string `json:"IssuerOfPatientID" validate:"omitempty,max=64"`

	AccessionNumber             string  `json:"AccessionNumber" validate:"omitempty,max=16"`
	StudyDate                   string  `json:"StudyDate" validate:"omitempty,max=17"` // Format: YYYYMMDD or YYYYMMDD-YYYYMMDD
	StudyTime                   string  `json:"StudyTime" validate:"omitempty,max=28"`
	StudyDescription            string  `json:"StudyDescription" validate:"omitempty,max=64"`
	ModalitiesInStudy           string  `json:"ModalitiesInStudy" validate:"omitempty,max=16"`
	InstitutionalDepartmentName string  `json:"InstitutionalDepartmentName" validate:"omitempty,max=64"`
	ReferringPhysicianName      string  `json:"ReferringPhysicianName" validate:"omitempty,max=64"`
	StudyInstanceUID            string  `json:"StudyInstanceUID" validate:"omitempty,max=64"`
	// Format: MIN-MAX, either side optional; absent keeps the default
	StudySizeInKB               *string `json:"StudySizeInKB" validate:"omitempty,max=32"`
	Incomplete                  bool    `json:"incomplete"`
	RetrieveFailed              bool    `json:"retrievefailed"`

	PatientSex       string `json:"PatientSex" validate:"omitempty,oneof=M F O"`
	PatientBirthDate string `json:"PatientBirthDate" validate:"omitempty,max=17"`
	OnlyWithStudies  bool   `json:"onlyWithStudies"`

	ScheduledStationAETitle         string `json:"ScheduledStationAETitle" validate:"omitempty,max=16"`
	ScheduledProcedureStepStartDate string `json:"ScheduledProcedureStepStartDate" validate:"omitempty,max=17"`
	Modality                        string `json:"Modality" validate:"omitempty,max=16"`
	ScheduledProcedureStepStatus    string `json:"ScheduledProcedureStepStatus" validate:"omitempty,max=16"`
}

type AccessLocationRequest struct {
	AccessLocation string `json:"accessLocation" validate:"required,oneof=internal external"`
}

type ScrollRequest struct {
	Position int `json:"position" validate:"gte=0"`
}

// Response DTOs

type StudyResponse struct {
	Attrs  entity.Attributes `json:"attrs"`
	Offset int               `json:"offset"`
}

type PatientResponse struct {
	Attrs   entity.Attributes `json:"attrs"`
	Studies []StudyResponse   `json:"studies"`
}

type StudyPageResponse struct {
	Tab                 entity.Tab                 `json:"tab"`
	AccessLocation      entity.AccessLocation      `json:"accessLocation"`
	FilterModel         entity.FilterModel         `json:"filterModel"`
	FilterSchemaMain    entity.FilterSchema        `json:"filterSchemaMain"`
	FilterSchemaExpand  entity.FilterSchema        `json:"filterSchemaExpand"`
	QuantityText        entity.QuantityText        `json:"quantityText"`
	ApplicationEntities entity.ApplicationEntities `json:"applicationEntities"`
	Patients            []PatientResponse          `json:"patients"`
	MoreStudies         bool                       `json:"moreStudies"`
	View                entity.ViewState           `json:"view"`
	Messages            []entity.Notification      `json:"messages,omitempty"`
}

type QuantityResponse struct {
	Quantity string `json:"quantity"` // count or size
	Value    int64  `json:"value"`
	Text     string `json:"text"`
}
