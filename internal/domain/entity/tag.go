package entity

// DICOM attribute tags in the eight hex digit form used as keys of the DICOM JSON model.
const (
	TagSpecificCharacterSet        = "00080005"
	TagStudyDate                   = "00080020"
	TagStudyTime                   = "00080030"
	TagAccessionNumber             = "00080050"
	TagModalitiesInStudy           = "00080061"
	TagReferringPhysicianName      = "00080090"
	TagStudyDescription            = "00081030"
	TagInstitutionalDepartmentName = "00081040"
	TagPatientName                 = "00100010"
	TagPatientID                   = "00100020"
	TagIssuerOfPatientID           = "00100021"
	TagPatientBirthDate            = "00100030"
	TagPatientSex                  = "00100040"
	TagStudyInstanceUID            = "0020000D"
	TagStudyID                     = "00200010"
	TagNumberOfPatientRelatedStudy = "00201200"
	TagNumberOfStudyRelatedSeries  = "00201206"
	TagNumberOfStudyRelatedInst    = "00201208"
)

// Archive private attributes (creator "DCM4CHEE Archive 5").
const (
	TagPrivateCreator               = "77770010"
	TagPatientCreateDateTime        = "77771010"
	TagPatientUpdateDateTime        = "77771011"
	TagPatientVerificationDateTime  = "77771012"
	TagPatientVerificationStatus    = "77771013"
	TagFailedVerificationsOfPatient = "77771014"
)

// PrivatePatientTags are appended to the configured patient attribute filter so the
// archive's patient bookkeeping attributes stay with the patient group.
var PrivatePatientTags = []string{
	TagPrivateCreator,
	TagPatientCreateDateTime,
	TagPatientUpdateDateTime,
	TagPatientVerificationDateTime,
	TagPatientVerificationStatus,
	TagFailedVerificationsOfPatient,
}

// PatientTags returns the tag list used to split a study row into its patient part.
// The input is left untouched.
func PatientTags(filter *AttributeFilter) []string {
	var configured []string
	if filter != nil {
		configured = filter.DcmTag
	}

	tags := make([]string, 0, len(configured)+1+len(PrivatePatientTags))
	index := 0
	for index < len(configured) && configured[index] < TagNumberOfPatientRelatedStudy {
		index++
	}
	tags = append(tags, configured[:index]...)
	tags = append(tags, TagNumberOfPatientRelatedStudy)
	tags = append(tags, configured[index:]...)
	tags = append(tags, PrivatePatientTags...)
	return tags
}

// AttributeFilter is the archive's attribute filter configuration for one entity level.
type AttributeFilter struct {
	DcmTag           []string `json:"dcmTag"`
	DicomDescription string   `json:"dicomDescription,omitempty"`
}
