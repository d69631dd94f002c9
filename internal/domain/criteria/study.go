package criteria

import (
	"strconv"

	"github.com/kailas-cloud/curalink/internal/domain/dicom"
)

// AllModalities is the form value meaning "no modality filter".
const AllModalities = "All"

// Study holds the study search form.
type Study struct {
	FamilyName              string
	PatientID               string
	Issuer                  string
	Fuzzy                   bool
	AccessionNumber         string
	IssuerOfAccessionNumber string
	Description             string
	Modality                string
	ReportStatus            string
	InstitutionName         string
	DepartmentName          string
	ReferringPhysician      string
	SendingAET              string
	StudyDate               string // YYYY-MM-DD or a YYYY-MM-DD-YYYY-MM-DD range
	StudyTime               string // HH:MM[:SS]
	Received                string
	Accessed                string
	Limit                   int
	OrderBy                 string

	Service string
}

// Validate checks enumerated fields and clamps the limit.
func (c *Study) Validate() error {
	limit, err := normalizeLimit(c.Limit)
	if err != nil {
		return err
	}
	c.Limit = limit
	return validateOrderBy(c.OrderBy, studyOrderFields)
}

// Params maps the form onto the archive's study query vocabulary.
func (c Study) Params() Params {
	var p Params
	p.Add("PatientName", wildcard(c.FamilyName, c.Fuzzy))
	p.Add("PatientID", c.PatientID)
	p.Add("IssuerOfPatientID", c.Issuer)
	p.Add("AccessionNumber", c.AccessionNumber)
	p.Add("IssuerOfAccessionNumberSequence", c.IssuerOfAccessionNumber)
	p.Add("StudyDescription", c.Description)
	if c.Modality != AllModalities {
		p.Add("ModalitiesInStudy", c.Modality)
	}
	p.Add("CompletionFlag", c.ReportStatus)
	p.Add("InstitutionName", c.InstitutionName)
	p.Add("InstitutionalDepartmentName", c.DepartmentName)
	p.Add("ReferringPhysicianName", c.ReferringPhysician)
	p.Add("SendingApplicationEntityTitleOfSeries", c.SendingAET)
	p.Add("StudyDate", dicom.CompactDate(c.StudyDate))
	p.Add("StudyTime", dicom.CompactTime(c.StudyTime))
	p.Add("StudyReceiveDateTime", dicom.CompactDate(c.Received))
	p.Add("StudyAccessDateTime", dicom.CompactDate(c.Accessed))
	if c.Limit > 0 {
		p.Add("limit", strconv.Itoa(c.Limit))
	}
	p.Add("orderby", c.OrderBy)
	return p
}
