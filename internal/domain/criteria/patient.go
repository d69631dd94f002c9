package criteria

import (
	"strconv"

	"github.com/kailas-cloud/curalink/internal/domain/dicom"
)

// Patient holds the patient search form. Zero values mean "no filter".
type Patient struct {
	FamilyName         string
	PatientID          string
	Issuer             string
	Sex                string
	BirthDate          string // YYYY-MM-DD as produced by a calendar widget
	VerificationStatus string
	Fuzzy              bool
	Limit              int
	OrderBy            string
	OnlyWithStudies    bool
	Merged             bool

	// Service selects the archive backend; it is not a query parameter.
	Service string
}

// Validate checks enumerated fields and clamps the limit.
func (c *Patient) Validate() error {
	limit, err := normalizeLimit(c.Limit)
	if err != nil {
		return err
	}
	c.Limit = limit
	if err := validateSex(c.Sex); err != nil {
		return err
	}
	return validateOrderBy(c.OrderBy, patientOrderFields)
}

// Params maps the form onto the archive's patient query vocabulary.
func (c Patient) Params() Params {
	var p Params
	p.Add("PatientName", wildcard(c.FamilyName, c.Fuzzy))
	p.Add("PatientID", c.PatientID)
	p.Add("IssuerOfPatientID", c.Issuer)
	p.Add("PatientSex", c.Sex)
	p.Add("PatientBirthDate", dicom.CompactDate(c.BirthDate))
	p.Add("PatientVerificationStatus", c.VerificationStatus)
	if c.Limit > 0 {
		p.Add("limit", strconv.Itoa(c.Limit))
	}
	p.Add("orderby", c.OrderBy)
	p.Flag("onlyWithStudies", c.OnlyWithStudies)
	p.Flag("merged", c.Merged)
	return p
}
