package criteria

import (
	"strconv"

	"github.com/kailas-cloud/curalink/internal/domain/dicom"
)

// Series holds the series search form.
type Series struct {
	FamilyName          string
	PatientID           string
	Fuzzy               bool
	StudyInstanceUID    string
	SeriesInstanceUID   string
	SeriesNumber        string
	Description         string
	Modality            string
	BodyPartExamined    string
	PerformingPhysician string
	SeriesDate          string
	SeriesTime          string
	Limit               int
	OrderBy             string

	Service string
}

// Validate checks enumerated fields and clamps the limit.
func (c *Series) Validate() error {
	limit, err := normalizeLimit(c.Limit)
	if err != nil {
		return err
	}
	c.Limit = limit
	return validateOrderBy(c.OrderBy, seriesOrderFields)
}

// Params maps the form onto the archive's series query vocabulary.
func (c Series) Params() Params {
	var p Params
	p.Add("PatientName", wildcard(c.FamilyName, c.Fuzzy))
	p.Add("PatientID", c.PatientID)
	p.Add("StudyInstanceUID", c.StudyInstanceUID)
	p.Add("SeriesInstanceUID", c.SeriesInstanceUID)
	p.Add("SeriesNumber", c.SeriesNumber)
	p.Add("SeriesDescription", c.Description)
	if c.Modality != AllModalities {
		p.Add("Modality", c.Modality)
	}
	p.Add("BodyPartExamined", c.BodyPartExamined)
	p.Add("PerformingPhysicianName", c.PerformingPhysician)
	p.Add("SeriesDate", dicom.CompactDate(c.SeriesDate))
	p.Add("SeriesTime", dicom.CompactTime(c.SeriesTime))
	if c.Limit > 0 {
		p.Add("limit", strconv.Itoa(c.Limit))
	}
	p.Add("orderby", c.OrderBy)
	return p
}
