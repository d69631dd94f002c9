package criteria

import (
	"strconv"

	"github.com/kailas-cloud/curalink/internal/domain/dicom"
)

// Worklist holds the modality worklist search form.
// Scheduled step attributes are addressed through the step sequence.
type Worklist struct {
	FamilyName          string
	PatientID           string
	AccessionNumber     string
	Issuer              string
	Modality            string
	ScheduledStationAET string
	StartTime           string
	Limit               int

	Service string
}

// Validate clamps the limit.
func (c *Worklist) Validate() error {
	limit, err := normalizeLimit(c.Limit)
	if err != nil {
		return err
	}
	c.Limit = limit
	return nil
}

// Params maps the form onto the archive's MWL query vocabulary.
func (c Worklist) Params() Params {
	var p Params
	p.Add("PatientName", c.FamilyName)
	p.Add("PatientID", c.PatientID)
	p.Add("AccessionNumber", c.AccessionNumber)
	p.Add("IssuerOfPatientID", c.Issuer)
	p.Add("ScheduledProcedureStepSequence.Modality", c.Modality)
	p.Add("ScheduledProcedureStepSequence.ScheduledStationAETitle", c.ScheduledStationAET)
	p.Add("ScheduledProcedureStepSequence.ScheduledProcedureStepStartTime", dicom.CompactTime(c.StartTime))
	if c.Limit > 0 {
		p.Add("limit", strconv.Itoa(c.Limit))
	}
	return p
}
