package criteria

import "net/url"

// Resources addressable under an archive's QIDO-RS root.
const (
	ResourcePatients = "patients"
	ResourceStudies  = "studies"
	ResourceSeries   = "series"
	ResourceMWL      = "mwlitems"
)

// PatientStudies returns the nested resource listing a patient's studies.
func PatientStudies(patientID string) string {
	return ResourcePatients + "/" + url.PathEscape(patientID) + "/" + ResourceStudies
}

// Query is a fully built archive request.
type Query struct {
	Service  string // archive id; empty selects the default archive
	Resource string
	Params   Params
}
