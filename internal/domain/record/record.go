// Package record defines the flat display rows produced from archive responses.
// Every field is always present; missing data reads as "" or 0.
package record

import "encoding/json"

// Patient is a patient row.
type Patient struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	PatientID          string          `json:"patientId"`
	Sex                string          `json:"sex"`
	BirthDate          string          `json:"birthDate"`
	StudyCount         int             `json:"studyCount"`
	Issuer             string          `json:"issuer"`
	VerificationStatus string          `json:"verificationStatus"`
	RawData            json.RawMessage `json:"rawData,omitempty"`
}

// Study is a study row.
type Study struct {
	ID                 string          `json:"id"`
	StudyInstanceUID   string          `json:"studyInstanceUID"`
	PatientName        string          `json:"patientName"`
	PatientID          string          `json:"patientId"`
	StudyDate          string          `json:"studyDate"`
	StudyTime          string          `json:"studyTime"`
	Modality           string          `json:"modality"`
	Description        string          `json:"description"`
	AccessionNumber    string          `json:"accessionNumber"`
	ReferringPhysician string          `json:"referringPhysician"`
	NumberOfSeries     int             `json:"numberOfSeries"`
	NumberOfInstances  int             `json:"numberOfInstances"`
	DepartmentName     string          `json:"institutionalDepartmentName"`
	RawData            json.RawMessage `json:"rawData,omitempty"`
}

// Series is a series row.
type Series struct {
	ID                  string          `json:"id"`
	SeriesInstanceUID   string          `json:"seriesInstanceUID"`
	SeriesNumber        string          `json:"seriesNumber"`
	Description         string          `json:"seriesDescription"`
	Modality            string          `json:"modality"`
	BodyPartExamined    string          `json:"bodyPartExamined"`
	PerformingPhysician string          `json:"performingPhysician"`
	SeriesDate          string          `json:"seriesDate"`
	SeriesTime          string          `json:"seriesTime"`
	NumberOfInstances   int             `json:"numberOfInstances"`
	StudyInstanceUID    string          `json:"studyInstanceUID"`
	RawData             json.RawMessage `json:"rawData,omitempty"`
}

// WorklistItem is a modality worklist row. Scheduled step fields come from
// the first item of the scheduled procedure step sequence.
type WorklistItem struct {
	ID              string          `json:"id"`
	PatientName     string          `json:"patientName"`
	PatientID       string          `json:"patientId"`
	AccessionNumber string          `json:"accessionNumber"`
	Modality        string          `json:"modality"`
	StartDate       string          `json:"spsStartDate"`
	StartTime       string          `json:"spsStartTime"`
	StationAET      string          `json:"stationAET"`
	Description     string          `json:"description"`
	RawData         json.RawMessage `json:"rawData,omitempty"`
}

// Institution is a hospital derived from the archive's series and studies.
// LastStudyDate is null when no study date was seen.
type Institution struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	InstitutionName string   `json:"institutionName"`
	Address         string   `json:"address"`
	Status          string   `json:"status"`
	StudyCount      int      `json:"studyCount"`
	PatientCount    int      `json:"patientCount"`
	Modalities      []string `json:"modalities"`
	Departments     []string `json:"departments"`
	LastStudyDate   *string  `json:"lastStudyDate"`
}

// Page is one search result set. Total is the archive-reported match count,
// or -1 when the archive did not report one.
type Page[T any] struct {
	Items []T
	Total int
}
