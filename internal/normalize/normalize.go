// Package normalize maps archive responses onto display records.
//
// Every function is pure: it accepts the response body as received and never
// fails. A body that is not a JSON array yields an empty, non-nil slice.
// Output order matches input order.
package normalize

import (
	"strconv"

	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/kailas-cloud/curalink/internal/domain/dicom"
	"github.com/kailas-cloud/curalink/internal/domain/record"
)

// Patients normalizes a patient search response.
func Patients(body []byte) []record.Patient {
	recs, _ := dicom.ParseArray(body)
	out := make([]record.Patient, 0, len(recs))
	for i, r := range recs {
		out = append(out, Patient(r, i))
	}
	return out
}

// Patient normalizes a single patient record at position index.
func Patient(r dicom.Record, index int) record.Patient {
	pid := r.String(tag.PatientID, "patientId", "PatientID")
	p := record.Patient{
		ID:                 pid,
		Name:               dicom.DisplayName(r.PersonName(tag.PatientName, "name", "patientName")),
		PatientID:          pid,
		Sex:                r.String(tag.PatientSex, "sex", "patientSex"),
		BirthDate:          dicom.FormatDate(r.String(tag.PatientBirthDate, "birthDate", "patientBirthDate")),
		StudyCount:         count(r, tag.NumberOfPatientRelatedStudies, "numberOfStudies", "studyCount", "studies"),
		Issuer:             r.String(tag.IssuerOfPatientID, "issuer", "issuerOfPatientId"),
		VerificationStatus: r.String(dicom.PatientVerificationStatus, "verificationStatus"),
		RawData:            r.Raw(),
	}
	if p.ID == "" {
		p.ID = r.Field("id")
	}
	if p.ID == "" {
		p.ID = synthetic("patient", index)
	}
	return p
}

// Studies normalizes a study search response.
func Studies(body []byte) []record.Study {
	recs, _ := dicom.ParseArray(body)
	out := make([]record.Study, 0, len(recs))
	for i, r := range recs {
		out = append(out, Study(r, i))
	}
	return out
}

// Study normalizes a single study record at position index.
func Study(r dicom.Record, index int) record.Study {
	uid := r.String(tag.StudyInstanceUID, "studyInstanceUID")
	s := record.Study{
		ID:                 uid,
		StudyInstanceUID:   uid,
		PatientName:        dicom.DisplayName(r.PersonName(tag.PatientName, "patientName")),
		PatientID:          r.String(tag.PatientID, "patientId"),
		StudyDate:          dicom.FormatDate(r.String(tag.StudyDate, "studyDate")),
		StudyTime:          dicom.FormatTime(r.String(tag.StudyTime, "studyTime")),
		Modality:           r.String(tag.ModalitiesInStudy, "modality", "modalitiesInStudy"),
		Description:        r.String(tag.StudyDescription, "description", "studyDescription"),
		AccessionNumber:    r.String(tag.AccessionNumber, "accessionNumber"),
		ReferringPhysician: dicom.DisplayName(r.PersonName(tag.ReferringPhysicianName, "referringPhysician")),
		NumberOfSeries:     count(r, tag.NumberOfStudyRelatedSeries, "numberOfStudyRelatedSeries", "numberOfSeries"),
		NumberOfInstances:  count(r, tag.NumberOfStudyRelatedInstances, "numberOfStudyRelatedInstances", "numberOfInstances"),
		DepartmentName:     r.String(tag.InstitutionalDepartmentName, "institutionalDepartmentName"),
		RawData:            r.Raw(),
	}
	if s.ID == "" {
		s.ID = r.Field("id")
	}
	if s.ID == "" {
		s.ID = synthetic("study", index)
	}
	return s
}

// Series normalizes a series search response.
func Series(body []byte) []record.Series {
	recs, _ := dicom.ParseArray(body)
	out := make([]record.Series, 0, len(recs))
	for i, r := range recs {
		uid := r.String(tag.SeriesInstanceUID, "seriesInstanceUID")
		s := record.Series{
			ID:                  uid,
			SeriesInstanceUID:   uid,
			SeriesNumber:        r.String(tag.SeriesNumber, "seriesNumber"),
			Description:         r.String(tag.SeriesDescription, "seriesDescription"),
			Modality:            r.String(tag.Modality, "modality"),
			BodyPartExamined:    r.String(tag.BodyPartExamined, "bodyPartExamined"),
			PerformingPhysician: dicom.DisplayName(r.PersonName(tag.PerformingPhysicianName, "performingPhysician")),
			SeriesDate:          dicom.FormatDate(r.String(tag.SeriesDate, "seriesDate")),
			SeriesTime:          dicom.FormatTime(r.String(tag.SeriesTime, "seriesTime")),
			NumberOfInstances:   count(r, tag.NumberOfSeriesRelatedInstances, "numberOfSeriesRelatedInstances", "numberOfInstances"),
			StudyInstanceUID:    r.String(tag.StudyInstanceUID, "studyInstanceUID"),
			RawData:             r.Raw(),
		}
		if s.ID == "" {
			s.ID = synthetic("series", i)
		}
		out = append(out, s)
	}
	return out
}

// Worklist normalizes a modality worklist response.
func Worklist(body []byte) []record.WorklistItem {
	recs, _ := dicom.ParseArray(body)
	out := make([]record.WorklistItem, 0, len(recs))
	for i, r := range recs {
		item := record.WorklistItem{
			PatientName:     dicom.DisplayName(r.PersonName(tag.PatientName, "patientName")),
			PatientID:       r.String(tag.PatientID, "patientId"),
			AccessionNumber: r.String(tag.AccessionNumber, "accessionNumber"),
			RawData:         r.Raw(),
		}
		if sps, ok := r.Item(tag.ScheduledProcedureStepSequence); ok {
			item.Modality = sps.String(tag.Modality)
			item.StartDate = dicom.FormatDate(sps.String(tag.ScheduledProcedureStepStartDate))
			item.StartTime = dicom.FormatTime(sps.String(tag.ScheduledProcedureStepStartTime))
			item.StationAET = sps.String(tag.ScheduledStationAETitle)
			item.Description = sps.String(tag.ScheduledProcedureStepDescription)
		} else if r.Shape() == dicom.Flattened {
			item.Modality = r.Field("modality")
			item.StartDate = dicom.FormatDate(r.Field("spsStartDate"))
			item.StartTime = dicom.FormatTime(r.Field("spsStartTime"))
			item.StationAET = r.Field("stationAET")
			item.Description = r.Field("description")
		}
		item.ID = synthetic("mwl", i)
		out = append(out, item)
	}
	return out
}

// count reads a pre-computed counter from a descriptive field first, then from its tag.
func count(r dicom.Record, t tag.Tag, keys ...string) int {
	if n := r.Int(keys...); n != 0 {
		return n
	}
	return r.IntTag(t)
}

func synthetic(kind string, index int) string {
	return kind + "_" + strconv.Itoa(index)
}
