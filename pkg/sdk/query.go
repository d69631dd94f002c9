package curalink

import (
	"net/url"
	"strconv"
)

// form accumulates console query parameters. Empty values are left out.
type form url.Values

func (f form) str(key, v string) {
	if v != "" {
		url.Values(f).Set(key, v)
	}
}

func (f form) flag(key string, v bool) {
	if v {
		url.Values(f).Set(key, "true")
	}
}

func (f form) num(key string, v int) {
	if v != 0 {
		url.Values(f).Set(key, strconv.Itoa(v))
	}
}

func patientForm(q PatientQuery) url.Values {
	f := form{}
	f.str("patientFamilyName", q.FamilyName)
	f.str("patientId", q.PatientID)
	f.str("issuerOfPatient", q.Issuer)
	f.str("patientSex", q.Sex)
	f.str("birthDate", q.BirthDate)
	f.str("verificationStatus", q.VerificationStatus)
	f.flag("fuzzyMatching", q.Fuzzy)
	f.num("limitOfPatients", q.Limit)
	f.str("orderBy", q.OrderBy)
	f.flag("onlyWithStudies", q.OnlyWithStudies)
	f.flag("merged", q.Merged)
	f.str("webAppService", q.Service)
	return url.Values(f)
}

func studyForm(q StudyQuery) url.Values {
	f := form{}
	f.str("patientFamilyName", q.FamilyName)
	f.str("patientId", q.PatientID)
	f.str("issuerOfPatient", q.Issuer)
	f.flag("fuzzyMatching", q.Fuzzy)
	f.str("accessionNumber", q.AccessionNumber)
	f.str("issuerOfAccessionNumber", q.IssuerOfAccessionNumber)
	f.str("studyDescription", q.Description)
	f.str("modality", q.Modality)
	f.str("reportStatus", q.ReportStatus)
	f.str("institutionalName", q.InstitutionName)
	f.str("institutionalDepartmentName", q.DepartmentName)
	f.str("referringPhysician", q.ReferringPhysician)
	f.str("sendingAET", q.SendingAET)
	f.str("studyDate", q.StudyDate)
	f.str("studyTime", q.StudyTime)
	f.str("studyReceived", q.Received)
	f.str("studyAccess", q.Accessed)
	f.num("limit", q.Limit)
	f.str("orderBy", q.OrderBy)
	f.str("webAppService", q.Service)
	return url.Values(f)
}

func seriesForm(q SeriesQuery) url.Values {
	f := form{}
	f.str("patientFamilyName", q.FamilyName)
	f.str("patientId", q.PatientID)
	f.flag("fuzzyMatching", q.Fuzzy)
	f.str("studyInstanceUID", q.StudyInstanceUID)
	f.str("seriesInstanceUID", q.SeriesInstanceUID)
	f.str("seriesNumber", q.SeriesNumber)
	f.str("seriesDescription", q.Description)
	f.str("modality", q.Modality)
	f.str("bodyPartExamined", q.BodyPartExamined)
	f.str("performingPhysician", q.PerformingPhysician)
	f.str("seriesDate", q.SeriesDate)
	f.str("seriesTime", q.SeriesTime)
	f.num("limit", q.Limit)
	f.str("orderBy", q.OrderBy)
	f.str("webAppService", q.Service)
	return url.Values(f)
}

func worklistForm(q WorklistQuery) url.Values {
	f := form{}
	f.str("patientFamilyName", q.FamilyName)
	f.str("patientId", q.PatientID)
	f.str("accessionNumber", q.AccessionNumber)
	f.str("issuerOfPatient", q.Issuer)
	f.str("modality", q.Modality)
	f.str("scheduledStationAET", q.ScheduledStationAET)
	f.str("spsStartTime", q.StartTime)
	f.num("limit", q.Limit)
	f.str("webAppService", q.Service)
	return url.Values(f)
}
