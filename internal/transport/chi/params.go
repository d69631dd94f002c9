package chi

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/curalink/internal/domain/criteria"
)

// ServiceParam selects the archive backend on every archive-facing route.
const ServiceParam = "webAppService"

// binding is one optional form-style query parameter.
type binding struct {
	name string
	dest any
}

// bindQuery binds the parameters present in q. Empty values mean "no filter" and are skipped.
func bindQuery(q url.Values, bindings ...binding) error {
	for _, b := range bindings {
		if q.Get(b.name) == "" {
			continue
		}
		if err := runtime.BindQueryParameter("form", true, true, b.name, q, b.dest); err != nil {
			return fmt.Errorf("invalid format for parameter %s: %w", b.name, err)
		}
	}
	return nil
}

func bindPath(r *http.Request, name string, dest any) error {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return fmt.Errorf("invalid format for parameter %s: %w", name, err)
	}
	return nil
}

func patientCriteria(r *http.Request) (criteria.Patient, error) {
	var c criteria.Patient
	err := bindQuery(r.URL.Query(),
		binding{"patientFamilyName", &c.FamilyName},
		binding{"patientId", &c.PatientID},
		binding{"issuerOfPatient", &c.Issuer},
		binding{"patientSex", &c.Sex},
		binding{"birthDate", &c.BirthDate},
		binding{"verificationStatus", &c.VerificationStatus},
		binding{"fuzzyMatching", &c.Fuzzy},
		binding{"limitOfPatients", &c.Limit},
		binding{"orderBy", &c.OrderBy},
		binding{"onlyWithStudies", &c.OnlyWithStudies},
		binding{"merged", &c.Merged},
		binding{ServiceParam, &c.Service},
	)
	return c, err
}

func studyCriteria(r *http.Request) (criteria.Study, error) {
	var c criteria.Study
	err := bindQuery(r.URL.Query(),
		binding{"patientFamilyName", &c.FamilyName},
		binding{"patientId", &c.PatientID},
		binding{"issuerOfPatient", &c.Issuer},
		binding{"fuzzyMatching", &c.Fuzzy},
		binding{"accessionNumber", &c.AccessionNumber},
		binding{"issuerOfAccessionNumber", &c.IssuerOfAccessionNumber},
		binding{"studyDescription", &c.Description},
		binding{"modality", &c.Modality},
		binding{"reportStatus", &c.ReportStatus},
		binding{"institutionalName", &c.InstitutionName},
		binding{"institutionalDepartmentName", &c.DepartmentName},
		binding{"referringPhysician", &c.ReferringPhysician},
		binding{"sendingAET", &c.SendingAET},
		binding{"studyDate", &c.StudyDate},
		binding{"studyTime", &c.StudyTime},
		binding{"studyReceived", &c.Received},
		binding{"studyAccess", &c.Accessed},
		binding{"limit", &c.Limit},
		binding{"orderBy", &c.OrderBy},
		binding{ServiceParam, &c.Service},
	)
	return c, err
}

func seriesCriteria(r *http.Request) (criteria.Series, error) {
	var c criteria.Series
	err := bindQuery(r.URL.Query(),
		binding{"patientFamilyName", &c.FamilyName},
		binding{"patientId", &c.PatientID},
		binding{"fuzzyMatching", &c.Fuzzy},
		binding{"studyInstanceUID", &c.StudyInstanceUID},
		binding{"seriesInstanceUID", &c.SeriesInstanceUID},
		binding{"seriesNumber", &c.SeriesNumber},
		binding{"seriesDescription", &c.Description},
		binding{"modality", &c.Modality},
		binding{"bodyPartExamined", &c.BodyPartExamined},
		binding{"performingPhysician", &c.PerformingPhysician},
		binding{"seriesDate", &c.SeriesDate},
		binding{"seriesTime", &c.SeriesTime},
		binding{"limit", &c.Limit},
		binding{"orderBy", &c.OrderBy},
		binding{ServiceParam, &c.Service},
	)
	return c, err
}

func worklistCriteria(r *http.Request) (criteria.Worklist, error) {
	var c criteria.Worklist
	err := bindQuery(r.URL.Query(),
		binding{"patientFamilyName", &c.FamilyName},
		binding{"patientId", &c.PatientID},
		binding{"accessionNumber", &c.AccessionNumber},
		binding{"issuerOfPatient", &c.Issuer},
		binding{"modality", &c.Modality},
		binding{"scheduledStationAET", &c.ScheduledStationAET},
		binding{"spsStartTime", &c.StartTime},
		binding{"limit", &c.Limit},
		binding{ServiceParam, &c.Service},
	)
	return c, err
}

func serviceParam(r *http.Request) (string, error) {
	var service string
	err := bindQuery(r.URL.Query(), binding{ServiceParam, &service})
	return service, err
}
