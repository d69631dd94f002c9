package assistant

import (
	"context"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/curalink/internal/domain/criteria"
	"github.com/kailas-cloud/curalink/internal/domain/dicom"
	logpkg "github.com/kailas-cloud/curalink/internal/logger"
)

// QuickLimit caps each list of quick search hits.
const QuickLimit = 8

var quickStudyFields = dicom.IncludeFields(
	tag.PatientName, tag.PatientID, tag.StudyDate, tag.ModalitiesInStudy, tag.StudyDescription, tag.StudyInstanceUID,
)

// PatientHit is a quick search patient match.
type PatientHit struct {
	PatientID   string `json:"patientId"`
	PatientName string `json:"patientName"`
}

// StudyHit is a quick search study match.
type StudyHit struct {
	StudyInstanceUID string `json:"studyInstanceUID"`
	PatientName      string `json:"patientName"`
	PatientID        string `json:"patientId"`
	StudyDate        string `json:"studyDate"`
	Modality         string `json:"modality"`
	Description      string `json:"description"`
}

// QuickResult holds quick search matches.
type QuickResult struct {
	Patients []PatientHit `json:"patients"`
	Studies  []StudyHit   `json:"studies"`
}

// QuickSearch runs three lookups concurrently: patients by fuzzy name,
// patients by id prefix, and studies by fuzzy patient name. A failed lookup
// is skipped; the call fails only when all three fail.
func (s *Service) QuickSearch(ctx context.Context, service, q string) (QuickResult, error) {
	res := QuickResult{Patients: []PatientHit{}, Studies: []StudyHit{}}
	term := strings.TrimSpace(q)
	if term == "" {
		return res, nil
	}

	var byName, byID, studies criteria.Params
	byName.Add("limit", "8")
	byName.Add("fuzzymatching", "true")
	byName.Add("PatientName", term)
	byID.Add("limit", "8")
	byID.Add("PatientID", term+"*")
	studies.Add("limit", "8")
	studies.Add("fuzzymatching", "true")
	studies.Add("PatientName", term)
	studies.Add("includefield", quickStudyFields)

	queries := [3]criteria.Query{
		{Service: service, Resource: criteria.ResourcePatients, Params: byName},
		{Service: service, Resource: criteria.ResourcePatients, Params: byID},
		{Service: service, Resource: criteria.ResourceStudies, Params: studies},
	}

	var (
		bodies [3][]dicom.Record
		errs   [3]error
	)
	g, gctx := errgroup.WithContext(ctx)
	for i, query := range queries {
		g.Go(func() error {
			raw, err := s.archive.Get(gctx, query)
			if err != nil {
				errs[i] = err
				return nil
			}
			bodies[i], _ = dicom.ParseArray(raw.Body)
			return nil
		})
	}
	_ = g.Wait()

	if errs[0] != nil && errs[1] != nil && errs[2] != nil {
		return QuickResult{}, errs[0]
	}
	for i, err := range errs {
		if err != nil {
			logpkg.FromContext(ctx, s.logger).Warn("Quick search lookup failed",
				zap.String("resource", queries[i].Resource), zap.Error(err))
		}
	}

	seen := map[string]struct{}{}
	for _, recs := range bodies[:2] {
		for _, r := range recs {
			pid := r.String(tag.PatientID, "patientId")
			if pid == "" {
				continue
			}
			if _, dup := seen[pid]; dup {
				continue
			}
			seen[pid] = struct{}{}
			res.Patients = append(res.Patients, PatientHit{PatientID: pid, PatientName: nameOr(r, pid)})
		}
	}

	for _, r := range bodies[2] {
		res.Studies = append(res.Studies, StudyHit{
			StudyInstanceUID: r.String(tag.StudyInstanceUID, "studyInstanceUID"),
			PatientName:      nameOr(r, "?"),
			PatientID:        r.String(tag.PatientID, "patientId"),
			StudyDate:        dicom.FormatDate(r.String(tag.StudyDate, "studyDate")),
			Modality:         strings.Join(r.Strings(tag.ModalitiesInStudy, "modalitiesInStudy"), ", "),
			Description:      r.String(tag.StudyDescription, "studyDescription"),
		})
	}

	res.Patients = res.Patients[:min(len(res.Patients), QuickLimit)]
	res.Studies = res.Studies[:min(len(res.Studies), QuickLimit)]
	return res, nil
}

// nameOr returns the raw Alphabetic patient name, or fallback when absent.
func nameOr(r dicom.Record, fallback string) string {
	if n := r.PersonName(tag.PatientName, "patientName"); n != "" {
		return n
	}
	return fallback
}
