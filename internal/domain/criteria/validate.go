package criteria

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/curalink/internal/domain"
)

// Result caps.
const (
	// MaxLimit bounds every limit a form can request.
	MaxLimit = 10000
)

var (
	patientOrderFields = set("PatientName", "PatientID", "PatientBirthDate", "PatientSex", "createdTime", "updatedTime")
	studyOrderFields   = set("StudyDate", "StudyTime", "PatientName", "PatientID", "AccessionNumber",
		"StudyDescription", "ModalitiesInStudy", "createdTime", "updatedTime")
	seriesOrderFields = set("SeriesDate", "SeriesTime", "SeriesNumber", "Modality", "SeriesDescription",
		"PatientName", "createdTime", "updatedTime")
	sexCodes = set("M", "F", "O")
)

func set(values ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidCriteria, fmt.Sprintf(format, args...))
}

// normalizeLimit rejects negative limits and clamps to MaxLimit. Zero means "provider default".
func normalizeLimit(limit int) (int, error) {
	if limit < 0 {
		return 0, invalid("limit must be a positive integer, got %d", limit)
	}
	if limit > MaxLimit {
		return MaxLimit, nil
	}
	return limit, nil
}

// validateOrderBy accepts an empty key or a known field with an optional leading "-".
func validateOrderBy(orderBy string, fields map[string]struct{}) error {
	if orderBy == "" {
		return nil
	}
	if _, ok := fields[strings.TrimPrefix(orderBy, "-")]; !ok {
		return invalid("unsupported orderby %q", orderBy)
	}
	return nil
}

func validateSex(sex string) error {
	if sex == "" {
		return nil
	}
	if _, ok := sexCodes[sex]; !ok {
		return invalid("patient sex must be one of M, F, O, got %q", sex)
	}
	return nil
}
