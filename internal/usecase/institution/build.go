package institution

import (
	"slices"
	"sort"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/kailas-cloud/curalink/internal/domain/dicom"
	"github.com/kailas-cloud/curalink/internal/domain/record"
)

type bucket struct {
	address     string
	studies     map[string]struct{}
	patients    map[string]struct{}
	modalities  map[string]struct{}
	departments map[string]struct{}
	lastDate    string
}

func (b *bucket) observe(r dicom.Record, date string, modalities []string) {
	add(b.studies, r.String(tag.StudyInstanceUID, "studyInstanceUID"))
	add(b.patients, r.String(tag.PatientID, "patientId"))
	for _, m := range modalities {
		add(b.modalities, m)
	}
	add(b.departments, r.String(tag.InstitutionalDepartmentName, "institutionalDepartmentName"))
	if date > b.lastDate {
		b.lastDate = date
	}
}

// Build derives institutions from series and study records. Records without
// an institution name are skipped. The result is ordered by study count,
// descending; ties keep first-seen order. Ids are positions starting at 1.
func Build(series, studies []dicom.Record) []record.Institution {
	buckets := map[string]*bucket{}
	var order []string

	ensure := func(r dicom.Record) *bucket {
		name := strings.TrimSpace(r.String(tag.InstitutionName, "institutionName"))
		if name == "" {
			return nil
		}
		b, ok := buckets[name]
		if !ok {
			b = &bucket{
				address:     r.String(tag.InstitutionAddress, "institutionAddress"),
				studies:     map[string]struct{}{},
				patients:    map[string]struct{}{},
				modalities:  map[string]struct{}{},
				departments: map[string]struct{}{},
			}
			buckets[name] = b
			order = append(order, name)
		}
		return b
	}

	for _, r := range series {
		if b := ensure(r); b != nil {
			b.observe(r, r.String(tag.SeriesDate, "seriesDate"), []string{r.String(tag.Modality, "modality")})
		}
	}
	for _, r := range studies {
		if b := ensure(r); b != nil {
			b.observe(r, r.String(tag.StudyDate, "studyDate"), r.Strings(tag.ModalitiesInStudy, "modalitiesInStudy"))
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return len(buckets[order[i]].studies) > len(buckets[order[j]].studies)
	})

	out := make([]record.Institution, 0, len(order))
	for i, name := range order {
		b := buckets[name]
		inst := record.Institution{
			ID:              i + 1,
			Name:            name,
			InstitutionName: name,
			Address:         b.address,
			Status:          "active",
			StudyCount:      len(b.studies),
			PatientCount:    len(b.patients),
			Modalities:      sortedKeys(b.modalities),
			Departments:     sortedKeys(b.departments),
		}
		if b.lastDate != "" {
			d := dicom.FormatDate(b.lastDate)
			inst.LastStudyDate = &d
		}
		out = append(out, inst)
	}
	return out
}

func add(set map[string]struct{}, v string) {
	if v != "" {
		set[v] = struct{}{}
	}
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
