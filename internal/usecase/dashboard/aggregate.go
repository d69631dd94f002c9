package dashboard

import (
	"sort"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/kailas-cloud/curalink/internal/domain/dicom"
	"github.com/kailas-cloud/curalink/internal/domain/record"
	"github.com/kailas-cloud/curalink/internal/normalize"
)

const (
	recentStudies = 10
	dateWindow    = 30
)

// ModalityCount is the number of studies containing a modality.
type ModalityCount struct {
	Modality string `json:"modality"`
	Count    int    `json:"count"`
}

// DateCount is the number of studies on one date.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Stats is the dashboard payload.
type Stats struct {
	TotalStudies      int             `json:"totalStudies"`
	TotalPatients     int             `json:"totalPatients"`
	TotalSeries       int             `json:"totalSeries"`
	TotalInstances    int             `json:"totalInstances"`
	StudiesByModality []ModalityCount `json:"studiesByModality"`
	StudiesByDate     []DateCount     `json:"studiesByDate"`
	RecentStudies     []record.Study  `json:"recentStudies"`
	HospitalID        string          `json:"hospitalId,omitempty"`
}

// Aggregate computes dashboard statistics over a study list ordered newest first.
// Every modality value a study lists is counted. Recent studies carry
// every modality joined with ", ".
func Aggregate(studies []dicom.Record, totalPatients int) Stats {
	st := Stats{
		TotalStudies:      len(studies),
		TotalPatients:     totalPatients,
		StudiesByModality: []ModalityCount{},
		StudiesByDate:     []DateCount{},
		RecentStudies:     []record.Study{},
	}

	modalityIdx := map[string]int{}
	dates := map[string]int{}

	for i, r := range studies {
		s := normalize.Study(r, i)
		st.TotalSeries += s.NumberOfSeries
		st.TotalInstances += s.NumberOfInstances

		mods := r.Strings(tag.ModalitiesInStudy, "modalitiesInStudy", "modality")
		for _, m := range mods {
			if idx, ok := modalityIdx[m]; ok {
				st.StudiesByModality[idx].Count++
				continue
			}
			modalityIdx[m] = len(st.StudiesByModality)
			st.StudiesByModality = append(st.StudiesByModality, ModalityCount{Modality: m, Count: 1})
		}

		if s.StudyDate != "" {
			dates[s.StudyDate]++
		}

		if i < recentStudies {
			s.Modality = strings.Join(mods, ", ")
			s.RawData = nil
			st.RecentStudies = append(st.RecentStudies, s)
		}
	}

	sort.SliceStable(st.StudiesByModality, func(i, j int) bool {
		return st.StudiesByModality[i].Count > st.StudiesByModality[j].Count
	})

	for d, c := range dates {
		st.StudiesByDate = append(st.StudiesByDate, DateCount{Date: d, Count: c})
	}
	sort.Slice(st.StudiesByDate, func(i, j int) bool {
		return st.StudiesByDate[i].Date < st.StudiesByDate[j].Date
	})
	if n := len(st.StudiesByDate); n > dateWindow {
		st.StudiesByDate = st.StudiesByDate[n-dateWindow:]
	}

	return st
}
