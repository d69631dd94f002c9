package normalize

import (
	"reflect"
	"testing"

	"github.com/kailas-cloud/curalink/internal/domain/record"
)

const twoPatients = `[
	{
		"00100010": {"vr": "PN", "Value": [{"Alphabetic": "Smith^Anna"}]},
		"00100020": {"vr": "LO", "Value": ["P-2"]},
		"00100030": {"vr": "DA", "Value": ["19850515"]},
		"00100040": {"vr": "CS", "Value": ["F"]},
		"00100021": {"vr": "LO", "Value": ["HOSP"]},
		"00101024": {"vr": "CS", "Value": ["VERIFIED"]},
		"numberOfStudies": 3
	},
	{
		"00100010": {"vr": "PN", "Value": [{"Alphabetic": "Smithers"}]},
		"00100020": {"vr": "LO", "Value": ["P-1"]}
	}
]`

func TestPatients_TagKeyed(t *testing.T) {
	got := Patients([]byte(twoPatients))
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}

	first := got[0]
	want := record.Patient{
		ID:                 "P-2",
		Name:               "Anna Smith",
		PatientID:          "P-2",
		Sex:                "F",
		BirthDate:          "1985-05-15",
		StudyCount:         3,
		Issuer:             "HOSP",
		VerificationStatus: "VERIFIED",
	}
	first.RawData = nil
	if !reflect.DeepEqual(first, want) {
		t.Errorf("first = %+v\nwant  %+v", first, want)
	}

	if got[1].ID != "P-1" || got[1].Name != "Smithers" {
		t.Errorf("second = %+v (order must follow input)", got[1])
	}
	if got[1].StudyCount != 0 {
		t.Errorf("absent study count = %d", got[1].StudyCount)
	}
}

func TestPatients_NonArray(t *testing.T) {
	for _, body := range []string{"null", "{}", `"oops"`, "not json", ""} {
		got := Patients([]byte(body))
		if got == nil {
			t.Errorf("Patients(%q) returned nil, want empty slice", body)
		}
		if len(got) != 0 {
			t.Errorf("Patients(%q) returned %d records", body, len(got))
		}
	}
}

func TestPatients_MissingEverything(t *testing.T) {
	got := Patients([]byte(`[{"00080005": {"vr": "CS"}}, {}]`))
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	for i, p := range got {
		p.RawData = nil
		want := record.Patient{ID: []string{"patient_0", "patient_1"}[i]}
		if !reflect.DeepEqual(p, want) {
			t.Errorf("record %d = %+v, want %+v", i, p, want)
		}
	}
}

func TestPatients_Flattened(t *testing.T) {
	got := Patients([]byte(`[{"patientId": "X9", "name": "Roe^Rita", "birthDate": "19700101", "studyCount": "2"}]`))
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	p := got[0]
	if p.ID != "X9" || p.Name != "Rita Roe" || p.BirthDate != "1970-01-01" || p.StudyCount != 2 {
		t.Errorf("flattened = %+v", p)
	}
}

func TestPatients_ShortBirthDate(t *testing.T) {
	got := Patients([]byte(`[{"00100030": {"vr": "DA", "Value": ["1985"]}}]`))
	if got[0].BirthDate != "" {
		t.Errorf("BirthDate = %q, want empty", got[0].BirthDate)
	}
}

func TestPatients_Pure(t *testing.T) {
	a := Patients([]byte(twoPatients))
	b := Patients([]byte(twoPatients))
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Name != b[i].Name {
			t.Fatalf("record %d differs between runs", i)
		}
	}
}

func TestStudies(t *testing.T) {
	body := `[{
		"0020000D": {"vr": "UI", "Value": ["1.2.840.1"]},
		"00100010": {"vr": "PN", "Value": [{"Alphabetic": "Doe^John"}]},
		"00100020": {"vr": "LO", "Value": ["P1"]},
		"00080020": {"vr": "DA", "Value": ["20240301"]},
		"00080030": {"vr": "TM", "Value": ["083015.000"]},
		"00080061": {"vr": "CS", "Value": ["CT", "SR"]},
		"00081030": {"vr": "LO", "Value": ["CHEST"]},
		"00080050": {"vr": "SH", "Value": ["ACC1"]},
		"00201206": {"vr": "IS", "Value": [2]},
		"00201208": {"vr": "IS", "Value": [240]},
		"00081040": {"vr": "LO", "Value": ["Radiology"]}
	}, {}]`
	got := Studies([]byte(body))
	if len(got) != 2 {
		t.Fatalf("expected 2 studies, got %d", len(got))
	}
	s := got[0]
	if s.ID != "1.2.840.1" || s.PatientName != "John Doe" || s.StudyDate != "2024-03-01" || s.StudyTime != "08:30:15" {
		t.Errorf("study = %+v", s)
	}
	if s.Modality != "CT" || s.NumberOfSeries != 2 || s.NumberOfInstances != 240 || s.DepartmentName != "Radiology" {
		t.Errorf("study counters = %+v", s)
	}
	if got[1].ID != "study_1" {
		t.Errorf("synthetic id = %q", got[1].ID)
	}
}

func TestSeries(t *testing.T) {
	body := `[{
		"0020000E": {"vr": "UI", "Value": ["1.2.3.4"]},
		"00200011": {"vr": "IS", "Value": [5]},
		"00080060": {"vr": "CS", "Value": ["MR"]},
		"00080021": {"vr": "DA", "Value": ["20240101"]},
		"00201209": {"vr": "IS", "Value": [30]},
		"0020000D": {"vr": "UI", "Value": ["1.2.3"]}
	}, {"modality": "US"}]`
	got := Series([]byte(body))
	if len(got) != 2 {
		t.Fatalf("expected 2 series, got %d", len(got))
	}
	if got[0].ID != "1.2.3.4" || got[0].SeriesNumber != "5" || got[0].NumberOfInstances != 30 || got[0].SeriesDate != "2024-01-01" {
		t.Errorf("series = %+v", got[0])
	}
	if got[1].ID != "series_1" || got[1].Modality != "US" {
		t.Errorf("flattened series = %+v", got[1])
	}
}

func TestWorklist(t *testing.T) {
	body := `[{
		"00100010": {"vr": "PN", "Value": [{"Alphabetic": "Doe^Jane"}]},
		"00100020": {"vr": "LO", "Value": ["P7"]},
		"00400100": {"vr": "SQ", "Value": [{
			"00080060": {"vr": "CS", "Value": ["CT"]},
			"00400001": {"vr": "AE", "Value": ["CT01"]},
			"00400002": {"vr": "DA", "Value": ["20241019"]},
			"00400003": {"vr": "TM", "Value": ["0930"]},
			"00400007": {"vr": "LO", "Value": ["HEAD W/O"]}
		}]}
	}]`
	got := Worklist([]byte(body))
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	w := got[0]
	if w.ID != "mwl_0" || w.PatientName != "Jane Doe" || w.Modality != "CT" || w.StationAET != "CT01" {
		t.Errorf("item = %+v", w)
	}
	if w.StartDate != "2024-10-19" || w.StartTime != "0930" || w.Description != "HEAD W/O" {
		t.Errorf("scheduled step = %+v", w)
	}
}
