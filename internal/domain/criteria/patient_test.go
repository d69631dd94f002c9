package criteria

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/curalink/internal/domain"
)

func TestPatient_Params(t *testing.T) {
	tests := []struct {
		name string
		c    Patient
		want string
	}{
		{
			name: "fuzzy family name with limit",
			c:    Patient{FamilyName: "Smith", Fuzzy: true, Limit: 10, OnlyWithStudies: false},
			want: "PatientName=*Smith*&limit=10",
		},
		{
			name: "exact id never wildcarded",
			c:    Patient{PatientID: "P-001", Fuzzy: true},
			want: "PatientID=P-001",
		},
		{
			name: "birth date compacted",
			c:    Patient{BirthDate: "1985-05-15"},
			want: "PatientBirthDate=19850515",
		},
		{
			name: "all fields in order",
			c: Patient{
				FamilyName:         "Doe",
				PatientID:          "42",
				Issuer:             "HOSP",
				Sex:                "F",
				BirthDate:          "2000-01-02",
				VerificationStatus: "VERIFIED",
				Limit:              25,
				OrderBy:            "-PatientBirthDate",
				OnlyWithStudies:    true,
				Merged:             true,
			},
			want: "PatientName=Doe&PatientID=42&IssuerOfPatientID=HOSP&PatientSex=F&PatientBirthDate=20000102" +
				"&PatientVerificationStatus=VERIFIED&limit=25&orderby=-PatientBirthDate&onlyWithStudies=true&merged=true",
		},
		{
			name: "empty criteria",
			c:    Patient{},
			want: "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.c.Params().Encode(); got != tc.want {
				t.Errorf("Params().Encode() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPatient_ServiceIsNotAParam(t *testing.T) {
	p := Patient{Service: "orthanc", PatientID: "1"}.Params()
	for _, kv := range p {
		if kv.Value == "orthanc" {
			t.Fatalf("service leaked into params: %v", p)
		}
	}
}

func TestPatient_Validate(t *testing.T) {
	tests := []struct {
		name      string
		c         Patient
		wantErr   bool
		wantLimit int
	}{
		{"zero limit", Patient{}, false, 0},
		{"clamped", Patient{Limit: MaxLimit + 5}, false, MaxLimit},
		{"negative limit", Patient{Limit: -1}, true, 0},
		{"bad sex", Patient{Sex: "X"}, true, 0},
		{"good sex", Patient{Sex: "O"}, false, 0},
		{"descending order", Patient{OrderBy: "-updatedTime"}, false, 0},
		{"unknown order", Patient{OrderBy: "StudyDate"}, true, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := tc.c
			err := c.Validate()
			if tc.wantErr {
				if !errors.Is(err, domain.ErrInvalidCriteria) {
					t.Fatalf("expected ErrInvalidCriteria, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Limit != tc.wantLimit {
				t.Errorf("limit = %d, want %d", c.Limit, tc.wantLimit)
			}
		})
	}
}
