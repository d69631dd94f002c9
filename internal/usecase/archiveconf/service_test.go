package archiveconf

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/domain/criteria"
)

type mockArchive struct {
	body  string
	err   error
	paths []string
}

func (m *mockArchive) GetConfig(_ context.Context, _, path string, _ criteria.Params) (domain.RawResult, error) {
	m.paths = append(m.paths, path)
	if m.err != nil {
		return domain.RawResult{}, m.err
	}
	return domain.RawResult{Body: []byte(m.body)}, nil
}

func TestList(t *testing.T) {
	arch := &mockArchive{body: `[{"dicomDeviceName":"dcm4chee-arc"}]`}
	got, err := New(arch).List(context.Background(), "", Devices)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != arch.body || arch.paths[0] != "devices" {
		t.Errorf("got %s from %v", got, arch.paths)
	}
}

func TestList_ExportRulesUseExporterListing(t *testing.T) {
	arch := &mockArchive{body: `[{"id":"STORESCP","description":"forward to PACS"}]`}
	svc := New(arch)
	if _, err := svc.List(context.Background(), "", ExportRules); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), "", ExportRules, "STORESCP"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(arch.paths) != 2 || arch.paths[0] != "export" || arch.paths[1] != "export/STORESCP" {
		t.Errorf("paths = %v", arch.paths)
	}
}

func TestList_EmptyBody(t *testing.T) {
	got, err := New(&mockArchive{body: " "}).List(context.Background(), "", AEs)
	if err != nil || string(got) != "[]" {
		t.Errorf("got %s, %v", got, err)
	}
}

func TestGet_EscapesName(t *testing.T) {
	arch := &mockArchive{body: `{"hl7ApplicationName":"HL7RCV|DCM4CHEE"}`}
	if _, err := New(arch).Get(context.Background(), "", HL7Apps, "HL7RCV|DCM4CHEE"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if arch.paths[0] != "hl7apps/HL7RCV%7CDCM4CHEE" {
		t.Errorf("path = %q", arch.paths[0])
	}
}

func TestGet_Errors(t *testing.T) {
	if _, err := New(&mockArchive{}).Get(context.Background(), "", AEs, ""); !errors.Is(err, domain.ErrInvalidCriteria) {
		t.Errorf("empty name: %v", err)
	}
	if _, err := New(&mockArchive{}).Get(context.Background(), "", AEs, "X"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("empty body: %v", err)
	}
	failing := &mockArchive{err: domain.ErrNotFound}
	if _, err := New(failing).List(context.Background(), "orthanc", Devices); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("no config root: %v", err)
	}
}
