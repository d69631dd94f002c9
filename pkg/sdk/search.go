package curalink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

func searchPage[T any](ctx context.Context, c *Client, op, path string, q url.Values) (_ Result[T], err error) {
	start := time.Now()
	defer func() { c.obs.observe(op, start, err) }()

	var items []T
	resp, err := c.get(ctx, path, c.withService(q), &items)
	if err != nil {
		return Result[T]{}, err
	}
	if items == nil {
		items = []T{}
	}
	c.obs.archive(op, resp.archiveRequests)
	return Result[T]{Items: items, Total: resp.total, ArchiveRequests: resp.archiveRequests}, nil
}

// Patients searches patients.
func (c *Client) Patients(ctx context.Context, q PatientQuery) (Result[Patient], error) {
	return searchPage[Patient](ctx, c, "patients", "/api/patients", patientForm(q))
}

// PatientStudies lists the studies of one patient. q narrows them further.
func (c *Client) PatientStudies(ctx context.Context, patientID string, q StudyQuery) (Result[Study], error) {
	if patientID == "" {
		return Result[Study]{}, errEmptyName
	}
	path := "/api/patients/" + url.PathEscape(patientID) + "/studies"
	return searchPage[Study](ctx, c, "patient_studies", path, studyForm(q))
}

// Studies searches studies.
func (c *Client) Studies(ctx context.Context, q StudyQuery) (Result[Study], error) {
	return searchPage[Study](ctx, c, "studies", "/api/studies", studyForm(q))
}

// Series searches series.
func (c *Client) Series(ctx context.Context, q SeriesQuery) (Result[Series], error) {
	return searchPage[Series](ctx, c, "series", "/api/series", seriesForm(q))
}

// Worklist searches the modality worklist.
func (c *Client) Worklist(ctx context.Context, q WorklistQuery) (Result[WorklistItem], error) {
	return searchPage[WorklistItem](ctx, c, "worklist", "/api/mwl", worklistForm(q))
}

// Hospitals lists the institutions derived from the archive.
func (c *Client) Hospitals(ctx context.Context, service string) (_ []Hospital, err error) {
	start := time.Now()
	defer func() { c.obs.observe("hospitals", start, err) }()

	var out []Hospital
	if _, err = c.get(ctx, "/api/hospitals", c.withService(serviceForm(service)), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Hospital fetches one institution by id.
func (c *Client) Hospital(ctx context.Context, service string, id int) (_ Hospital, err error) {
	start := time.Now()
	defer func() { c.obs.observe("hospital", start, err) }()

	var out Hospital
	path := "/api/hospitals/" + strconv.Itoa(id)
	if _, err = c.get(ctx, path, c.withService(serviceForm(service)), &out); err != nil {
		return Hospital{}, err
	}
	return out, nil
}

// Dashboard returns network-wide statistics. A non-empty hospitalID narrows
// them to one institution.
func (c *Client) Dashboard(ctx context.Context, service, hospitalID string) (_ DashboardStats, err error) {
	start := time.Now()
	defer func() { c.obs.observe("dashboard", start, err) }()

	path := "/api/dashboard"
	if hospitalID != "" {
		path += "/hospital/" + url.PathEscape(hospitalID)
	}
	var out DashboardStats
	if _, err = c.get(ctx, path, c.withService(serviceForm(service)), &out); err != nil {
		return DashboardStats{}, err
	}
	return out, nil
}

// Config reads archive configuration. An empty name lists the collection.
// The body is returned as the archive sent it.
func (c *Client) Config(ctx context.Context, service string, kind ConfigKind, name string) (_ json.RawMessage, err error) {
	start := time.Now()
	defer func() { c.obs.observe("config", start, err) }()

	switch kind {
	case ConfigDevices, ConfigAEs, ConfigHL7Apps, ConfigExportRules:
	default:
		return nil, fmt.Errorf("curalink: unknown config kind %q", kind)
	}
	path := "/api/" + string(kind)
	if name != "" {
		path += "/" + url.PathEscape(name)
	}
	var out json.RawMessage
	if _, err = c.get(ctx, path, c.withService(serviceForm(service)), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func serviceForm(service string) url.Values {
	f := form{}
	f.str("webAppService", service)
	return url.Values(f)
}
