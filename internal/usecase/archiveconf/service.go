// Package archiveconf exposes the archive's configuration objects read-only.
package archiveconf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/kailas-cloud/curalink/internal/domain"
)

// Kind is a configuration collection under the archive's configuration root.
type Kind string

// Supported collections.
const (
	Devices     Kind = "devices"
	AEs         Kind = "aes"
	HL7Apps     Kind = "hl7apps"
	ExportRules Kind = "export-rules"
)

// Kinds lists every collection served by the passthrough.
var Kinds = []Kind{Devices, AEs, HL7Apps, ExportRules}

// path is the collection's location under the configuration root.
// Export rules are served by the archive's exporter listing.
func (k Kind) path() string {
	if k == ExportRules {
		return "export"
	}
	return string(k)
}

// Service proxies configuration reads. Bodies are passed through unchanged.
type Service struct {
	archive Archive
}

// New creates a configuration passthrough service.
func New(archive Archive) *Service {
	return &Service{archive: archive}
}

// List returns a whole collection. An empty archive response reads as [].
func (s *Service) List(ctx context.Context, service string, kind Kind) (json.RawMessage, error) {
	raw, err := s.archive.GetConfig(ctx, service, kind.path(), nil)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	if len(bytes.TrimSpace(raw.Body)) == 0 {
		return json.RawMessage("[]"), nil
	}
	return json.RawMessage(raw.Body), nil
}

// Get returns one named object of a collection.
func (s *Service) Get(ctx context.Context, service string, kind Kind, name string) (json.RawMessage, error) {
	if name == "" {
		return nil, fmt.Errorf("%s name is required: %w", kind, domain.ErrInvalidCriteria)
	}
	raw, err := s.archive.GetConfig(ctx, service, kind.path()+"/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", kind, name, err)
	}
	if len(bytes.TrimSpace(raw.Body)) == 0 {
		return nil, fmt.Errorf("%s %s: %w", kind, name, domain.ErrNotFound)
	}
	return json.RawMessage(raw.Body), nil
}
