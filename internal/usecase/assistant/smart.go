package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/suyashkumar/dicom/pkg/tag"
	"go.uber.org/zap"

	"github.com/kailas-cloud/curalink/internal/domain"
	"github.com/kailas-cloud/curalink/internal/domain/criteria"
	"github.com/kailas-cloud/curalink/internal/domain/dicom"
	logpkg "github.com/kailas-cloud/curalink/internal/logger"
)

const (
	contextInstitutions = 15
	contextStudies      = 10
	contextPatients     = 15
	noArchiveData       = "No archive data available."
	systemPrompt        = "You are a helpful medical imaging assistant for a DICOM archive system called CuraLink. " +
		"Answer questions concisely and accurately based only on the provided archive data. " +
		"If the data doesn't contain enough information to answer, say so clearly. " +
		"Use plain professional language.\n\nCurrent archive data:\n"
)

// Keyword triggers are plain substring matches on the lowercased question.
var (
	studyWords    = []string{"study", "studies", "scan", "recent", "last", "latest", "exam"}
	patientWords  = []string{"patient", "name", "id", "who", "find"}
	modalityWords = []string{"modality", "modalities", "ct", "mr", "mri", "us", "xray", "x-ray", "nm", "pet"}

	recentStudyFields = dicom.IncludeFields(
		tag.ModalitiesInStudy, tag.PatientName, tag.PatientID, tag.StudyDate, tag.StudyDescription,
	)
)

// Question is a smart search request.
type Question struct {
	Question       string
	History        []domain.ChatMessage
	ConversationID string
	Service        string
}

// Answer is a smart search response. ConversationID is set when conversations are persisted.
type Answer struct {
	Answer         string `json:"answer"`
	Model          string `json:"model"`
	ConversationID string `json:"conversationId,omitempty"`
}

// Ask answers a natural-language question about the archive. Archive failures
// while building context are noted in the prompt, never returned.
func (s *Service) Ask(ctx context.Context, q Question) (Answer, error) {
	if s.model == nil {
		return Answer{}, domain.ErrAssistantNotConfigured
	}
	question := strings.TrimSpace(q.Question)
	if question == "" {
		return Answer{}, fmt.Errorf("%w: question is required", domain.ErrInvalidCriteria)
	}

	history := q.History
	convID := q.ConversationID
	if s.conversations != nil {
		if convID == "" {
			convID = s.newID()
		} else if len(history) == 0 {
			stored, err := s.conversations.Load(ctx, convID)
			if err != nil {
				logpkg.FromContext(ctx, s.logger).Warn("Conversation load failed",
					zap.String("conversation_id", convID), zap.Error(err))
			}
			history = stored
		}
	}

	system := systemPrompt + s.BuildContext(ctx, q.Service, question)

	completion, err := s.model.Complete(ctx, system, history, question)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}

	ans := Answer{Answer: completion.Text, Model: s.model.Model()}
	if s.conversations != nil {
		turns := append(append([]domain.ChatMessage(nil), history...),
			domain.ChatMessage{Role: domain.RoleUser, Content: question},
			domain.ChatMessage{Role: domain.RoleAssistant, Content: completion.Text},
		)
		if len(turns) > s.maxHistory {
			turns = turns[len(turns)-s.maxHistory:]
		}
		if err := s.conversations.Save(ctx, convID, turns); err != nil {
			logpkg.FromContext(ctx, s.logger).Warn("Conversation save failed",
				zap.String("conversation_id", convID), zap.Error(err))
		}
		ans.ConversationID = convID
	}
	return ans, nil
}

// BuildContext renders the archive summary sent to the model. Sections are
// added by keyword: recent studies, patients, modalities. Institutions are
// always included.
func (s *Service) BuildContext(ctx context.Context, service, question string) string {
	lower := strings.ToLower(question)
	var parts []string
	add := func(section string, err error) {
		if err != nil {
			parts = append(parts, fmt.Sprintf("(archive data partially unavailable: %v)", err))
			return
		}
		if section != "" {
			parts = append(parts, section)
		}
	}

	add(s.institutionSection(ctx, service))
	if mentions(lower, studyWords) {
		add(s.studySection(ctx, service))
	}
	if mentions(lower, patientWords) {
		add(s.patientSection(ctx, service))
	}
	if mentions(lower, modalityWords) {
		add(s.modalitySection(ctx, service))
	}

	if len(parts) == 0 {
		return noArchiveData
	}
	return strings.Join(parts, "\n\n")
}

func (s *Service) institutionSection(ctx context.Context, service string) (string, error) {
	if s.institutions == nil {
		return "", nil
	}
	items, err := s.institutions.List(ctx, service)
	if err != nil || len(items) == 0 {
		return "", err
	}
	var studies, patients int
	for _, inst := range items {
		studies += inst.StudyCount
		patients += inst.PatientCount
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Archive totals: %d studies, %d patients\nInstitutions:", studies, patients)
	for _, inst := range items[:min(len(items), contextInstitutions)] {
		fmt.Fprintf(&b, "\n  - %s: %d studies, %d patients", inst.Name, inst.StudyCount, inst.PatientCount)
	}
	return b.String(), nil
}

func (s *Service) studySection(ctx context.Context, service string) (string, error) {
	var p criteria.Params
	p.Add("limit", "10")
	p.Add("orderby", "-StudyDate")
	p.Add("includefield", recentStudyFields)
	raw, err := s.archive.Get(ctx, criteria.Query{Service: service, Resource: criteria.ResourceStudies, Params: p})
	if err != nil {
		return "", err
	}
	recs, _ := dicom.ParseArray(raw.Body)
	if len(recs) == 0 {
		return "", nil
	}
	lines := []string{"Recent studies:"}
	for _, r := range recs[:min(len(recs), contextStudies)] {
		lines = append(lines, fmt.Sprintf("  - %s | %s | %s | %s",
			nameOr(r, "?"),
			strings.Join(r.Strings(tag.ModalitiesInStudy, "modalitiesInStudy"), ", "),
			dicom.FormatDate(r.String(tag.StudyDate, "studyDate")),
			r.String(tag.StudyDescription, "studyDescription"),
		))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) patientSection(ctx context.Context, service string) (string, error) {
	var p criteria.Params
	p.Add("limit", "15")
	p.Add("fuzzymatching", "true")
	raw, err := s.archive.Get(ctx, criteria.Query{Service: service, Resource: criteria.ResourcePatients, Params: p})
	if err != nil {
		return "", err
	}
	recs, _ := dicom.ParseArray(raw.Body)
	if len(recs) == 0 {
		return "", nil
	}
	lines := []string{"Patients in archive:"}
	for _, r := range recs[:min(len(recs), contextPatients)] {
		pid := r.String(tag.PatientID, "patientId")
		lines = append(lines, fmt.Sprintf("  - %s (ID: %s)", nameOr(r, pid), pid))
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) modalitySection(ctx context.Context, service string) (string, error) {
	raw, err := s.archive.GetConfig(ctx, service, "modalities", nil)
	if err != nil {
		return "", err
	}
	var mods []string
	if err := json.Unmarshal(raw.Body, &mods); err != nil {
		return "", fmt.Errorf("decode modalities: %w", err)
	}
	if len(mods) == 0 {
		return "", nil
	}
	return "Available modalities: " + strings.Join(mods, ", "), nil
}

func mentions(question string, words []string) bool {
	for _, w := range words {
		if strings.Contains(question, w) {
			return true
		}
	}
	return false
}

func newConversationID() string { return uuid.New().String() }
