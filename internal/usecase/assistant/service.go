// Package assistant implements quick search and the archive question answering assistant.
package assistant

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/curalink/internal/domain"
)

// DefaultMaxHistory bounds the turns kept for a persisted conversation.
const DefaultMaxHistory = 20

// Service answers quick searches and archive questions.
type Service struct {
	archive       Archive
	institutions  Institutions
	model         domain.ChatModel
	conversations Conversations
	maxHistory    int
	logger        *zap.Logger
	newID         func() string
}

// Config wires optional collaborators. Model and Conversations can be nil:
// without a model Ask fails with domain.ErrAssistantNotConfigured, without
// conversations nothing is persisted.
type Config struct {
	Model         domain.ChatModel
	Conversations Conversations
	MaxHistory    int
	Logger        *zap.Logger
}

// New creates an assistant service.
func New(archive Archive, institutions Institutions, cfg Config) *Service {
	s := &Service{
		archive:       archive,
		institutions:  institutions,
		model:         cfg.Model,
		conversations: cfg.Conversations,
		maxHistory:    cfg.MaxHistory,
		logger:        cfg.Logger,
		newID:         newConversationID,
	}
	if s.maxHistory <= 0 {
		s.maxHistory = DefaultMaxHistory
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}
