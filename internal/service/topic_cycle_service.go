package service

import (
	"context"
	"fmt"

	"ielts-prep/internal/domain"
	"ielts-prep/internal/logger"

	"go.uber.org/zap"
)

// TopicCycleService serves topics round-robin by completion count.
type TopicCycleService interface {
	NextTopic(ctx context.Context, userID string, module domain.Module, subtype string) (*domain.TopicSelection, error)
	// RecordCompletion is called after the user finishes a test on topic.
	// Serving a test alone never counts as a completion.
	RecordCompletion(ctx context.Context, userID string, module domain.Module, topic string) (int, error)
}

type topicCycleServiceImpl struct {
	repo domain.TopicCompletionRepository
}

func NewTopicCycleService(repo domain.TopicCompletionRepository) TopicCycleService {
	return &topicCycleServiceImpl{repo: repo}
}

func (s *topicCycleServiceImpl) NextTopic(ctx context.Context, userID string, module domain.Module, subtype string) (*domain.TopicSelection, error) {
	if userID == "" {
		return nil, domain.NewUnauthenticatedError()
	}
	catalog, ok := domain.TopicCatalog(module, subtype)
	if !ok {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("no topic catalog for module %q subtype %q", module, subtype))
	}

	stored, err := s.repo.GetCounts(ctx, userID, module)
	if err != nil {
		return nil, domain.NewInternalError("failed to load topic completions", err)
	}

	counts := make(map[string]int, len(catalog))
	for _, t := range catalog {
		c := stored[t]
		if c < 0 {
			c = 0
		}
		counts[t] = c
	}

	topic, cycle, ok := domain.SelectNextTopic(catalog, counts)
	if !ok {
		return nil, domain.NewNoTestsAvailableError(module, "")
	}

	logger.Get().Debug("Selected next topic",
		zap.String("userID", userID),
		zap.String("module", string(module)),
		zap.String("topic", topic),
		zap.Int("cycle", cycle))

	return &domain.TopicSelection{
		Module:     module,
		Subtype:    subtype,
		Topic:      topic,
		CycleCount: cycle,
		Counts:     counts,
	}, nil
}

func (s *topicCycleServiceImpl) RecordCompletion(ctx context.Context, userID string, module domain.Module, topic string) (int, error) {
	if userID == "" {
		return 0, domain.NewUnauthenticatedError()
	}
	if !domain.IsKnownTopic(module, topic) {
		return 0, domain.NewInvalidInputError(fmt.Sprintf("unknown %s topic %q", module, topic))
	}

	count, err := s.repo.IncrementCompletion(ctx, userID, module, topic)
	if err != nil {
		return 0, domain.NewInternalError("failed to record topic completion", err)
	}
	return count, nil
}
