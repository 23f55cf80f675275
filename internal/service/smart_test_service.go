package service

import (
	"context"
	"fmt"
	"time"

	"ielts-prep/internal/config"
	"ielts-prep/internal/domain"
	"ielts-prep/internal/logger"

	"go.uber.org/zap"
)

// SmartTestService serves stored tests, avoiding what the user saw recently
// and accents they heard recently.
type SmartTestService interface {
	// SelectTest is not idempotent: the chosen test's usage counter and the
	// user's history are updated before it returns.
	SelectTest(ctx context.Context, userID string, req domain.TestSelectionRequest) (*domain.TestSelection, error)
}

type smartTestServiceImpl struct {
	tests         domain.TestRepository
	topics        TopicCycleService
	rnd           domain.RandomSource
	historyWindow int
	accentWindow  int
	now           func() time.Time
}

func NewSmartTestService(tests domain.TestRepository, topics TopicCycleService, rnd domain.RandomSource, cfg config.SelectionConfig) SmartTestService {
	return &smartTestServiceImpl{
		tests:         tests,
		topics:        topics,
		rnd:           rnd,
		historyWindow: cfg.HistoryWindow,
		accentWindow:  cfg.AccentWindow,
		now:           time.Now,
	}
}

func (s *smartTestServiceImpl) SelectTest(ctx context.Context, userID string, req domain.TestSelectionRequest) (*domain.TestSelection, error) {
	if userID == "" {
		return nil, domain.NewUnauthenticatedError()
	}
	if !req.Module.IsValid() {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("unknown module %q", req.Module))
	}

	selection := &domain.TestSelection{Topic: req.Topic}
	if selection.Topic == "" && req.UseTopicCycle {
		next, err := s.topics.NextTopic(ctx, userID, req.Module, req.Subtype)
		if err != nil {
			return nil, err
		}
		selection.Topic = next.Topic
		selection.TopicFromCycle = true
	}

	candidates, err := s.tests.FindCandidates(ctx, req.Module, selection.Topic)
	if err != nil {
		return nil, domain.NewInternalError("failed to load candidate tests", err)
	}
	if len(candidates) == 0 && selection.TopicFromCycle {
		candidates, err = s.tests.FindCandidates(ctx, req.Module, "")
		if err != nil {
			return nil, domain.NewInternalError("failed to load candidate tests", err)
		}
		selection.WidenedToModule = true
	}
	if len(candidates) == 0 {
		return nil, domain.NewNoTestsAvailableError(req.Module, selection.Topic)
	}

	history, err := s.tests.RecentHistory(ctx, userID, s.historyWindow)
	if err != nil {
		return nil, domain.NewInternalError("failed to load test history", err)
	}

	input := domain.TestSelectionInput{
		Candidates:      candidates,
		RecentTestIDs:   make(map[string]struct{}, len(history)+len(req.ExcludeIDs)),
		RecentAccents:   make(map[string]struct{}, s.accentWindow),
		PreferredAccent: req.PreferredAccent,
	}
	for i, h := range history {
		input.RecentTestIDs[h.TestID] = struct{}{}
		if i < s.accentWindow && h.Accent != "" {
			input.RecentAccents[h.Accent] = struct{}{}
		}
	}
	for _, id := range req.ExcludeIDs {
		input.RecentTestIDs[id] = struct{}{}
	}

	picked := domain.PickTest(input, s.rnd)

	servedAt := s.now()
	if err := s.tests.MarkServed(ctx, userID, picked.ID, servedAt); err != nil {
		return nil, domain.NewInternalError("failed to record served test", err)
	}
	picked.TimesUsed++
	picked.LastUsedAt = &servedAt

	logger.Get().Info("Served smart test",
		zap.String("userID", userID),
		zap.String("module", string(req.Module)),
		zap.String("topic", selection.Topic),
		zap.String("testID", picked.ID),
		zap.String("accent", picked.Accent),
		zap.Int("candidates", len(candidates)))

	selection.Test = picked
	return selection, nil
}
