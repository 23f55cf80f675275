package service

import (
	"context"
	"fmt"
	"time"

	"ielts-prep/internal/domain"
	"ielts-prep/internal/logger"

	"go.uber.org/zap"
)

// QuotaService tracks per-user daily provider token usage.
type QuotaService interface {
	CheckAvailability(ctx context.Context, userID string, estimatedCost int) (*domain.QuotaStatus, error)
	RecordUsage(ctx context.Context, userID string, tokens int) (*domain.DailyUsage, error)
	ResetToday(ctx context.Context, userID string) (*domain.QuotaReset, error)
}

type quotaServiceImpl struct {
	store domain.UsageStore
	limit int
	now   func() time.Time
}

func NewQuotaService(store domain.UsageStore, dailyLimit int) QuotaService {
	if dailyLimit <= 0 {
		dailyLimit = domain.DefaultDailyTokenLimit
	}
	return &quotaServiceImpl{store: store, limit: dailyLimit, now: time.Now}
}

func (s *quotaServiceImpl) today() string {
	return domain.UsageDate(s.now())
}

// CheckAvailability is read-only.
func (s *quotaServiceImpl) CheckAvailability(ctx context.Context, userID string, estimatedCost int) (*domain.QuotaStatus, error) {
	if userID == "" {
		return nil, domain.NewUnauthenticatedError()
	}
	if estimatedCost < 0 {
		return nil, domain.NewInvalidInputError("estimated cost must not be negative")
	}

	usage, err := s.store.GetUsage(ctx, userID, s.today())
	if err != nil {
		return nil, domain.NewInternalError("failed to read usage", err)
	}

	status := domain.ComputeQuotaStatus(s.limit, usage.TokensUsed, usage.RequestsCount, estimatedCost)
	return &status, nil
}

// RecordUsage adds tokens to today's record and counts one request. The
// increment happens in the store, never as read-modify-write here.
func (s *quotaServiceImpl) RecordUsage(ctx context.Context, userID string, tokens int) (*domain.DailyUsage, error) {
	if userID == "" {
		return nil, domain.NewUnauthenticatedError()
	}
	if tokens < 0 {
		return nil, domain.NewInvalidInputError("tokens used must not be negative")
	}

	usage, err := s.store.IncrementUsage(ctx, userID, s.today(), tokens)
	if err != nil {
		return nil, domain.NewInternalError("failed to record usage", err)
	}

	logger.Get().Debug("Recorded provider usage",
		zap.String("userID", userID),
		zap.Int("tokens", tokens),
		zap.Int("tokensUsedToday", usage.TokensUsed))
	return usage, nil
}

func (s *quotaServiceImpl) ResetToday(ctx context.Context, userID string) (*domain.QuotaReset, error) {
	if userID == "" {
		return nil, domain.NewUnauthenticatedError()
	}

	date := s.today()
	if err := s.store.DeleteUsage(ctx, userID, date); err != nil {
		return nil, domain.NewInternalError(fmt.Sprintf("failed to reset usage for %s", date), err)
	}

	logger.Get().Info("User reset local usage tracking", zap.String("userID", userID), zap.String("date", date))
	return &domain.QuotaReset{
		DisplayOnly: true,
		Message:     domain.QuotaResetMessage,
		Date:        date,
	}, nil
}
