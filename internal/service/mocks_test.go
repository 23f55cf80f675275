package service

import (
	"context"
	"os"
	"testing"
	"time"

	"ielts-prep/internal/domain"
	"ielts-prep/internal/logger"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Replace(zap.NewNop())
	os.Exit(m.Run())
}

// --- MockTestRepository ---
type MockTestRepository struct {
	mock.Mock
}

func (m *MockTestRepository) FindCandidates(ctx context.Context, module domain.Module, topic string) ([]*domain.CandidateTest, error) {
	args := m.Called(ctx, module, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CandidateTest), args.Error(1)
}

func (m *MockTestRepository) RecentHistory(ctx context.Context, userID string, limit int) ([]domain.UserTestHistoryEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserTestHistoryEntry), args.Error(1)
}

func (m *MockTestRepository) MarkServed(ctx context.Context, userID, testID string, servedAt time.Time) error {
	args := m.Called(ctx, userID, testID, servedAt)
	return args.Error(0)
}

func (m *MockTestRepository) CreateTest(ctx context.Context, test *domain.CandidateTest) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

// --- MockTopicCompletionRepository ---
type MockTopicCompletionRepository struct {
	mock.Mock
}

func (m *MockTopicCompletionRepository) GetCounts(ctx context.Context, userID string, module domain.Module) (map[string]int, error) {
	args := m.Called(ctx, userID, module)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func (m *MockTopicCompletionRepository) IncrementCompletion(ctx context.Context, userID string, module domain.Module, topic string) (int, error) {
	args := m.Called(ctx, userID, module, topic)
	return args.Int(0), args.Error(1)
}

// --- MockPresetRepository ---
type MockPresetRepository struct {
	mock.Mock
}

func (m *MockPresetRepository) ListPublished(ctx context.Context, module domain.Module) ([]*domain.Preset, error) {
	args := m.Called(ctx, module)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Preset), args.Error(1)
}

func (m *MockPresetRepository) SavePreset(ctx context.Context, preset *domain.Preset) error {
	args := m.Called(ctx, preset)
	return args.Error(0)
}

// --- MockUsageStore ---
type MockUsageStore struct {
	mock.Mock
}

func (m *MockUsageStore) GetUsage(ctx context.Context, userID, date string) (*domain.DailyUsage, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyUsage), args.Error(1)
}

func (m *MockUsageStore) IncrementUsage(ctx context.Context, userID, date string, tokens int) (*domain.DailyUsage, error) {
	args := m.Called(ctx, userID, date, tokens)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyUsage), args.Error(1)
}

func (m *MockUsageStore) DeleteUsage(ctx context.Context, userID, date string) error {
	args := m.Called(ctx, userID, date)
	return args.Error(0)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockQuotaService ---
type MockQuotaService struct {
	mock.Mock
}

func (m *MockQuotaService) CheckAvailability(ctx context.Context, userID string, estimatedCost int) (*domain.QuotaStatus, error) {
	args := m.Called(ctx, userID, estimatedCost)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuotaStatus), args.Error(1)
}

func (m *MockQuotaService) RecordUsage(ctx context.Context, userID string, tokens int) (*domain.DailyUsage, error) {
	args := m.Called(ctx, userID, tokens)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyUsage), args.Error(1)
}

func (m *MockQuotaService) ResetToday(ctx context.Context, userID string) (*domain.QuotaReset, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuotaReset), args.Error(1)
}

// --- MockTopicCycleService ---
type MockTopicCycleService struct {
	mock.Mock
}

func (m *MockTopicCycleService) NextTopic(ctx context.Context, userID string, module domain.Module, subtype string) (*domain.TopicSelection, error) {
	args := m.Called(ctx, userID, module, subtype)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TopicSelection), args.Error(1)
}

func (m *MockTopicCycleService) RecordCompletion(ctx context.Context, userID string, module domain.Module, topic string) (int, error) {
	args := m.Called(ctx, userID, module, topic)
	return args.Int(0), args.Error(1)
}

// --- MockTestGenerator ---
type MockTestGenerator struct {
	mock.Mock
}

func (m *MockTestGenerator) GenerateTest(ctx context.Context, opts domain.GenerationOptions) (*domain.GeneratedTest, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneratedTest), args.Error(1)
}

func (m *MockTestGenerator) ModelID() string {
	return m.Called().String(0)
}

// fixedRand returns the same values on every call.
type fixedRand struct {
	f float64
	n int
}

func (r fixedRand) Float64() float64 { return r.f }

func (r fixedRand) IntN(n int) int {
	if r.n >= n {
		return n - 1
	}
	return r.n
}
