package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"ielts-prep/internal/config"
	"ielts-prep/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const listeningPayload = `{"audio_script":"Welcome to the museum tour...","question_groups":[{"question_type":"form_completion","questions":[{"question_number":1,"question_text":"Ticket price:","correct_answer":"12 pounds"}]}]}`

var listeningOpts = domain.GenerationOptions{
	Module:        domain.ModuleListening,
	QuestionType:  "form_completion",
	Difficulty:    domain.DifficultyMedium,
	QuestionCount: 10,
	TimeMinutes:   30,
}

type generationFixture struct {
	gen     *MockTestGenerator
	presets *MockPresetRepository
	quota   *MockQuotaService
	svc     *generationServiceImpl
}

func newGenerationFixture(backoff time.Duration) *generationFixture {
	f := &generationFixture{
		gen:     new(MockTestGenerator),
		presets: new(MockPresetRepository),
		quota:   new(MockQuotaService),
	}
	f.svc = NewGenerationService(f.gen, f.presets, f.quota, fixedRand{}, config.GenerationConfig{
		MaxRetries:   2,
		RetryBackoff: backoff,
	}).(*generationServiceImpl)
	f.svc.now = func() time.Time { return time.UnixMilli(1_777_000_000_000) }
	return f
}

func (f *generationFixture) quotaOK() {
	f.quota.On("CheckAvailability", mock.Anything, "user-1", mock.Anything).
		Return(&domain.QuotaStatus{HasEnough: true, Remaining: 1_500_000}, nil)
}

func validPresets() []*domain.Preset {
	return []*domain.Preset{
		{ID: "broken", Module: domain.ModuleListening, Payload: json.RawMessage(`{"question_groups":[]}`)},
		{ID: "p-2", Module: domain.ModuleListening, Payload: json.RawMessage(listeningPayload)},
	}
}

func TestGenerationService_SucceedsFirstAttempt(t *testing.T) {
	f := newGenerationFixture(time.Millisecond)
	f.quotaOK()
	f.gen.On("GenerateTest", mock.Anything, listeningOpts).
		Return(&domain.GeneratedTest{Payload: json.RawMessage(listeningPayload), TotalTokens: 1234, Model: "gemini-2.0-flash"}, nil).Once()
	f.quota.On("RecordUsage", mock.Anything, "user-1", 1234).Return(&domain.DailyUsage{TokensUsed: 1234}, nil)

	result := f.svc.Generate(context.Background(), "user-1", "req-1", listeningOpts)

	assert.True(t, result.Success)
	assert.Equal(t, domain.GenerationSucceeded, result.Status)
	assert.False(t, result.UsedFallback)
	assert.Len(t, result.TestID, 26)
	assert.JSONEq(t, listeningPayload, string(result.Data))
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1234, result.TokensUsed)
	assert.Equal(t, "req-1", result.RequestID)
	assert.Empty(t, result.ErrorCode)
	f.presets.AssertNotCalled(t, "ListPublished", mock.Anything, mock.Anything)
	f.quota.AssertExpectations(t)
	assert.Zero(t, f.svc.inflight.len())
}

func TestGenerationService_RecordsEstimateWhenProviderReportsNoTokens(t *testing.T) {
	f := newGenerationFixture(time.Millisecond)
	f.quotaOK()
	f.gen.On("GenerateTest", mock.Anything, listeningOpts).
		Return(&domain.GeneratedTest{Payload: json.RawMessage(listeningPayload)}, nil)
	f.quota.On("RecordUsage", mock.Anything, "user-1", 25000).Return(&domain.DailyUsage{}, nil)

	result := f.svc.Generate(context.Background(), "user-1", "", listeningOpts)

	assert.True(t, result.Success)
	assert.Equal(t, 25000, result.TokensUsed)
	assert.NotEmpty(t, result.RequestID)
	f.quota.AssertExpectations(t)
}

func TestGenerationService_UsageWriteFailureDoesNotFailRequest(t *testing.T) {
	f := newGenerationFixture(time.Millisecond)
	f.quotaOK()
	f.gen.On("GenerateTest", mock.Anything, listeningOpts).
		Return(&domain.GeneratedTest{Payload: json.RawMessage(listeningPayload), TotalTokens: 10}, nil)
	f.quota.On("RecordUsage", mock.Anything, "user-1", 10).Return(nil, errors.New("redis down"))

	result := f.svc.Generate(context.Background(), "user-1", "req-1", listeningOpts)
	assert.True(t, result.Success)
	assert.Equal(t, domain.GenerationSucceeded, result.Status)
}

func TestGenerationService_RetriesOnceThenFallsBack(t *testing.T) {
	backoff := 30 * time.Millisecond
	f := newGenerationFixture(backoff)
	f.quotaOK()
	f.gen.On("GenerateTest", mock.Anything, listeningOpts).Return(nil, errors.New("503 unavailable"))
	f.presets.On("ListPublished", mock.Anything, domain.ModuleListening).Return(validPresets(), nil)

	start := time.Now()
	result := f.svc.Generate(context.Background(), "user-1", "req-1", listeningOpts)
	elapsed := time.Since(start)

	f.gen.AssertNumberOfCalls(t, "GenerateTest", 2)
	assert.GreaterOrEqual(t, elapsed, backoff)
	assert.True(t, result.Success)
	assert.True(t, result.UsedFallback)
	assert.Equal(t, domain.GenerationFallbackSucceeded, result.Status)
	assert.Equal(t, "preset-p-2-1777000000000", result.TestID)
	assert.True(t, strings.Contains(result.TestID, "p-2"))
	assert.JSONEq(t, listeningPayload, string(result.Data))
	assert.Equal(t, domain.ErrProviderError, result.ErrorCode)
	assert.Equal(t, 2, result.Attempts)
	f.quota.AssertNotCalled(t, "RecordUsage", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerationService_InvalidPayloadIsRetried(t *testing.T) {
	f := newGenerationFixture(time.Millisecond)
	f.quotaOK()
	f.gen.On("GenerateTest", mock.Anything, listeningOpts).
		Return(&domain.GeneratedTest{Payload: json.RawMessage(`{"question_groups":[{"question_type":"mcq","questions":[]}]}`)}, nil).Once()
	f.gen.On("GenerateTest", mock.Anything, listeningOpts).
		Return(&domain.GeneratedTest{Payload: json.RawMessage(listeningPayload), TotalTokens: 900}, nil).Once()
	f.quota.On("RecordUsage", mock.Anything, "user-1", 900).Return(&domain.DailyUsage{}, nil)

	result := f.svc.Generate(context.Background(), "user-1", "req-1", listeningOpts)

	assert.True(t, result.Success)
	assert.False(t, result.UsedFallback)
	assert.Equal(t, 2, result.Attempts)
	f.gen.AssertNumberOfCalls(t, "GenerateTest", 2)
}

func TestGenerationService_ProviderQuotaSkipsRetry(t *testing.T) {
	f := newGenerationFixture(time.Hour)
	f.quotaOK()
	f.gen.On("GenerateTest", mock.Anything, listeningOpts).
		Return(nil, &domain.ProviderQuotaError{Err: errors.New("RESOURCE_EXHAUSTED")})
	f.presets.On("ListPublished", mock.Anything, domain.ModuleListening).Return(validPresets(), nil)

	result := f.svc.Generate(context.Background(), "user-1", "req-1", listeningOpts)

	f.gen.AssertNumberOfCalls(t, "GenerateTest", 1)
	assert.True(t, result.UsedFallback)
	assert.Equal(t, domain.ErrProviderQuotaExceeded, result.ErrorCode)
	assert.Equal(t, 1, result.Attempts)
}

func TestGenerationService_CredentialErrorWithoutPresets(t *testing.T) {
	f := newGenerationFixture(time.Hour)
	f.quotaOK()
	f.gen.On("GenerateTest", mock.Anything, listeningOpts).
		Return(nil, &domain.ProviderAuthError{Err: errors.New("403")})
	f.presets.On("ListPublished", mock.Anything, domain.ModuleListening).Return([]*domain.Preset{}, nil)

	result := f.svc.Generate(context.Background(), "user-1", "req-1", listeningOpts)

	f.gen.AssertNumberOfCalls(t, "GenerateTest", 1)
	assert.False(t, result.Success)
	assert.Equal(t, domain.GenerationFailed, result.Status)
	assert.Equal(t, domain.ErrProviderCredentials, result.ErrorCode)
	assert.Equal(t, domain.UserMessage(domain.ErrProviderCredentials), result.Error)
}

func TestGenerationService_NoFallbackAvailable(t *testing.T) {
	tests := []struct {
		name    string
		presets []*domain.Preset
		err     error
	}{
		{"no presets", []*domain.Preset{}, nil},
		{"only invalid presets", validPresets()[:1], nil},
		{"preset store failure", nil, errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGenerationFixture(time.Millisecond)
			f.quotaOK()
			f.gen.On("GenerateTest", mock.Anything, listeningOpts).Return(nil, errors.New("boom"))
			f.presets.On("ListPublished", mock.Anything, domain.ModuleListening).Return(tt.presets, tt.err)

			result := f.svc.Generate(context.Background(), "user-1", "req-1", listeningOpts)

			assert.False(t, result.Success)
			assert.Equal(t, domain.GenerationFailed, result.Status)
			assert.Equal(t, domain.ErrNoFallbackAvailable, result.ErrorCode)
			assert.Equal(t, domain.UserMessage(domain.ErrNoFallbackAvailable), result.Error)
			assert.Empty(t, result.TestID)
		})
	}
}

func TestGenerationService_Unauthenticated(t *testing.T) {
	f := newGenerationFixture(time.Millisecond)

	result := f.svc.Generate(context.Background(), "", "req-1", listeningOpts)

	assert.False(t, result.Success)
	assert.Equal(t, domain.ErrUnauthenticated, result.ErrorCode)
	f.gen.AssertNotCalled(t, "GenerateTest", mock.Anything, mock.Anything)
	f.quota.AssertNotCalled(t, "CheckAvailability", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerationService_InvalidModule(t *testing.T) {
	f := newGenerationFixture(time.Millisecond)
	opts := listeningOpts
	opts.Module = "maths"

	result := f.svc.Generate(context.Background(), "user-1", "req-1", opts)

	assert.Equal(t, domain.ErrInvalidInput, result.ErrorCode)
	f.gen.AssertNotCalled(t, "GenerateTest", mock.Anything, mock.Anything)
}

func TestGenerationService_QuotaWarningDoesNotBlock(t *testing.T) {
	f := newGenerationFixture(time.Millisecond)
	f.quota.On("CheckAvailability", mock.Anything, "user-1", 25000).
		Return(&domain.QuotaStatus{HasEnough: false, Remaining: 100}, nil)
	f.gen.On("GenerateTest", mock.Anything, listeningOpts).
		Return(&domain.GeneratedTest{Payload: json.RawMessage(listeningPayload), TotalTokens: 20000}, nil)
	f.quota.On("RecordUsage", mock.Anything, "user-1", 20000).Return(&domain.DailyUsage{}, nil)

	result := f.svc.Generate(context.Background(), "user-1", "req-1", listeningOpts)

	assert.True(t, result.Success)
	assert.True(t, result.QuotaWarning)
}

func TestGenerationService_QuotaCheckFailureIsIgnored(t *testing.T) {
	f := newGenerationFixture(time.Millisecond)
	f.quota.On("CheckAvailability", mock.Anything, "user-1", 25000).Return(nil, errors.New("redis down"))
	f.gen.On("GenerateTest", mock.Anything, listeningOpts).
		Return(&domain.GeneratedTest{Payload: json.RawMessage(listeningPayload), TotalTokens: 1}, nil)
	f.quota.On("RecordUsage", mock.Anything, "user-1", 1).Return(&domain.DailyUsage{}, nil)

	result := f.svc.Generate(context.Background(), "user-1", "req-1", listeningOpts)

	assert.True(t, result.Success)
	assert.False(t, result.QuotaWarning)
}

func TestGenerationService_CancelDuringProviderCall(t *testing.T) {
	f := newGenerationFixture(time.Millisecond)
	f.quotaOK()

	started := make(chan struct{})
	f.gen.On("GenerateTest", mock.Anything, listeningOpts).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			close(started)
			<-ctx.Done()
		}).
		Return(nil, context.Canceled).Once()

	done := make(chan *domain.GenerationResult, 1)
	go func() {
		done <- f.svc.Generate(context.Background(), "user-1", "req-1", listeningOpts)
	}()

	<-started
	assert.False(t, f.svc.Cancel("user-2", "req-1"), "other users cannot cancel the request")
	assert.True(t, f.svc.Cancel("user-1", "req-1"))

	var result *domain.GenerationResult
	select {
	case result = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("generation did not stop after cancel")
	}

	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, domain.GenerationCancelled, result.Status)
	assert.Equal(t, domain.ErrCancelled, result.ErrorCode)
	assert.Nil(t, result.Data)
	f.gen.AssertNumberOfCalls(t, "GenerateTest", 1)
	f.presets.AssertNotCalled(t, "ListPublished", mock.Anything, mock.Anything)
	f.quota.AssertNotCalled(t, "RecordUsage", mock.Anything, mock.Anything, mock.Anything)
	assert.False(t, f.svc.Cancel("user-1", "req-1"))
}

func TestGenerationService_CallerCancelSkipsFallback(t *testing.T) {
	f := newGenerationFixture(time.Hour)
	f.quotaOK()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.gen.On("GenerateTest", mock.Anything, listeningOpts).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, errors.New("503 unavailable"))

	result := f.svc.Generate(ctx, "user-1", "req-1", listeningOpts)

	assert.Equal(t, domain.GenerationCancelled, result.Status)
	assert.Equal(t, 1, result.Attempts)
	f.gen.AssertNumberOfCalls(t, "GenerateTest", 1)
	f.presets.AssertNotCalled(t, "ListPublished", mock.Anything, mock.Anything)
}

func TestGenerationService_AlreadyCancelledContext(t *testing.T) {
	f := newGenerationFixture(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := f.svc.Generate(ctx, "user-1", "req-1", listeningOpts)

	assert.Equal(t, domain.GenerationCancelled, result.Status)
	f.gen.AssertNotCalled(t, "GenerateTest", mock.Anything, mock.Anything)
}

func TestGenerationService_DuplicateRequestID(t *testing.T) {
	f := newGenerationFixture(time.Millisecond)
	require.True(t, f.svc.inflight.register("user-1", "req-1", func() {}))

	result := f.svc.Generate(context.Background(), "user-1", "req-1", listeningOpts)

	assert.Equal(t, domain.ErrInvalidInput, result.ErrorCode)
	f.gen.AssertNotCalled(t, "GenerateTest", mock.Anything, mock.Anything)
	assert.True(t, f.svc.Cancel("user-1", "req-1"), "the original request stays registered")
}

func TestSleepCtx(t *testing.T) {
	assert.True(t, sleepCtx(context.Background(), time.Millisecond))
	assert.True(t, sleepCtx(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleepCtx(ctx, time.Hour))
	assert.False(t, sleepCtx(ctx, 0))
}

func TestGenerationService_NilProviderResultIsInvalidPayload(t *testing.T) {
	f := newGenerationFixture(time.Millisecond)
	f.quotaOK()
	f.gen.On("GenerateTest", mock.Anything, listeningOpts).Return(nil, nil)
	f.presets.On("ListPublished", mock.Anything, domain.ModuleListening).Return(validPresets(), nil)

	var result *domain.GenerationResult
	require.NotPanics(t, func() {
		result = f.svc.Generate(context.Background(), "user-1", "req-1", listeningOpts)
	})

	f.gen.AssertNumberOfCalls(t, "GenerateTest", 2)
	assert.True(t, result.UsedFallback)
	assert.Equal(t, domain.ErrInvalidPayload, result.ErrorCode)
	f.quota.AssertNotCalled(t, "RecordUsage", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerationService_ReadingFallbackRequiresPassage(t *testing.T) {
	const withoutPassage = `{"question_groups":[{"question_type":"true_false_not_given","questions":[{"question_number":1,"correct_answer":"TRUE"}]}]}`
	const withPassage = `{"passage":{"title":"Coral reefs","content":"Coral reefs cover less than one percent of the ocean floor..."},"question_groups":[{"question_type":"true_false_not_given","questions":[{"question_number":1,"correct_answer":"TRUE"}]}]}`
	readingOpts := domain.GenerationOptions{
		Module:        domain.ModuleReading,
		QuestionType:  "true_false_not_given",
		Difficulty:    domain.DifficultyMedium,
		QuestionCount: 13,
		TimeMinutes:   20,
	}

	f := newGenerationFixture(time.Millisecond)
	f.quotaOK()
	f.gen.On("GenerateTest", mock.Anything, readingOpts).Return(nil, errors.New("503 unavailable"))
	f.presets.On("ListPublished", mock.Anything, domain.ModuleReading).Return([]*domain.Preset{
		{ID: "r-1", Module: domain.ModuleReading, Payload: json.RawMessage(withoutPassage)},
		{ID: "r-2", Module: domain.ModuleReading, Payload: json.RawMessage(withPassage)},
	}, nil)

	result := f.svc.Generate(context.Background(), "user-1", "req-1", readingOpts)

	f.gen.AssertNumberOfCalls(t, "GenerateTest", 2)
	assert.True(t, result.Success)
	assert.True(t, result.UsedFallback)
	assert.Equal(t, domain.GenerationFallbackSucceeded, result.Status)
	assert.Equal(t, "preset-r-2-1777000000000", result.TestID)
	assert.JSONEq(t, withPassage, string(result.Data))
}

func TestGenerationService_ReadingPresetsWithoutPassageAreNoFallback(t *testing.T) {
	readingOpts := domain.GenerationOptions{Module: domain.ModuleReading, Difficulty: domain.DifficultyEasy}

	f := newGenerationFixture(time.Millisecond)
	f.quotaOK()
	f.gen.On("GenerateTest", mock.Anything, readingOpts).Return(nil, errors.New("503 unavailable"))
	f.presets.On("ListPublished", mock.Anything, domain.ModuleReading).Return([]*domain.Preset{
		{ID: "r-1", Module: domain.ModuleReading, Payload: json.RawMessage(`{"passage":{"content":""},"question_groups":[{"question_type":"mcq","questions":[{"question_number":1,"correct_answer":"B"}]}]}`)},
	}, nil)

	result := f.svc.Generate(context.Background(), "user-1", "req-1", readingOpts)

	assert.False(t, result.Success)
	assert.Equal(t, domain.GenerationFailed, result.Status)
	assert.Equal(t, domain.ErrNoFallbackAvailable, result.ErrorCode)
}
