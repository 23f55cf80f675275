package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ielts-prep/internal/config"
	"ielts-prep/internal/domain"
	"ielts-prep/internal/logger"
	"ielts-prep/internal/util"

	"go.uber.org/zap"
)

// GenerationService produces a practice test with the live provider and
// falls back to a stored preset when the provider cannot deliver one.
type GenerationService interface {
	// Generate never returns a Go error; the outcome is in the result.
	Generate(ctx context.Context, userID, requestID string, opts domain.GenerationOptions) *domain.GenerationResult
	// Cancel aborts the user's in-flight request. It reports whether a
	// matching request was found.
	Cancel(userID, requestID string) bool
}

type generationServiceImpl struct {
	generator      domain.TestGenerator
	presets        domain.PresetRepository
	quota          QuotaService
	rnd            domain.RandomSource
	maxAttempts    int
	backoff        time.Duration
	requestTimeout time.Duration
	now            func() time.Time
	inflight       *requestRegistry
}

func NewGenerationService(
	generator domain.TestGenerator,
	presets domain.PresetRepository,
	quota QuotaService,
	rnd domain.RandomSource,
	cfg config.GenerationConfig,
) GenerationService {
	maxAttempts := cfg.MaxRetries
	if maxAttempts <= 0 {
		maxAttempts = domain.MaxGenerationAttempts
	}
	return &generationServiceImpl{
		generator:      generator,
		presets:        presets,
		quota:          quota,
		rnd:            rnd,
		maxAttempts:    maxAttempts,
		backoff:        cfg.RetryBackoff,
		requestTimeout: cfg.RequestTimeout,
		now:            time.Now,
		inflight:       newRequestRegistry(),
	}
}

func (s *generationServiceImpl) Cancel(userID, requestID string) bool {
	return s.inflight.cancel(userID, requestID)
}

func (s *generationServiceImpl) Generate(ctx context.Context, userID, requestID string, opts domain.GenerationOptions) *domain.GenerationResult {
	if requestID == "" {
		requestID = util.NewULID()
	}
	result := &domain.GenerationResult{RequestID: requestID}

	if userID == "" {
		return failed(result, domain.ErrUnauthenticated)
	}
	if !opts.Module.IsValid() {
		result.Error = fmt.Sprintf("unknown module %q", opts.Module)
		result.Status = domain.GenerationFailed
		result.ErrorCode = domain.ErrInvalidInput
		return result
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !s.inflight.register(userID, requestID, cancel) {
		result.Status = domain.GenerationFailed
		result.ErrorCode = domain.ErrInvalidInput
		result.Error = fmt.Sprintf("request %s is already in progress", requestID)
		return result
	}
	defer s.inflight.remove(userID, requestID)

	log := logger.Get().With(
		zap.String("userID", userID),
		zap.String("requestID", requestID),
		zap.String("module", string(opts.Module)))

	if ctx.Err() != nil {
		return cancelled(result, log)
	}

	estimate := domain.EstimateCost(opts.Module, opts.Difficulty)
	status, err := s.quota.CheckAvailability(ctx, userID, estimate)
	if ctx.Err() != nil {
		return cancelled(result, log)
	}
	switch {
	case err != nil:
		log.Warn("Quota check failed, continuing without it", zap.Error(err))
	case !status.HasEnough:
		result.QuotaWarning = true
		log.Warn("Estimated cost exceeds remaining daily quota",
			zap.Int("estimate", estimate),
			zap.Int("remaining", status.Remaining))
	}

	var lastCode domain.ErrorCode
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		result.Attempts = attempt

		generated, err := s.callProvider(ctx, opts)
		if ctx.Err() != nil {
			return cancelled(result, log)
		}

		if err == nil {
			if generated == nil {
				err = domain.NewError(domain.ErrInvalidPayload, "provider returned no test", nil)
			} else {
				err = domain.ValidatePayload(opts.Module, generated.Payload)
			}
			if err == nil {
				return s.succeed(ctx, result, userID, generated, estimate, log)
			}
			lastCode = domain.ErrInvalidPayload
			log.Warn("Provider returned an invalid payload", zap.Int("attempt", attempt), zap.Error(err))
		} else {
			lastCode = classifyProviderError(err)
			log.Warn("Provider call failed",
				zap.Int("attempt", attempt),
				zap.String("code", string(lastCode)),
				zap.Error(err))
			if lastCode == domain.ErrProviderQuotaExceeded || lastCode == domain.ErrProviderCredentials {
				break
			}
		}

		if attempt < s.maxAttempts && !sleepCtx(ctx, s.backoff) {
			return cancelled(result, log)
		}
	}

	return s.fallback(ctx, result, opts, lastCode, log)
}

func (s *generationServiceImpl) callProvider(ctx context.Context, opts domain.GenerationOptions) (*domain.GeneratedTest, error) {
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}
	return s.generator.GenerateTest(ctx, opts)
}

func (s *generationServiceImpl) succeed(ctx context.Context, result *domain.GenerationResult, userID string, generated *domain.GeneratedTest, estimate int, log *zap.Logger) *domain.GenerationResult {
	tokens := generated.TotalTokens
	if tokens <= 0 {
		tokens = estimate
	}
	if _, err := s.quota.RecordUsage(ctx, userID, tokens); err != nil {
		log.Warn("Failed to record provider usage", zap.Int("tokens", tokens), zap.Error(err))
	}

	result.Success = true
	result.Status = domain.GenerationSucceeded
	result.TestID = util.NewULID()
	result.Data = generated.Payload
	result.TokensUsed = tokens

	log.Info("Generated test",
		zap.String("testID", result.TestID),
		zap.String("model", generated.Model),
		zap.Int("attempts", result.Attempts),
		zap.Int("tokens", tokens))
	return result
}

func (s *generationServiceImpl) fallback(ctx context.Context, result *domain.GenerationResult, opts domain.GenerationOptions, cause domain.ErrorCode, log *zap.Logger) *domain.GenerationResult {
	failCode := domain.ErrNoFallbackAvailable
	if cause == domain.ErrProviderCredentials {
		failCode = domain.ErrProviderCredentials
	}

	presets, err := s.presets.ListPublished(ctx, opts.Module)
	if ctx.Err() != nil {
		return cancelled(result, log)
	}
	if err != nil {
		log.Error("Failed to load fallback presets", zap.Error(err))
		return failed(result, failCode)
	}

	valid := make([]*domain.Preset, 0, len(presets))
	for _, p := range presets {
		if domain.IsValidPayload(opts.Module, p.Payload) {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		log.Error("No valid fallback preset", zap.Int("presets", len(presets)), zap.String("cause", string(cause)))
		return failed(result, failCode)
	}

	chosen := valid[s.rnd.IntN(len(valid))]
	result.Success = true
	result.Status = domain.GenerationFallbackSucceeded
	result.UsedFallback = true
	result.TestID = fmt.Sprintf("preset-%s-%d", chosen.ID, s.now().UnixMilli())
	result.Data = chosen.Payload
	result.ErrorCode = cause

	log.Info("Served fallback preset",
		zap.String("presetID", chosen.ID),
		zap.String("cause", string(cause)),
		zap.Int("attempts", result.Attempts))
	return result
}

func classifyProviderError(err error) domain.ErrorCode {
	switch {
	case domain.IsProviderQuotaError(err):
		return domain.ErrProviderQuotaExceeded
	case domain.IsProviderAuthError(err):
		return domain.ErrProviderCredentials
	default:
		return domain.ErrProviderError
	}
}

func failed(result *domain.GenerationResult, code domain.ErrorCode) *domain.GenerationResult {
	result.Success = false
	result.Status = domain.GenerationFailed
	result.ErrorCode = code
	result.Error = domain.UserMessage(code)
	return result
}

func cancelled(result *domain.GenerationResult, log *zap.Logger) *domain.GenerationResult {
	log.Info("Generation cancelled", zap.Int("attempts", result.Attempts))
	result.Success = false
	result.Status = domain.GenerationCancelled
	result.ErrorCode = domain.ErrCancelled
	result.Error = domain.UserMessage(domain.ErrCancelled)
	result.Data = nil
	result.TestID = ""
	return result
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// requestRegistry maps (user, request id) to the cancel func of an
// in-flight generation.
type requestRegistry struct {
	mu       sync.Mutex
	requests map[requestKey]context.CancelFunc
}

type requestKey struct {
	userID    string
	requestID string
}

func newRequestRegistry() *requestRegistry {
	return &requestRegistry{requests: make(map[requestKey]context.CancelFunc)}
}

func (r *requestRegistry) register(userID, requestID string, cancel context.CancelFunc) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := requestKey{userID, requestID}
	if _, exists := r.requests[key]; exists {
		return false
	}
	r.requests[key] = cancel
	return true
}

func (r *requestRegistry) cancel(userID, requestID string) bool {
	r.mu.Lock()
	cancel, ok := r.requests[requestKey{userID, requestID}]
	r.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

func (r *requestRegistry) remove(userID, requestID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, requestKey{userID, requestID})
}

func (r *requestRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}
