package domain

import (
	"context"
	"math"
	"time"
)

// DefaultDailyTokenLimit is the provider's daily token budget per user.
const DefaultDailyTokenLimit = 1_500_000

var moduleBaseCost = map[Module]int{
	ModuleReading:   15000,
	ModuleListening: 25000,
	ModuleWriting:   20000,
	ModuleSpeaking:  18000,
}

var difficultyMultiplier = map[Difficulty]float64{
	DifficultyEasy:   0.8,
	DifficultyMedium: 1.0,
	DifficultyHard:   1.2,
	DifficultyExpert: 1.4,
}

// EstimateCost returns the advisory token cost of generating one test.
// Unknown difficulties count as medium; unknown modules cost 0.
func EstimateCost(module Module, difficulty Difficulty) int {
	base, ok := moduleBaseCost[module]
	if !ok {
		return 0
	}
	mult, ok := difficultyMultiplier[difficulty]
	if !ok {
		mult = 1.0
	}
	return int(math.Round(float64(base) * mult))
}

// DailyUsage is one user's usage for one UTC day.
type DailyUsage struct {
	UserID        string
	Date          string
	TokensUsed    int
	RequestsCount int
}

// QuotaStatus is the result of an availability check.
type QuotaStatus struct {
	HasEnough     bool
	Remaining     int
	PercentUsed   float64
	TokensUsed    int
	RequestsCount int
	Limit         int
	EstimatedCost int
}

// ComputeQuotaStatus applies the availability rule to a usage snapshot.
func ComputeQuotaStatus(limit, tokensUsed, requestsCount, estimatedCost int) QuotaStatus {
	remaining := limit - tokensUsed
	percent := 0.0
	if limit > 0 {
		percent = float64(tokensUsed) / float64(limit) * 100
	}
	return QuotaStatus{
		HasEnough:     remaining >= estimatedCost,
		Remaining:     remaining,
		PercentUsed:   percent,
		TokensUsed:    tokensUsed,
		RequestsCount: requestsCount,
		Limit:         limit,
		EstimatedCost: estimatedCost,
	}
}

// UsageDate formats t as the UTC calendar day used to key usage records.
func UsageDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// UsageStore keeps daily usage records. Increments must be atomic in the
// store itself.
type UsageStore interface {
	GetUsage(ctx context.Context, userID, date string) (*DailyUsage, error)
	IncrementUsage(ctx context.Context, userID, date string, tokens int) (*DailyUsage, error)
	DeleteUsage(ctx context.Context, userID, date string) error
}

// QuotaResetMessage tells the user that a reset only clears local tracking.
const QuotaResetMessage = "Today's usage tracking was reset. This does not change the provider's real quota, which resets on its own schedule."

// QuotaReset is returned by a reset of today's usage record.
type QuotaReset struct {
	DisplayOnly bool
	Message     string
	Date        string
}
