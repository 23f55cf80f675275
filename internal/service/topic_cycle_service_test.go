package service

import (
	"context"
	"errors"
	"testing"

	"ielts-prep/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTopicCycleService_NextTopic_FreshUser(t *testing.T) {
	repo := new(MockTopicCompletionRepository)
	repo.On("GetCounts", mock.Anything, "user-1", domain.ModuleReading).Return(map[string]int{}, nil)

	sel, err := NewTopicCycleService(repo).NextTopic(context.Background(), "user-1", domain.ModuleReading, "")
	require.NoError(t, err)

	catalog, _ := domain.TopicCatalog(domain.ModuleReading, "")
	assert.Equal(t, catalog[0], sel.Topic)
	assert.Equal(t, 0, sel.CycleCount)
	assert.Len(t, sel.Counts, len(catalog))
	for _, topic := range catalog {
		assert.Contains(t, sel.Counts, topic)
	}
}

func TestTopicCycleService_NextTopic_LeastCompletedFirst(t *testing.T) {
	catalog, _ := domain.TopicCatalog(domain.ModuleReading, "")
	counts := make(map[string]int, len(catalog))
	for _, topic := range catalog {
		counts[topic] = 2
	}
	counts[catalog[4]] = 1
	counts[catalog[7]] = 1
	counts["retired_topic"] = 0

	repo := new(MockTopicCompletionRepository)
	repo.On("GetCounts", mock.Anything, "user-1", domain.ModuleReading).Return(counts, nil)

	sel, err := NewTopicCycleService(repo).NextTopic(context.Background(), "user-1", domain.ModuleReading, "")
	require.NoError(t, err)
	assert.Equal(t, catalog[4], sel.Topic)
	assert.Equal(t, 1, sel.CycleCount)
	assert.NotContains(t, sel.Counts, "retired_topic")
}

func TestTopicCycleService_NextTopic_Subtypes(t *testing.T) {
	repo := new(MockTopicCompletionRepository)
	repo.On("GetCounts", mock.Anything, "user-1", domain.ModuleSpeaking).Return(map[string]int{}, nil)
	svc := NewTopicCycleService(repo)

	part2, _ := domain.TopicCatalog(domain.ModuleSpeaking, "part2")
	sel, err := svc.NextTopic(context.Background(), "user-1", domain.ModuleSpeaking, "part2")
	require.NoError(t, err)
	assert.Equal(t, part2[0], sel.Topic)

	part1, _ := domain.TopicCatalog(domain.ModuleSpeaking, "")
	sel, err = svc.NextTopic(context.Background(), "user-1", domain.ModuleSpeaking, "")
	require.NoError(t, err)
	assert.Equal(t, part1[0], sel.Topic)
}

func TestTopicCycleService_NextTopic_Errors(t *testing.T) {
	repo := new(MockTopicCompletionRepository)
	svc := NewTopicCycleService(repo)
	ctx := context.Background()

	_, err := svc.NextTopic(ctx, "", domain.ModuleReading, "")
	assert.Equal(t, domain.ErrUnauthenticated, domain.CodeOf(err))

	_, err = svc.NextTopic(ctx, "user-1", domain.Module("maths"), "")
	assert.Equal(t, domain.ErrInvalidInput, domain.CodeOf(err))

	repo.On("GetCounts", mock.Anything, "user-1", domain.ModuleListening).Return(nil, errors.New("db down"))
	_, err = svc.NextTopic(ctx, "user-1", domain.ModuleListening, "")
	assert.Equal(t, domain.ErrInternal, domain.CodeOf(err))
}

func TestTopicCycleService_RecordCompletion(t *testing.T) {
	repo := new(MockTopicCompletionRepository)
	repo.On("IncrementCompletion", mock.Anything, "user-1", domain.ModuleReading, "health").Return(3, nil)
	svc := NewTopicCycleService(repo)

	count, err := svc.RecordCompletion(context.Background(), "user-1", domain.ModuleReading, "health")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = svc.RecordCompletion(context.Background(), "user-1", domain.ModuleReading, "astrology")
	assert.Equal(t, domain.ErrInvalidInput, domain.CodeOf(err))

	_, err = svc.RecordCompletion(context.Background(), "", domain.ModuleReading, "health")
	assert.Equal(t, domain.ErrUnauthenticated, domain.CodeOf(err))

	repo.AssertNumberOfCalls(t, "IncrementCompletion", 1)
}
