package repository

import (
	"context"
	"fmt"
	"time"

	"ielts-prep/internal/domain"
	"ielts-prep/internal/repository/models"
	"ielts-prep/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxTopicCompletionRepository implements domain.TopicCompletionRepository.
type sqlxTopicCompletionRepository struct {
	db *sqlx.DB
	tm domain.TransactionManager
}

func NewTopicCompletionRepository(db *sqlx.DB, tm domain.TransactionManager) domain.TopicCompletionRepository {
	return &sqlxTopicCompletionRepository{db: db, tm: tm}
}

func (r *sqlxTopicCompletionRepository) GetCounts(ctx context.Context, userID string, module domain.Module) (map[string]int, error) {
	query := `SELECT ID, USER_ID, MODULE, TOPIC, COMPLETION_COUNT, CREATED_AT, UPDATED_AT
	          FROM TOPIC_COMPLETIONS WHERE USER_ID = :1 AND MODULE = :2`

	var rows []models.TopicCompletion
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID, string(module)); err != nil {
		return nil, fmt.Errorf("failed to get topic completions for user %s: %w", userID, err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Topic] = row.CompletionCount
	}
	return counts, nil
}

const mergeCompletionQuery = `MERGE INTO TOPIC_COMPLETIONS t
USING (SELECT :1 AS USER_ID, :2 AS MODULE, :3 AS TOPIC FROM DUAL) s
ON (t.USER_ID = s.USER_ID AND t.MODULE = s.MODULE AND t.TOPIC = s.TOPIC)
WHEN MATCHED THEN
  UPDATE SET t.COMPLETION_COUNT = t.COMPLETION_COUNT + 1, t.UPDATED_AT = :4
WHEN NOT MATCHED THEN
  INSERT (ID, USER_ID, MODULE, TOPIC, COMPLETION_COUNT, CREATED_AT, UPDATED_AT)
  VALUES (:5, s.USER_ID, s.MODULE, s.TOPIC, 1, :6, :7)`

// IncrementCompletion creates or increments the counter in the database and
// returns the value this call produced. The row stays locked by the MERGE
// until commit, so the follow-up read sees exactly this increment.
func (r *sqlxTopicCompletionRepository) IncrementCompletion(ctx context.Context, userID string, module domain.Module, topic string) (int, error) {
	var count int
	increment := func(txCtx context.Context) error {
		exec := GetExecutor(txCtx, r.db)
		now := time.Now()
		if _, err := exec.ExecContext(txCtx, mergeCompletionQuery,
			userID, string(module), topic, now, util.NewULID(), now, now); err != nil {
			return err
		}
		return exec.GetContext(txCtx, &count,
			`SELECT COMPLETION_COUNT FROM TOPIC_COMPLETIONS WHERE USER_ID = :1 AND MODULE = :2 AND TOPIC = :3`,
			userID, string(module), topic)
	}

	err := r.tm.WithTransaction(ctx, increment)
	if isUniqueViolation(err) {
		// lost the insert race; the row exists now
		err = r.tm.WithTransaction(ctx, increment)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment completion for %s/%s: %w", module, topic, err)
	}
	return count, nil
}
