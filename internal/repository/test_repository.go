package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ielts-prep/internal/domain"
	"ielts-prep/internal/repository/models"
	"ielts-prep/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxTestRepository implements domain.TestRepository over IELTS_TESTS and
// USER_TEST_HISTORY.
type sqlxTestRepository struct {
	db *sqlx.DB
	tm domain.TransactionManager
}

func NewTestRepository(db *sqlx.DB, tm domain.TransactionManager) domain.TestRepository {
	return &sqlxTestRepository{db: db, tm: tm}
}

const testColumns = `ID, MODULE, TOPIC, ACCENT, STATUS, IS_PUBLISHED, TIMES_USED, LAST_USED_AT, PAYLOAD, CREATED_AT, UPDATED_AT`

func toDomainTest(m *models.IELTSTest) *domain.CandidateTest {
	if m == nil {
		return nil
	}
	var lastUsedAt *time.Time
	if m.LastUsedAt.Valid {
		t := m.LastUsedAt.Time
		lastUsedAt = &t
	}
	return &domain.CandidateTest{
		ID:          m.ID,
		Module:      domain.Module(m.Module),
		Topic:       m.Topic.String,
		Accent:      m.Accent.String,
		Status:      m.Status,
		IsPublished: m.IsPublished == 1,
		TimesUsed:   m.TimesUsed,
		LastUsedAt:  lastUsedAt,
		Payload:     json.RawMessage(m.Payload),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *sqlxTestRepository) FindCandidates(ctx context.Context, module domain.Module, topic string) ([]*domain.CandidateTest, error) {
	query := `SELECT ` + testColumns + ` FROM IELTS_TESTS
	          WHERE MODULE = :1 AND IS_PUBLISHED = 1 AND STATUS = :2`
	args := []interface{}{string(module), domain.TestStatusReady}
	if topic != "" {
		query += ` AND TOPIC = :3`
		args = append(args, topic)
	}
	query += ` ORDER BY CREATED_AT`

	var rows []models.IELTSTest
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find candidate tests for %s: %w", module, err)
	}

	tests := make([]*domain.CandidateTest, 0, len(rows))
	for i := range rows {
		tests = append(tests, toDomainTest(&rows[i]))
	}
	return tests, nil
}

func (r *sqlxTestRepository) RecentHistory(ctx context.Context, userID string, limit int) ([]domain.UserTestHistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT h.USER_ID, h.TEST_ID, t.ACCENT, h.TAKEN_AT
	          FROM USER_TEST_HISTORY h LEFT JOIN IELTS_TESTS t ON t.ID = h.TEST_ID
	          WHERE h.USER_ID = :1
	          ORDER BY h.TAKEN_AT DESC
	          FETCH FIRST %d ROWS ONLY`, limit)

	var rows []models.UserTestHistory
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get test history for user %s: %w", userID, err)
	}

	entries := make([]domain.UserTestHistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.UserTestHistoryEntry{
			UserID:  row.UserID,
			TestID:  row.TestID,
			Accent:  row.Accent.String,
			TakenAt: row.TakenAt,
		})
	}
	return entries, nil
}

const mergeHistoryQuery = `MERGE INTO USER_TEST_HISTORY h
USING (SELECT :1 AS USER_ID, :2 AS TEST_ID FROM DUAL) s
ON (h.USER_ID = s.USER_ID AND h.TEST_ID = s.TEST_ID)
WHEN MATCHED THEN
  UPDATE SET h.TAKEN_AT = :3
WHEN NOT MATCHED THEN
  INSERT (ID, USER_ID, TEST_ID, TAKEN_AT) VALUES (:4, s.USER_ID, s.TEST_ID, :5)`

func (r *sqlxTestRepository) MarkServed(ctx context.Context, userID, testID string, servedAt time.Time) error {
	markServed := func(txCtx context.Context) error {
		exec := GetExecutor(txCtx, r.db)

		result, err := exec.ExecContext(txCtx,
			`UPDATE IELTS_TESTS SET TIMES_USED = TIMES_USED + 1, LAST_USED_AT = :1, UPDATED_AT = :2 WHERE ID = :3`,
			servedAt, servedAt, testID)
		if err != nil {
			return fmt.Errorf("failed to update usage of test %s: %w", testID, err)
		}
		if affected, err := result.RowsAffected(); err == nil && affected == 0 {
			return domain.NewNotFoundError(fmt.Sprintf("test %s not found", testID))
		}

		if _, err := exec.ExecContext(txCtx, mergeHistoryQuery,
			userID, testID, servedAt, util.NewULID(), servedAt); err != nil {
			return fmt.Errorf("failed to upsert history for test %s: %w", testID, err)
		}
		return nil
	}

	err := r.tm.WithTransaction(ctx, markServed)
	if isUniqueViolation(err) {
		err = r.tm.WithTransaction(ctx, markServed)
	}
	return err
}

func (r *sqlxTestRepository) CreateTest(ctx context.Context, test *domain.CandidateTest) error {
	now := time.Now()
	if test.ID == "" {
		test.ID = util.NewULID()
	}
	if test.Status == "" {
		test.Status = domain.TestStatusReady
	}
	if test.CreatedAt.IsZero() {
		test.CreatedAt = now
	}
	test.UpdatedAt = now

	query := `INSERT INTO IELTS_TESTS (ID, MODULE, TOPIC, ACCENT, STATUS, IS_PUBLISHED, TIMES_USED, PAYLOAD, CREATED_AT, UPDATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, 0, :7, :8, :9)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		test.ID,
		string(test.Module),
		util.StringToNullString(test.Topic),
		util.StringToNullString(test.Accent),
		test.Status,
		boolToNumber(test.IsPublished),
		string(test.Payload),
		test.CreatedAt,
		test.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create test: %w", err)
	}
	return nil
}
