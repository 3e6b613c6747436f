package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const localStateTable = "local_state"

// ProcessedResponseKey holds the most recent summarized tutor reply.
const ProcessedResponseKey = "processedResponse"

// ProcessedRecord is the persisted form of a summarized tutor reply.
type ProcessedRecord struct {
	Summary          string `json:"summary"`
	RandomNumber     int    `json:"randomNumber"`
	OriginalResponse string `json:"originalResponse"`
}

type localStateRepo struct {
	db *sql.DB
}

func (r *localStateRepo) Put(ctx context.Context, key, value string) error {
	query, args := builder().Insert(localStateTable).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (r *localStateRepo) Get(ctx context.Context, key string) (string, bool, error) {
	query, args := builder().Select("value").
		From(entsql.Table(localStateTable)).
		Where(entsql.EQ("key", key)).
		Query()

	var value string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (r *localStateRepo) Delete(ctx context.Context, key string) error {
	query, args := builder().Delete(localStateTable).
		Where(entsql.EQ("key", key)).
		Query()

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// SaveProcessed stores rec under ProcessedResponseKey, replacing any
// previous value.
func SaveProcessed(ctx context.Context, repo LocalStateRepo, rec ProcessedRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal processed response: %w", err)
	}
	return repo.Put(ctx, ProcessedResponseKey, string(b))
}

// LoadProcessed returns the stored record. A missing or malformed value
// yields (nil, false) with no error.
func LoadProcessed(ctx context.Context, repo LocalStateRepo) (*ProcessedRecord, bool, error) {
	raw, ok, err := repo.Get(ctx, ProcessedResponseKey)
	if err != nil || !ok {
		return nil, false, err
	}
	var rec ProcessedRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, false, nil
	}
	return &rec, true, nil
}

// ClearProcessed removes the stored record.
func ClearProcessed(ctx context.Context, repo LocalStateRepo) error {
	return repo.Delete(ctx, ProcessedResponseKey)
}
