package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/mbolis/expert-mapper/model"
)

// Journal stores every submit attempt made through the form.
type Journal struct {
	db *sql.DB
}

func NewJournal(db *sql.DB) *Journal {
	return &Journal{db}
}

func (j *Journal) Record(ctx context.Context, rec model.SubmissionRecord) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO submission (session_id, user_id, time, payload, outcome, error)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.SessionID,
		rec.UserID,
		rec.Time.UTC(),
		string(rec.Payload),
		string(rec.Outcome),
		rec.Error,
	)
	return err
}

// List returns the journal newest first. An empty userID lists everybody.
func (j *Journal) List(ctx context.Context, userID string, limit int) ([]model.SubmissionRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT id, session_id, user_id, time, payload, outcome, error
		FROM submission
		WHERE ? = '' OR user_id = ?
		ORDER BY id DESC
		LIMIT ?`,
		userID, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.SubmissionRecord{}
	for rows.Next() {
		var (
			rec     model.SubmissionRecord
			t       time.Time
			payload string
			outcome string
		)
		err = rows.Scan(&rec.ID, &rec.SessionID, &rec.UserID, &t, &payload, &outcome, &rec.Error)
		if err != nil {
			return nil, err
		}
		rec.Time = t
		rec.Payload = []byte(payload)
		rec.Outcome = model.Outcome(outcome)
		records = append(records, rec)
	}
	return records, rows.Err()
}
