package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/planit/planit/internal/error_values"
	"github.com/planit/planit/pkg/cleanup"
	"github.com/planit/planit/pkg/entity"
)

// OccurrencesRepository is the completion ledger. Rows are unique per
// (reminder_id, occurrence_date) and created lazily on the first explicit
// completion of a day.
type OccurrencesRepository struct {
	conn PgConnection
}

func NewOccurrencesRepo(cfg DBConfig) *OccurrencesRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for occurrencesRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for occurrencesRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing occurrences pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &OccurrencesRepository{
		conn: pool,
	}
}

func NewOccurrencesRepoWithConn(conn PgConnection) *OccurrencesRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for occurrencesRepo: " + err.Error())
	}
	return &OccurrencesRepository{
		conn: conn,
	}
}

func (or *OccurrencesRepository) Get(ctx context.Context, reminderID uuid.UUID, day time.Time) (bool, error) {
	var completed bool
	row := or.conn.QueryRow(ctx,
		`SELECT is_completed FROM reminder_occurrences WHERE reminder_id = $1 AND occurrence_date = $2;`,
		reminderID,
		entity.DayOf(day),
	)
	err := row.Scan(&completed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, errors.New("getting occurrence error: " + err.Error())
	}
	return completed, nil
}

func (or *OccurrencesRepository) SetCompleted(ctx context.Context, reminderID uuid.UUID, day time.Time, completed bool) error {
	_, err := or.conn.Exec(ctx,
		`INSERT INTO reminder_occurrences (reminder_id, occurrence_date, is_completed) VALUES ($1, $2, $3)
		ON CONFLICT (reminder_id, occurrence_date) DO UPDATE SET is_completed = EXCLUDED.is_completed;`,
		reminderID,
		entity.DayOf(day),
		completed,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// FK violation
			if pgErr.Code == "23503" {
				return errorvalues.ErrReminderNotFound
			}
		}
		return errors.New("upserting occurrence error: " + err.Error())
	}
	return nil
}

func (or *OccurrencesRepository) BulkGet(ctx context.Context, reminderID uuid.UUID, days []time.Time) (map[string]bool, error) {
	normalized := make([]time.Time, 0, len(days))
	for _, d := range days {
		normalized = append(normalized, entity.DayOf(d))
	}
	result := make(map[string]bool, len(days))
	if len(normalized) == 0 {
		return result, nil
	}
	rows, err := or.conn.Query(ctx,
		`SELECT occurrence_date, is_completed FROM reminder_occurrences WHERE reminder_id = $1 AND occurrence_date = ANY($2);`,
		reminderID,
		normalized,
	)
	if err != nil {
		return nil, errors.New("getting occurrences batch error: " + err.Error())
	}
	defer rows.Close()
	for rows.Next() {
		var day time.Time
		var completed bool
		err = rows.Scan(&day, &completed)
		if err != nil {
			return nil, errors.New("occurrence row parsing error: " + err.Error())
		}
		result[entity.DayKey(day)] = completed
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected occurrence rows error: " + rows.Err().Error())
	}
	return result, nil
}

func (or *OccurrencesRepository) DeleteByReminderID(ctx context.Context, reminderID uuid.UUID) error {
	_, err := or.conn.Exec(ctx, `DELETE FROM reminder_occurrences WHERE reminder_id = $1;`, reminderID)
	if err != nil {
		return errors.New("error deleting reminder occurrences: " + err.Error())
	}
	return nil
}
