package repository

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/planit/planit/internal/error_values"
	"github.com/planit/planit/pkg/cleanup"
	"github.com/planit/planit/pkg/entity"
)

type RemindersRepository struct {
	conn PgConnection
}

func NewRemindersRepo(cfg DBConfig) *RemindersRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for remindersRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for remindersRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing reminders pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &RemindersRepository{
		conn: pool,
	}
}

func NewRemindersRepoWithConn(conn PgConnection) *RemindersRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for remindersRepo: " + err.Error())
	}
	return &RemindersRepository{
		conn: conn,
	}
}

func (rr *RemindersRepository) Create(ctx context.Context, reminder *entity.Reminder) (uuid.UUID, error) {
	var id uuid.UUID
	row := rr.conn.QueryRow(ctx,
		`INSERT INTO reminders (title, description, date_time, category, repetition, status, location, has_vibration, sound_uri)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id;`,
		reminder.Title,
		reminder.Description,
		reminder.DateTime,
		reminder.Category,
		reminder.Repetition,
		reminder.Status,
		reminder.Location,
		reminder.HasVibration,
		reminder.SoundURI,
	)
	if err := row.Scan(&id); err != nil {
		return uuid.UUID{}, errors.New("creating reminder db error: " + err.Error())
	}
	return id, nil
}

func (rr *RemindersRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Reminder, error) {
	var r entity.Reminder
	r.ID = id
	row := rr.conn.QueryRow(ctx,
		`SELECT title, description, date_time, category, repetition, status, location, has_vibration, sound_uri, created_at, updated_at
		FROM reminders WHERE id = $1;`, id)
	err := row.Scan(&r.Title, &r.Description, &r.DateTime, &r.Category, &r.Repetition,
		&r.Status, &r.Location, &r.HasVibration, &r.SoundURI, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorvalues.ErrReminderNotFound
		}
		return nil, errors.New("getting reminder by id error: " + err.Error())
	}
	return &r, nil
}

func (rr *RemindersRepository) GetAll(ctx context.Context) ([]*entity.Reminder, error) {
	rows, err := rr.conn.Query(ctx,
		`SELECT id, title, description, date_time, category, repetition, status, location, has_vibration, sound_uri, created_at, updated_at
		FROM reminders ORDER BY date_time ASC;`)
	if err != nil {
		return nil, errors.New("getting all reminders error: " + err.Error())
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (rr *RemindersRepository) GetByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Reminder, error) {
	rows, err := rr.conn.Query(ctx,
		`SELECT id, title, description, date_time, category, repetition, status, location, has_vibration, sound_uri, created_at, updated_at
		FROM reminders WHERE date_time >= $1 AND date_time < $2 ORDER BY date_time ASC;`, from, to)
	if err != nil {
		return nil, errors.New("getting reminders by date range error: " + err.Error())
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (rr *RemindersRepository) Update(ctx context.Context, reminder *entity.Reminder) error {
	ct, err := rr.conn.Exec(ctx,
		`UPDATE reminders SET title = $1, description = $2, date_time = $3, category = $4, repetition = $5,
		status = $6, location = $7, has_vibration = $8, sound_uri = $9, updated_at = NOW() WHERE id = $10;`,
		reminder.Title,
		reminder.Description,
		reminder.DateTime,
		reminder.Category,
		reminder.Repetition,
		reminder.Status,
		reminder.Location,
		reminder.HasVibration,
		reminder.SoundURI,
		reminder.ID,
	)
	if err != nil {
		return errors.New("error updating reminder: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrReminderNotFound
	}
	return nil
}

func (rr *RemindersRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.Status) error {
	ct, err := rr.conn.Exec(ctx,
		`UPDATE reminders SET status = $1, updated_at = NOW() WHERE id = $2;`, status, id)
	if err != nil {
		return errors.New("error updating reminder status: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrReminderNotFound
	}
	return nil
}

// DeleteCascade removes the reminder together with its activities and ledger
// rows. Children go first inside one transaction, so a partial failure can
// never leave orphaned child rows behind.
func (rr *RemindersRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	tx, err := rr.conn.Begin(ctx)
	if err != nil {
		return errors.New("starting delete transaction error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	_, err = tx.Exec(ctx, `DELETE FROM activities WHERE reminder_id = $1;`, id)
	if err != nil {
		return errors.New("deleting reminder activities error: " + err.Error())
	}
	_, err = tx.Exec(ctx, `DELETE FROM reminder_occurrences WHERE reminder_id = $1;`, id)
	if err != nil {
		return errors.New("deleting reminder occurrences error: " + err.Error())
	}
	ct, err := tx.Exec(ctx, `DELETE FROM reminders WHERE id = $1;`, id)
	if err != nil {
		return errors.New("deleting reminder error: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrReminderNotFound
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing reminder deletion error: " + err.Error())
	}
	return nil
}

func scanReminders(rows pgx.Rows) ([]*entity.Reminder, error) {
	reminders := make([]*entity.Reminder, 0)
	for rows.Next() {
		r := entity.Reminder{}
		err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.DateTime, &r.Category, &r.Repetition,
			&r.Status, &r.Location, &r.HasVibration, &r.SoundURI, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return nil, errors.New("reminder row parsing error: " + err.Error())
		}
		reminders = append(reminders, &r)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected reminder rows error: " + rows.Err().Error())
	}
	return reminders, nil
}
