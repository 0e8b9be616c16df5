package repository

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	errorvalues "github.com/planit/planit/internal/error_values"
	"github.com/planit/planit/pkg/cleanup"
	"github.com/planit/planit/pkg/entity"
)

type ActivitiesRepository struct {
	conn PgConnection
}

func NewActivitiesRepo(cfg DBConfig) *ActivitiesRepository {
	pool, err := pgxpool.New(context.Background(), cfg.ConnString())
	if err != nil {
		log.Fatal("creating connection for activitiesRepo error: " + err.Error())
	}
	err = pool.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for activitiesRepo: " + err.Error())
	}
	cleanup.Register(&cleanup.Job{
		Name: "closing activities pgxpool",
		F: func() error {
			pool.Close()
			return nil
		},
	})
	return &ActivitiesRepository{
		conn: pool,
	}
}

func NewActivitiesRepoWithConn(conn PgConnection) *ActivitiesRepository {
	err := conn.Ping(context.Background())
	if err != nil {
		log.Fatal("error while pinging connection for activitiesRepo: " + err.Error())
	}
	return &ActivitiesRepository{
		conn: conn,
	}
}

func (ar *ActivitiesRepository) GetByReminderID(ctx context.Context, reminderID uuid.UUID) ([]entity.Activity, error) {
	rows, err := ar.conn.Query(ctx,
		`SELECT id, reminder_id, name, is_completed, order_index FROM activities WHERE reminder_id = $1 ORDER BY order_index ASC;`,
		reminderID,
	)
	if err != nil {
		return nil, errors.New("getting activities error: " + err.Error())
	}
	defer rows.Close()
	result := make([]entity.Activity, 0)
	for rows.Next() {
		a := entity.Activity{}
		err = rows.Scan(&a.ID, &a.ReminderID, &a.Name, &a.IsCompleted, &a.OrderIndex)
		if err != nil {
			return nil, errors.New("activity row parsing error: " + err.Error())
		}
		result = append(result, a)
	}
	if rows.Err() != nil {
		return nil, errors.New("unexpected activity rows error: " + rows.Err().Error())
	}
	return result, nil
}

func (ar *ActivitiesRepository) Create(ctx context.Context, activity *entity.Activity) (int, error) {
	var id int
	row := ar.conn.QueryRow(ctx,
		`INSERT INTO activities (reminder_id, name, is_completed, order_index) VALUES ($1, $2, $3, $4) RETURNING id;`,
		activity.ReminderID,
		activity.Name,
		activity.IsCompleted,
		activity.OrderIndex,
	)
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// FK violation
			if pgErr.Code == "23503" {
				return 0, errorvalues.ErrReminderNotFound
			}
		}
		return 0, errors.New("creating activity error: " + err.Error())
	}
	return id, nil
}

func (ar *ActivitiesRepository) CreateBatch(ctx context.Context, activities []entity.Activity) error {
	tx, err := ar.conn.Begin(ctx)
	if err != nil {
		return errors.New("starting activities batch error: " + err.Error())
	}
	defer tx.Rollback(ctx)
	for _, a := range activities {
		_, err = tx.Exec(ctx,
			`INSERT INTO activities (reminder_id, name, is_completed, order_index) VALUES ($1, $2, $3, $4);`,
			a.ReminderID, a.Name, a.IsCompleted, a.OrderIndex,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return errorvalues.ErrReminderNotFound
			}
			return errors.New("inserting activity batch error: " + err.Error())
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return errors.New("committing activities batch error: " + err.Error())
	}
	return nil
}

func (ar *ActivitiesRepository) Update(ctx context.Context, activity *entity.Activity) error {
	ct, err := ar.conn.Exec(ctx,
		`UPDATE activities SET name = $1, is_completed = $2, order_index = $3 WHERE id = $4;`,
		activity.Name,
		activity.IsCompleted,
		activity.OrderIndex,
		activity.ID,
	)
	if err != nil {
		return errors.New("error updating activity: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrActivityNotFound
	}
	return nil
}

func (ar *ActivitiesRepository) Delete(ctx context.Context, id int) error {
	ct, err := ar.conn.Exec(ctx, `DELETE FROM activities WHERE id = $1;`, id)
	if err != nil {
		return errors.New("error deleting activity: " + err.Error())
	}
	if ct.RowsAffected() == 0 {
		return errorvalues.ErrActivityNotFound
	}
	return nil
}

func (ar *ActivitiesRepository) DeleteByReminderID(ctx context.Context, reminderID uuid.UUID) error {
	_, err := ar.conn.Exec(ctx, `DELETE FROM activities WHERE reminder_id = $1;`, reminderID)
	if err != nil {
		return errors.New("error deleting reminder activities: " + err.Error())
	}
	return nil
}
