package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/teamforge/reputation-engine/pkg/models"
)

// schemaSQL is compiled into the binary at build time so schema init
// works inside the Docker runtime image without shipping the .sql file.
//
//go:embed schema.sql
var schemaSQL string

type PostgresStore struct {
	pool *pgxpool.Pool
}

// Connect initializes the connection pool to PostgreSQL using pgx
func Connect(connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL for Reputation Engine")
	return &PostgresStore{pool: pool}, nil
}

// Close gracefully closes the connection pool
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema executes the embedded schema.sql DDL statements.
func (s *PostgresStore) InitSchema() error {
	_, err := s.pool.Exec(context.Background(), schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema migrations: %v", err)
	}

	log.Println("Teammate Reputation Schema initialized")
	return nil
}

// ─── Users ────────────────────────────────────────────────────────────

// CreateUser inserts a user and fills in the generated id and timestamp.
func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	sql := `
		INSERT INTO app_user (name, major, year, bio, contact, phone, email)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING id, created_at;
	`
	err := s.pool.QueryRow(ctx, sql, u.Name, u.Major, u.Year, u.Bio, u.Contact, u.Phone, u.Email).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert user: %v", err)
	}
	return nil
}

const userColumns = `id, name, COALESCE(major, ''), COALESCE(year, ''), COALESCE(bio, ''),
	COALESCE(contact, ''), COALESCE(phone, ''), COALESCE(email, ''), created_at`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Major, &u.Year, &u.Bio, &u.Contact, &u.Phone, &u.Email, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, models.ErrNotFound
	}
	return u, err
}

// Users returns every user ordered by id. This is the trust engine's
// node set, so the ordering must be deterministic.
func (s *PostgresStore) Users(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM app_user ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %v", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUser fetches one user or models.ErrNotFound.
func (s *PostgresStore) GetUser(ctx context.Context, id int64) (models.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM app_user WHERE id = $1`, id))
}

// GetUserByEmail fetches one user by email or models.ErrNotFound.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM app_user WHERE email = $1`, email))
}

// UsersExcluding returns users not in the exclusion list, ordered by
// name. The invite matcher uses this as its candidate pool.
func (s *PostgresStore) UsersExcluding(ctx context.Context, excluded []int64) ([]models.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM app_user WHERE NOT (id = ANY($1)) ORDER BY name ASC`, excluded)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %v", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ─── Ratings ──────────────────────────────────────────────────────────

// Ratings returns every rating row. The trust engine collapses and
// de-duplicates; the store does not pre-filter.
func (s *PostgresStore) Ratings(ctx context.Context) ([]models.Rating, error) {
	sql := `
		SELECT id, team_id, rater_id, target_user_id, contribution, communication,
		       would_work_again, COALESCE(comment, ''), created_at
		FROM rating ORDER BY id ASC;
	`
	rows, err := s.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %v", err)
	}
	defer rows.Close()

	var out []models.Rating
	for rows.Next() {
		var r models.Rating
		if err := rows.Scan(&r.ID, &r.TeamID, &r.RaterID, &r.TargetUserID,
			&r.Contribution, &r.Communication, &r.WouldWorkAgain, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UpsertRating applies the rewrite rule: if the (team, rater, target)
// triple already has rows, the oldest row is updated in place and any
// later siblings are deleted; otherwise a new row is inserted. Returns
// true when a new row was created.
func (s *PostgresStore) UpsertRating(ctx context.Context, r *models.Rating) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var keepID int64
	err = tx.QueryRow(ctx, `
		SELECT id FROM rating
		WHERE team_id = $1 AND rater_id = $2 AND target_user_id = $3
		ORDER BY id ASC LIMIT 1;
	`, r.TeamID, r.RaterID, r.TargetUserID).Scan(&keepID)

	created := false
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		err = tx.QueryRow(ctx, `
			INSERT INTO rating (team_id, rater_id, target_user_id, contribution, communication, would_work_again, comment)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
			RETURNING id, created_at;
		`, r.TeamID, r.RaterID, r.TargetUserID, r.Contribution, r.Communication, r.WouldWorkAgain, r.Comment).
			Scan(&r.ID, &r.CreatedAt)
		if err != nil {
			return false, fmt.Errorf("failed to insert rating: %v", err)
		}
		created = true
	case err != nil:
		return false, fmt.Errorf("failed to look up rating: %v", err)
	default:
		_, err = tx.Exec(ctx, `
			UPDATE rating SET contribution = $1, communication = $2, would_work_again = $3, comment = NULLIF($4, '')
			WHERE id = $5;
		`, r.Contribution, r.Communication, r.WouldWorkAgain, r.Comment, keepID)
		if err != nil {
			return false, fmt.Errorf("failed to update rating: %v", err)
		}
		_, err = tx.Exec(ctx, `
			DELETE FROM rating
			WHERE team_id = $1 AND rater_id = $2 AND target_user_id = $3 AND id <> $4;
		`, r.TeamID, r.RaterID, r.TargetUserID, keepID)
		if err != nil {
			return false, fmt.Errorf("failed to delete sibling ratings: %v", err)
		}
		r.ID = keepID
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return created, nil
}

// DeleteRating removes one rating, but only for the rater who posted it.
func (s *PostgresStore) DeleteRating(ctx context.Context, ratingID, teamID, raterID int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM rating WHERE id = $1 AND team_id = $2 AND rater_id = $3`, ratingID, teamID, raterID)
	if err != nil {
		return fmt.Errorf("failed to delete rating: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
