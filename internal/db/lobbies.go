package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/teamforge/reputation-engine/pkg/models"
)

// ─── Lobbies ──────────────────────────────────────────────────────────

const lobbyColumns = `id, title, COALESCE(contest_link, ''), leader_id, finished, finished_at, created_at`

func scanLobby(row pgx.Row) (models.Lobby, error) {
	var l models.Lobby
	err := row.Scan(&l.ID, &l.Title, &l.ContestLink, &l.LeaderID, &l.Finished, &l.FinishedAt, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return l, models.ErrNotFound
	}
	return l, err
}

// CreateLobby inserts a lobby together with its single team and seats
// the leader as the first member, all in one transaction.
func (s *PostgresStore) CreateLobby(ctx context.Context, l *models.Lobby) (models.Team, error) {
	var team models.Team

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return team, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO lobby (title, contest_link, leader_id)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING id, created_at;
	`, l.Title, l.ContestLink, l.LeaderID).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return team, fmt.Errorf("failed to insert lobby: %v", err)
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO team (lobby_id) VALUES ($1) RETURNING id, created_at;
	`, l.ID).Scan(&team.ID, &team.CreatedAt)
	if err != nil {
		return team, fmt.Errorf("failed to insert team: %v", err)
	}
	team.LobbyID = l.ID

	_, err = tx.Exec(ctx, `
		INSERT INTO team_member (team_id, user_id) VALUES ($1, $2)
		ON CONFLICT (team_id, user_id) DO NOTHING;
	`, team.ID, l.LeaderID)
	if err != nil {
		return team, fmt.Errorf("failed to seat leader: %v", err)
	}

	return team, tx.Commit(ctx)
}

// Lobbies returns all lobbies newest first. This is the baseline order
// the matcher uses as its stable tiebreaker.
func (s *PostgresStore) Lobbies(ctx context.Context) ([]models.Lobby, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+lobbyColumns+` FROM lobby ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query lobbies: %v", err)
	}
	defer rows.Close()

	var out []models.Lobby
	for rows.Next() {
		l, err := scanLobby(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// GetLobby fetches one lobby or models.ErrNotFound.
func (s *PostgresStore) GetLobby(ctx context.Context, id int64) (models.Lobby, error) {
	return scanLobby(s.pool.QueryRow(ctx, `SELECT `+lobbyColumns+` FROM lobby WHERE id = $1`, id))
}

// FinishLobby marks a lobby finished, enabling submissions and ratings.
func (s *PostgresStore) FinishLobby(ctx context.Context, id int64) (models.Lobby, error) {
	return scanLobby(s.pool.QueryRow(ctx, `
		UPDATE lobby SET finished = TRUE, finished_at = NOW()
		WHERE id = $1
		RETURNING `+lobbyColumns+`;
	`, id))
}

// ─── Teams ────────────────────────────────────────────────────────────

func scanTeam(row pgx.Row) (models.Team, error) {
	var t models.Team
	err := row.Scan(&t.ID, &t.LobbyID, &t.Locked, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, models.ErrNotFound
	}
	return t, err
}

// TeamForLobby returns a lobby's single team.
func (s *PostgresStore) TeamForLobby(ctx context.Context, lobbyID int64) (models.Team, error) {
	return scanTeam(s.pool.QueryRow(ctx,
		`SELECT id, lobby_id, locked, created_at FROM team WHERE lobby_id = $1 ORDER BY id ASC LIMIT 1`, lobbyID))
}

// GetTeam fetches one team or models.ErrNotFound.
func (s *PostgresStore) GetTeam(ctx context.Context, id int64) (models.Team, error) {
	return scanTeam(s.pool.QueryRow(ctx,
		`SELECT id, lobby_id, locked, created_at FROM team WHERE id = $1`, id))
}

// LockTeam closes a team to further joins.
func (s *PostgresStore) LockTeam(ctx context.Context, id int64) (models.Team, error) {
	return scanTeam(s.pool.QueryRow(ctx, `
		UPDATE team SET locked = TRUE WHERE id = $1
		RETURNING id, lobby_id, locked, created_at;
	`, id))
}

// TeamMemberIDs lists a team's member user ids in join order.
func (s *PostgresStore) TeamMemberIDs(ctx context.Context, teamID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM team_member WHERE team_id = $1 ORDER BY id ASC`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query team members: %v", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddTeamMember seats a user on a team; already-seated users are a no-op.
func (s *PostgresStore) AddTeamMember(ctx context.Context, teamID, userID int64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO team_member (team_id, user_id) VALUES ($1, $2)
		ON CONFLICT (team_id, user_id) DO NOTHING;
	`, teamID, userID)
	if err != nil {
		return fmt.Errorf("failed to add team member: %v", err)
	}
	return nil
}

// ParticipatedLobbies lists the lobbies a user is a team member of.
func (s *PostgresStore) ParticipatedLobbies(ctx context.Context, userID int64) ([]models.Lobby, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+lobbyColumns+` FROM lobby
		WHERE id IN (
			SELECT t.lobby_id FROM team t
			JOIN team_member tm ON tm.team_id = t.id
			WHERE tm.user_id = $1
		)
		ORDER BY created_at DESC, id DESC;
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participated lobbies: %v", err)
	}
	defer rows.Close()

	var out []models.Lobby
	for rows.Next() {
		l, err := scanLobby(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ─── Submissions ──────────────────────────────────────────────────────

// CreateSubmission records a proof link for a finished contest.
func (s *PostgresStore) CreateSubmission(ctx context.Context, sub *models.Submission) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO submission (team_id, submitter_id, proof_link)
		VALUES ($1, $2, $3)
		RETURNING id, created_at;
	`, sub.TeamID, sub.SubmitterID, sub.ProofLink).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert submission: %v", err)
	}
	return nil
}

// SubmissionsForTeam lists a team's proof submissions, oldest first.
func (s *PostgresStore) SubmissionsForTeam(ctx context.Context, teamID int64) ([]models.Submission, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, team_id, submitter_id, proof_link, created_at
		FROM submission WHERE team_id = $1 ORDER BY id ASC;
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query submissions: %v", err)
	}
	defer rows.Close()

	var out []models.Submission
	for rows.Next() {
		var sub models.Submission
		if err := rows.Scan(&sub.ID, &sub.TeamID, &sub.SubmitterID, &sub.ProofLink, &sub.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// DeleteSubmission removes a proof link; only the submitter or the lobby
// leader may do this, enforced by the caller.
func (s *PostgresStore) DeleteSubmission(ctx context.Context, submissionID, teamID int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM submission WHERE id = $1 AND team_id = $2`, submissionID, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
