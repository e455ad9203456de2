package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/teamforge/reputation-engine/pkg/models"
)

// ─── Join requests ────────────────────────────────────────────────────

const joinRequestColumns = `id, lobby_id, team_id, requester_id, status, created_at`

func scanJoinRequest(row pgx.Row) (models.JoinRequest, error) {
	var jr models.JoinRequest
	err := row.Scan(&jr.ID, &jr.LobbyID, &jr.TeamID, &jr.RequesterID, &jr.Status, &jr.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return jr, models.ErrNotFound
	}
	return jr, err
}

// CreateJoinRequest files a pending join request.
func (s *PostgresStore) CreateJoinRequest(ctx context.Context, jr *models.JoinRequest) error {
	jr.Status = models.StatusPending
	err := s.pool.QueryRow(ctx, `
		INSERT INTO join_request (lobby_id, team_id, requester_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at;
	`, jr.LobbyID, jr.TeamID, jr.RequesterID, jr.Status).Scan(&jr.ID, &jr.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert join request: %v", err)
	}
	return nil
}

// HasPendingJoinRequest reports whether the requester already has a
// pending request for this team.
func (s *PostgresStore) HasPendingJoinRequest(ctx context.Context, teamID, requesterID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM join_request
			WHERE team_id = $1 AND requester_id = $2 AND status = 'pending'
		);
	`, teamID, requesterID).Scan(&exists)
	return exists, err
}

// PendingJoinRequestStatuses maps lobby id → status for a requester's
// pending requests. The lobby list uses this for its annotations.
func (s *PostgresStore) PendingJoinRequestStatuses(ctx context.Context, requesterID int64) (map[int64]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT lobby_id, status FROM join_request
		WHERE requester_id = $1 AND status = 'pending';
	`, requesterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query join requests: %v", err)
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var lobbyID int64
		var status string
		if err := rows.Scan(&lobbyID, &status); err != nil {
			return nil, err
		}
		out[lobbyID] = status
	}
	return out, rows.Err()
}

// JoinRequestsForLobby lists a lobby's join requests, newest first.
func (s *PostgresStore) JoinRequestsForLobby(ctx context.Context, lobbyID int64) ([]models.JoinRequest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+joinRequestColumns+` FROM join_request WHERE lobby_id = $1 ORDER BY id DESC`, lobbyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query join requests: %v", err)
	}
	defer rows.Close()

	var out []models.JoinRequest
	for rows.Next() {
		jr, err := scanJoinRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, jr)
	}
	return out, rows.Err()
}

// GetJoinRequest fetches one join request or models.ErrNotFound.
func (s *PostgresStore) GetJoinRequest(ctx context.Context, id int64) (models.JoinRequest, error) {
	return scanJoinRequest(s.pool.QueryRow(ctx,
		`SELECT `+joinRequestColumns+` FROM join_request WHERE id = $1`, id))
}

// SetJoinRequestStatus transitions a join request.
func (s *PostgresStore) SetJoinRequestStatus(ctx context.Context, id int64, status string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE join_request SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update join request: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ─── Invitations ──────────────────────────────────────────────────────

const invitationColumns = `id, lobby_id, team_id, applicant_id, target_user_id, token, status, created_at`

func scanInvitation(row pgx.Row) (models.Invitation, error) {
	var inv models.Invitation
	err := row.Scan(&inv.ID, &inv.LobbyID, &inv.TeamID, &inv.ApplicantID,
		&inv.TargetUserID, &inv.Token, &inv.Status, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return inv, models.ErrNotFound
	}
	return inv, err
}

// CreateInvitation files a pending invitation with its redemption token.
func (s *PostgresStore) CreateInvitation(ctx context.Context, inv *models.Invitation) error {
	inv.Status = models.StatusPending
	err := s.pool.QueryRow(ctx, `
		INSERT INTO invitation (lobby_id, team_id, applicant_id, target_user_id, token, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at;
	`, inv.LobbyID, inv.TeamID, inv.ApplicantID, inv.TargetUserID, inv.Token, inv.Status).
		Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert invitation: %v", err)
	}
	return nil
}

// HasPendingInvitation reports whether the team already has a pending
// invitation for the target user.
func (s *PostgresStore) HasPendingInvitation(ctx context.Context, teamID, targetUserID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM invitation
			WHERE team_id = $1 AND target_user_id = $2 AND status = 'pending'
		);
	`, teamID, targetUserID).Scan(&exists)
	return exists, err
}

// PendingInviteTargets lists user ids with an open invitation from this
// team. The invite matcher excludes them from suggestions.
func (s *PostgresStore) PendingInviteTargets(ctx context.Context, teamID int64) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT target_user_id FROM invitation WHERE team_id = $1 AND status = 'pending'`, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %v", err)
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

// GetInvitationByToken resolves a redemption token or models.ErrNotFound.
func (s *PostgresStore) GetInvitationByToken(ctx context.Context, token string) (models.Invitation, error) {
	return scanInvitation(s.pool.QueryRow(ctx,
		`SELECT `+invitationColumns+` FROM invitation WHERE token = $1`, token))
}

// InvitationsForUser lists invitations addressed to a user, newest first.
func (s *PostgresStore) InvitationsForUser(ctx context.Context, userID int64) ([]models.Invitation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+invitationColumns+` FROM invitation WHERE target_user_id = $1 ORDER BY id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invitations: %v", err)
	}
	defer rows.Close()

	var out []models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// SetInvitationStatus transitions an invitation.
func (s *PostgresStore) SetInvitationStatus(ctx context.Context, id int64, status string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE invitation SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update invitation: %v", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
