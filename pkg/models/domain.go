package models

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a user, lobby, team or rating id does not
// resolve to a persisted row.
var ErrNotFound = errors.New("not found")

// ErrInvalidRating is returned when a rating row cannot be normalized.
var ErrInvalidRating = errors.New("invalid rating")

// Status values shared by join requests and invitations.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// User is a registered participant. Only the id matters to the trust
// engine; the profile fields exist for the UI.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Major     string    `json:"major,omitempty"`
	Year      string    `json:"year,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Contact   string    `json:"contact,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Lobby is a container around an external contest. One leader, one team.
type Lobby struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	ContestLink string     `json:"contestLink,omitempty"`
	LeaderID    int64      `json:"leaderId"`
	Finished    bool       `json:"finished"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Team is the membership set for a lobby. Locked teams accept no joins.
type Team struct {
	ID        int64     `json:"id"`
	LobbyID   int64     `json:"lobbyId"`
	Locked    bool      `json:"locked"`
	CreatedAt time.Time `json:"createdAt"`
}

// Submission is a proof-of-participation link posted after a contest ends.
type Submission struct {
	ID          int64     `json:"id"`
	TeamID      int64     `json:"teamId"`
	SubmitterID int64     `json:"submitterId"`
	ProofLink   string    `json:"proofLink"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Rating is one rater's opinion of one target teammate, per team.
// Axis scores and endpoints are nullable at the persistence boundary:
// historical rows may predate validation, and the engine must coerce
// rather than crash.
type Rating struct {
	ID            int64     `json:"id"`
	TeamID        int64     `json:"teamId"`
	RaterID       *int64    `json:"raterId"`
	TargetUserID  *int64    `json:"targetUserId"`
	Contribution  *int      `json:"contribution"`  // 0..10, nil = not answered
	Communication *int      `json:"communication"` // 0..10, nil = not answered
	WouldWorkAgain bool     `json:"wouldWorkAgain"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// JoinRequest tracks a user asking to join a lobby's team.
type JoinRequest struct {
	ID          int64     `json:"id"`
	LobbyID     int64     `json:"lobbyId"`
	TeamID      int64     `json:"teamId"`
	RequesterID int64     `json:"requesterId"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Invitation is a leader's emailed offer to a specific user, redeemed by token.
type Invitation struct {
	ID           int64     `json:"id"`
	LobbyID      int64     `json:"lobbyId"`
	TeamID       int64     `json:"teamId"`
	ApplicantID  int64     `json:"applicantId"` // the inviting leader
	TargetUserID int64     `json:"targetUserId"`
	Token        string    `json:"-"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Reputation is the trust-weighted aggregate of a target's incoming ratings.
// RatingCount is the raw pre-collapse row count, deliberately unweighted.
type Reputation struct {
	ContributionAvg     float64  `json:"contribution_avg"`
	CommunicationAvg    float64  `json:"communication_avg"`
	WouldWorkAgainRatio *float64 `json:"would_work_again_ratio"`
	RatingCount         int      `json:"rating_count"`
}

// CollapsedEdge is the averaged rater→target edge after de-duplication.
// Weight is the mean normalized local trust over every row for the pair,
// across all teams.
type CollapsedEdge struct {
	Rater               int64    `json:"source"`
	Target              int64    `json:"target"`
	Weight              float64  `json:"weight"` // mean local trust, (0, 1]
	Count               int      `json:"count"`  // pre-collapse row count
	ContributionAvg     *float64 `json:"contribution_avg"`
	CommunicationAvg    *float64 `json:"communication_avg"`
	WouldWorkAgainRatio float64  `json:"would_work_again_ratio"`
}

// GraphNode is one user in the exported rating graph.
type GraphNode struct {
	ID                int64       `json:"id"`
	Name              string      `json:"name"`
	Trust             float64     `json:"trust"`
	Reputation        *Reputation `json:"reputation"`
	ReputationOverall float64     `json:"reputation_overall"` // pre-scaling, [0, 1]
}

// Graph is the deduped rating graph served to the visualization front-end.
type Graph struct {
	Nodes []GraphNode     `json:"nodes"`
	Edges []CollapsedEdge `json:"edges"`
}
