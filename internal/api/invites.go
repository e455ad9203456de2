package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/teamforge/reputation-engine/internal/mailer"
	"github.com/teamforge/reputation-engine/internal/match"
	"github.com/teamforge/reputation-engine/pkg/models"
)

// handleInviteSuggestions returns up to five users whose overall
// reputation is closest to the leader's. Leader-only; excludes current
// members, the leader and users with a pending invitation. A finished
// or locked team gets an empty list.
func (h *APIHandler) handleInviteSuggestions(c *gin.Context) {
	lobbyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	lobby, err := h.store.GetLobby(ctx, lobbyID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	viewerID := queryID(c, "viewer_id")
	if viewerID == 0 || lobby.LeaderID != viewerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the lobby leader can view invite suggestions"})
		return
	}
	team, err := h.store.TeamForLobby(ctx, lobbyID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}

	if lobby.Finished || team.Locked {
		c.JSON(http.StatusOK, []match.Candidate{})
		return
	}

	members, err := h.store.TeamMemberIDs(ctx, team.ID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	invited, err := h.store.PendingInviteTargets(ctx, team.ID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	excluded := append(append([]int64{viewerID}, members...), invited...)

	eligible, err := h.store.UsersExcluding(ctx, excluded)
	if err != nil {
		respondStoreErr(c, err)
		return
	}

	scoreIDs := make([]int64, 0, len(eligible)+1)
	scoreIDs = append(scoreIDs, viewerID)
	for _, u := range eligible {
		scoreIDs = append(scoreIDs, u.ID)
	}
	overall, err := h.engine.OverallScores(ctx, scoreIDs)
	if err != nil {
		respondStoreErr(c, err)
		return
	}

	c.JSON(http.StatusOK, match.InviteCandidates(viewerID, eligible, overall))
}

type createInviteBody struct {
	LeaderID    int64  `json:"leaderId" binding:"required"`
	TargetEmail string `json:"targetEmail" binding:"required"`
}

// handleCreateInvite files a pending invitation and emails the target an
// accept/reject link pair. Email failures are logged, not fatal: the
// invitation stays visible in the target's invite list.
func (h *APIHandler) handleCreateInvite(c *gin.Context) {
	lobbyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body createInviteBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "leaderId and targetEmail are required"})
		return
	}
	ctx := c.Request.Context()

	lobby, err := h.store.GetLobby(ctx, lobbyID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if lobby.LeaderID != body.LeaderID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the lobby leader can invite teammates"})
		return
	}
	team, err := h.store.TeamForLobby(ctx, lobbyID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if lobby.Finished {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This contest is finished; inviting is disabled"})
		return
	}
	if team.Locked {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Team is locked; cannot invite new members"})
		return
	}

	target, err := h.store.GetUserByEmail(ctx, strings.TrimSpace(body.TargetEmail))
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if h.isMember(c, team.ID, target.ID) {
		c.JSON(http.StatusConflict, gin.H{"error": "User is already a member of this team"})
		return
	}
	pending, err := h.store.HasPendingInvitation(ctx, team.ID, target.ID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if pending {
		c.JSON(http.StatusConflict, gin.H{"error": "A pending invitation already exists for that user"})
		return
	}

	leader, err := h.store.GetUser(ctx, body.LeaderID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}

	inv := models.Invitation{
		LobbyID:      lobby.ID,
		TeamID:       team.ID,
		ApplicantID:  leader.ID,
		TargetUserID: target.ID,
		Token:        uuid.NewString(),
	}
	if err := h.store.CreateInvitation(ctx, &inv); err != nil {
		respondStoreErr(c, err)
		return
	}

	acceptURL := fmt.Sprintf("%s/api/invites/respond/%s?action=accept", h.baseURL, inv.Token)
	rejectURL := fmt.Sprintf("%s/api/invites/respond/%s?action=reject", h.baseURL, inv.Token)
	subject, mailBody := mailer.InviteBody(leader.Name, lobby.Title, acceptURL, rejectURL)
	if err := h.mail.Send(target.Email, subject, mailBody); err != nil {
		log.Printf("Failed to send invite email: %v", err)
	}

	c.JSON(http.StatusCreated, inv)
}

// handleRespondInvite redeems an invitation token from the emailed link.
// Accepting seats the target on the team unless it has since been
// finished or locked.
func (h *APIHandler) handleRespondInvite(c *gin.Context) {
	token := c.Param("token")
	action := strings.ToLower(c.Query("action"))
	if action != "accept" && action != "reject" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be accept or reject"})
		return
	}
	ctx := c.Request.Context()

	inv, err := h.store.GetInvitationByToken(ctx, token)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if inv.Status != models.StatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "This invitation is no longer pending"})
		return
	}

	if action == "reject" {
		if err := h.store.SetInvitationStatus(ctx, inv.ID, models.StatusRejected); err != nil {
			respondStoreErr(c, err)
			return
		}
		inv.Status = models.StatusRejected
		c.JSON(http.StatusOK, inv)
		return
	}

	lobby, err := h.store.GetLobby(ctx, inv.LobbyID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	team, err := h.store.GetTeam(ctx, inv.TeamID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if lobby.Finished || team.Locked {
		c.JSON(http.StatusConflict, gin.H{"error": "Team is not accepting new members"})
		return
	}

	if err := h.store.AddTeamMember(ctx, team.ID, inv.TargetUserID); err != nil {
		respondStoreErr(c, err)
		return
	}
	if err := h.store.SetInvitationStatus(ctx, inv.ID, models.StatusAccepted); err != nil {
		respondStoreErr(c, err)
		return
	}
	inv.Status = models.StatusAccepted
	c.JSON(http.StatusOK, inv)
}
