package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/teamforge/reputation-engine/internal/match"
	"github.com/teamforge/reputation-engine/pkg/models"
)

type createLobbyRequest struct {
	Title       string `json:"title" binding:"required"`
	ContestLink string `json:"contestLink"`
	LeaderID    int64  `json:"leaderId" binding:"required"`
}

func (h *APIHandler) handleCreateLobby(c *gin.Context) {
	var req createLobbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and leaderId are required"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetUser(ctx, req.LeaderID); err != nil {
		respondStoreErr(c, err)
		return
	}

	lobby := models.Lobby{Title: req.Title, ContestLink: req.ContestLink, LeaderID: req.LeaderID}
	team, err := h.store.CreateLobby(ctx, &lobby)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"lobby": lobby, "team": team})
}

// handleListLobbies returns all lobbies ordered for the viewer: joinable
// lobbies first, closest team reputation to the viewer's own next, the
// newest-first baseline as tiebreaker. Anonymous viewers get the
// baseline order.
func (h *APIHandler) handleListLobbies(c *gin.Context) {
	ctx := c.Request.Context()
	viewerID := queryID(c, "viewer_id")

	lobbies, err := h.store.Lobbies(ctx)
	if err != nil {
		respondStoreErr(c, err)
		return
	}

	infos := make([]match.LobbyInfo, 0, len(lobbies))
	userIDSet := make(map[int64]struct{})

	var pendingByLobby map[int64]string
	if viewerID > 0 {
		pendingByLobby, err = h.store.PendingJoinRequestStatuses(ctx, viewerID)
		if err != nil {
			respondStoreErr(c, err)
			return
		}
		userIDSet[viewerID] = struct{}{}
	}

	for _, l := range lobbies {
		info := match.LobbyInfo{Lobby: l}
		team, err := h.store.TeamForLobby(ctx, l.ID)
		switch {
		case err == nil:
			info.TeamLocked = team.Locked
			info.MemberIDs, err = h.store.TeamMemberIDs(ctx, team.ID)
			if err != nil {
				respondStoreErr(c, err)
				return
			}
		case errors.Is(err, models.ErrNotFound):
			// lobby without a team ranks as empty
		default:
			respondStoreErr(c, err)
			return
		}
		info.JoinRequestStatus = pendingByLobby[l.ID]
		for _, id := range info.MemberIDs {
			userIDSet[id] = struct{}{}
		}
		infos = append(infos, info)
	}

	userIDs := make([]int64, 0, len(userIDSet))
	for id := range userIDSet {
		userIDs = append(userIDs, id)
	}
	overall, err := h.engine.OverallScores(ctx, userIDs)
	if err != nil {
		respondStoreErr(c, err)
		return
	}

	c.JSON(http.StatusOK, match.RankLobbies(viewerID, infos, overall))
}

func (h *APIHandler) handleGetLobby(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	lobby, err := h.store.GetLobby(ctx, id)
	if err != nil {
		respondStoreErr(c, err)
		return
	}

	resp := gin.H{"lobby": lobby}
	team, err := h.store.TeamForLobby(ctx, id)
	if err == nil {
		members, err := h.store.TeamMemberIDs(ctx, team.ID)
		if err != nil {
			respondStoreErr(c, err)
			return
		}
		subs, err := h.store.SubmissionsForTeam(ctx, team.ID)
		if err != nil {
			respondStoreErr(c, err)
			return
		}
		resp["team"] = team
		resp["members"] = members
		resp["submissions"] = subs
	} else if !errors.Is(err, models.ErrNotFound) {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// handleFinishLobby marks the contest finished; leader-only. Finishing
// unlocks submissions and ratings.
func (h *APIHandler) handleFinishLobby(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	lobby, err := h.store.GetLobby(ctx, id)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	viewerID := queryID(c, "viewer_id")
	if viewerID == 0 || lobby.LeaderID != viewerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the lobby leader can finish the contest"})
		return
	}

	lobby, err = h.store.FinishLobby(ctx, id)
	if err != nil {
		respondStoreErr(c, err)
		return
	}

	h.wsHub.BroadcastEvent(Event{Type: "lobby_finished", LobbyID: lobby.ID})
	c.JSON(http.StatusOK, lobby)
}

// ─── Join requests ────────────────────────────────────────────────────

type createJoinRequestBody struct {
	RequesterID int64 `json:"requesterId" binding:"required"`
}

func (h *APIHandler) handleCreateJoinRequest(c *gin.Context) {
	lobbyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body createJoinRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "requesterId is required"})
		return
	}
	ctx := c.Request.Context()

	lobby, err := h.store.GetLobby(ctx, lobbyID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	team, err := h.store.TeamForLobby(ctx, lobbyID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}

	if lobby.Finished {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This contest is finished; joining is disabled"})
		return
	}
	if team.Locked {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Team is locked; cannot request to join"})
		return
	}

	members, err := h.store.TeamMemberIDs(ctx, team.ID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	for _, m := range members {
		if m == body.RequesterID {
			c.JSON(http.StatusConflict, gin.H{"error": "Already a team member"})
			return
		}
	}

	pending, err := h.store.HasPendingJoinRequest(ctx, team.ID, body.RequesterID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if pending {
		c.JSON(http.StatusConflict, gin.H{"error": "Join request already pending"})
		return
	}

	jr := models.JoinRequest{LobbyID: lobby.ID, TeamID: team.ID, RequesterID: body.RequesterID}
	if err := h.store.CreateJoinRequest(ctx, &jr); err != nil {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, jr)
}

func (h *APIHandler) handleListJoinRequests(c *gin.Context) {
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
	if viewerID := queryID(c, "viewer_id"); viewerID == 0 || lobby.LeaderID != viewerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the lobby leader can list join requests"})
		return
	}

	reqs, err := h.store.JoinRequestsForLobby(ctx, lobbyID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

type joinDecisionBody struct {
	ViewerID int64  `json:"viewerId" binding:"required"`
	Decision string `json:"decision" binding:"required"`
}

func (h *APIHandler) handleDecideJoinRequest(c *gin.Context) {
	lobbyID, ok := pathID(c, "id")
	if !ok {
		return
	}
	requestID, ok := pathID(c, "requestId")
	if !ok {
		return
	}
	var body joinDecisionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "viewerId and decision are required"})
		return
	}
	decision := strings.ToLower(strings.TrimSpace(body.Decision))
	if decision != "accept" && decision != "reject" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision must be accept or reject"})
		return
	}
	ctx := c.Request.Context()

	lobby, err := h.store.GetLobby(ctx, lobbyID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if lobby.LeaderID != body.ViewerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the lobby leader can decide join requests"})
		return
	}
	team, err := h.store.TeamForLobby(ctx, lobbyID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}

	jr, err := h.store.GetJoinRequest(ctx, requestID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if jr.LobbyID != lobby.ID || jr.TeamID != team.ID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid join request"})
		return
	}
	if jr.Status != models.StatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "This join request is no longer pending"})
		return
	}

	if decision == "reject" {
		if err := h.store.SetJoinRequestStatus(ctx, jr.ID, models.StatusRejected); err != nil {
			respondStoreErr(c, err)
			return
		}
		jr.Status = models.StatusRejected
		c.JSON(http.StatusOK, jr)
		return
	}

	if lobby.Finished || team.Locked {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Team is not accepting new members"})
		return
	}
	if err := h.store.AddTeamMember(ctx, team.ID, jr.RequesterID); err != nil {
		respondStoreErr(c, err)
		return
	}
	if err := h.store.SetJoinRequestStatus(ctx, jr.ID, models.StatusAccepted); err != nil {
		respondStoreErr(c, err)
		return
	}
	jr.Status = models.StatusAccepted
	c.JSON(http.StatusOK, jr)
}
