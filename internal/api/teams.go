package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamforge/reputation-engine/pkg/models"
)

// handleLockTeam closes a team to further joins; leader-only.
func (h *APIHandler) handleLockTeam(c *gin.Context) {
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	team, err := h.store.GetTeam(ctx, teamID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	lobby, err := h.store.GetLobby(ctx, team.LobbyID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if viewerID := queryID(c, "viewer_id"); viewerID == 0 || lobby.LeaderID != viewerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the lobby leader can lock the team"})
		return
	}

	team, err = h.store.LockTeam(ctx, teamID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, team)
}

type submitProofBody struct {
	SubmitterID int64  `json:"submitterId" binding:"required"`
	Proof       string `json:"proof" binding:"required"`
}

// handleSubmitProof records a proof link. The contest must be finished
// and the submitter must be a team member.
func (h *APIHandler) handleSubmitProof(c *gin.Context) {
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body submitProofBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "submitterId and proof are required"})
		return
	}
	ctx := c.Request.Context()

	team, err := h.store.GetTeam(ctx, teamID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	lobby, err := h.store.GetLobby(ctx, team.LobbyID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if !lobby.Finished {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contest must be finished before submitting proof"})
		return
	}

	if !h.isMember(c, team.ID, body.SubmitterID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "submitter must be a team member"})
		return
	}

	sub := models.Submission{TeamID: team.ID, SubmitterID: body.SubmitterID, ProofLink: body.Proof}
	if err := h.store.CreateSubmission(ctx, &sub); err != nil {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

func (h *APIHandler) handleListSubmissions(c *gin.Context) {
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	subs, err := h.store.SubmissionsForTeam(c.Request.Context(), teamID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// handleDeleteSubmission removes a proof link; allowed for the submitter
// or the lobby leader.
func (h *APIHandler) handleDeleteSubmission(c *gin.Context) {
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	submissionID, ok := pathID(c, "submissionId")
	if !ok {
		return
	}
	viewerID := queryID(c, "viewer_id")
	if viewerID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "viewer_id is required"})
		return
	}
	ctx := c.Request.Context()

	team, err := h.store.GetTeam(ctx, teamID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	lobby, err := h.store.GetLobby(ctx, team.LobbyID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}

	allowed := lobby.LeaderID == viewerID
	if !allowed {
		subs, err := h.store.SubmissionsForTeam(ctx, team.ID)
		if err != nil {
			respondStoreErr(c, err)
			return
		}
		for _, s := range subs {
			if s.ID == submissionID && s.SubmitterID == viewerID {
				allowed = true
				break
			}
		}
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the submitter or lobby leader can delete a proof"})
		return
	}

	if err := h.store.DeleteSubmission(ctx, submissionID, team.ID); err != nil {
		respondStoreErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ─── Ratings ──────────────────────────────────────────────────────────

type rateMemberBody struct {
	RaterID        int64  `json:"raterId" binding:"required"`
	TargetUserID   int64  `json:"targetUserId" binding:"required"`
	Contribution   *int   `json:"contribution"`
	Communication  *int   `json:"communication"`
	WouldWorkAgain bool   `json:"wouldWorkAgain"`
	Comment        string `json:"comment"`
}

// handleRateMember records or rewrites a rating. The contest must be
// finished, both endpoints must be team members, and self-rating is
// rejected. Re-rating the same teammate replaces the earlier opinion.
func (h *APIHandler) handleRateMember(c *gin.Context) {
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body rateMemberBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "raterId and targetUserId are required"})
		return
	}
	ctx := c.Request.Context()

	team, err := h.store.GetTeam(ctx, teamID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	lobby, err := h.store.GetLobby(ctx, team.LobbyID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if !lobby.Finished {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contest must be finished before ratings"})
		return
	}

	members, err := h.store.TeamMemberIDs(ctx, team.ID)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	if !contains(members, body.RaterID) || !contains(members, body.TargetUserID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rater and target must be team members"})
		return
	}
	if body.RaterID == body.TargetUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot rate yourself"})
		return
	}
	if !validAxis(body.Contribution) || !validAxis(body.Communication) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contribution and communication must be between 0 and 10"})
		return
	}

	r := models.Rating{
		TeamID:         team.ID,
		RaterID:        &body.RaterID,
		TargetUserID:   &body.TargetUserID,
		Contribution:   body.Contribution,
		Communication:  body.Communication,
		WouldWorkAgain: body.WouldWorkAgain,
		Comment:        body.Comment,
	}
	created, err := h.store.UpsertRating(ctx, &r)
	if err != nil {
		respondStoreErr(c, err)
		return
	}

	h.wsHub.BroadcastEvent(Event{Type: "rating_submitted", LobbyID: lobby.ID, TeamID: team.ID})
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, r)
}

// handleDeleteRating removes a rating the caller posted.
func (h *APIHandler) handleDeleteRating(c *gin.Context) {
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ratingID, ok := pathID(c, "ratingId")
	if !ok {
		return
	}
	raterID := queryID(c, "rater_id")
	if raterID == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "rater_id is required"})
		return
	}

	if err := h.store.DeleteRating(c.Request.Context(), ratingID, teamID, raterID); err != nil {
		respondStoreErr(c, err)
		return
	}

	h.wsHub.BroadcastEvent(Event{Type: "rating_deleted", TeamID: teamID})
	c.Status(http.StatusNoContent)
}

func (h *APIHandler) isMember(c *gin.Context, teamID, userID int64) bool {
	members, err := h.store.TeamMemberIDs(c.Request.Context(), teamID)
	if err != nil {
		return false
	}
	return contains(members, userID)
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func validAxis(v *int) bool {
	return v == nil || (*v >= 0 && *v <= 10)
}
