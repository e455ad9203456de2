package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/teamforge/reputation-engine/internal/trust"
	"github.com/teamforge/reputation-engine/pkg/models"
)

type createUserRequest struct {
	Name    string `json:"name" binding:"required"`
	Major   string `json:"major"`
	Year    string `json:"year"`
	Bio     string `json:"bio"`
	Contact string `json:"contact"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

func (h *APIHandler) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	u := models.User{
		Name:    req.Name,
		Major:   req.Major,
		Year:    req.Year,
		Bio:     req.Bio,
		Contact: req.Contact,
		Phone:   req.Phone,
		Email:   req.Email,
	}
	if err := h.store.CreateUser(c.Request.Context(), &u); err != nil {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

// userWithReputation decorates the profile with the trust-weighted
// reputation the way the user list and detail views show it.
type userWithReputation struct {
	models.User
	Reputation models.Reputation `json:"reputation"`
}

func (h *APIHandler) handleListUsers(c *gin.Context) {
	ctx := c.Request.Context()

	users, err := h.store.Users(ctx)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	ratings, err := h.store.Ratings(ctx)
	if err != nil {
		respondStoreErr(c, err)
		return
	}

	// One trust vector and one ratings read shared by every row.
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	scores := trust.ComputeTrust(ctx, ids, trust.Collapse(ratings))

	out := make([]userWithReputation, len(users))
	for i, u := range users {
		out[i] = userWithReputation{User: u, Reputation: trust.Reputation(u.ID, ratings, scores)}
	}
	c.JSON(http.StatusOK, out)
}

func (h *APIHandler) handleGetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	u, err := h.store.GetUser(c.Request.Context(), id)
	if err != nil {
		respondStoreErr(c, err)
		return
	}

	rep, err := h.engine.UserReputation(c.Request.Context(), id, nil)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, userWithReputation{User: u, Reputation: rep})
}

// handleUserReputation returns only the trust-weighted aggregate; 404
// for unknown users.
func (h *APIHandler) handleUserReputation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	rep, err := h.engine.UserReputation(c.Request.Context(), id, nil)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *APIHandler) handleUserLobbies(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if _, err := h.store.GetUser(c.Request.Context(), id); err != nil {
		respondStoreErr(c, err)
		return
	}
	lobbies, err := h.store.ParticipatedLobbies(c.Request.Context(), id)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, lobbies)
}

func (h *APIHandler) handleUserInvitations(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	invites, err := h.store.InvitationsForUser(c.Request.Context(), id)
	if err != nil {
		respondStoreErr(c, err)
		return
	}
	c.JSON(http.StatusOK, invites)
}
