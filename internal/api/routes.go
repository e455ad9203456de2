package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/teamforge/reputation-engine/internal/db"
	"github.com/teamforge/reputation-engine/internal/mailer"
	"github.com/teamforge/reputation-engine/internal/trust"
	"github.com/teamforge/reputation-engine/pkg/models"
)

type APIHandler struct {
	store   *db.PostgresStore
	engine  *trust.Engine
	wsHub   *Hub
	mail    *mailer.Mailer
	baseURL string
}

func SetupRouter(store *db.PostgresStore, engine *trust.Engine, wsHub *Hub, mail *mailer.Mailer, baseURL string) *gin.Engine {
	r := gin.Default()

	// Enable CORS — configurable via ALLOWED_ORIGINS env var
	// Production: ALLOWED_ORIGINS=https://teamforge.example,https://www.teamforge.example
	// Development: ALLOWED_ORIGINS=http://localhost:3000 (or leave empty for *)
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			// Check if the request origin is in the allowed list
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{store: store, engine: engine, wsHub: wsHub, mail: mail, baseURL: baseURL}

	limiter := NewRateLimiter(120, 30)

	// Public endpoints: visualization, realtime stream, health, and the
	// invitation response links sent by email.
	public := r.Group("/api")
	public.Use(limiter.Middleware())
	{
		public.GET("/health", handler.handleHealth)
		public.GET("/graph", handler.handleGraph)
		public.GET("/stream", wsHub.Subscribe)
		public.GET("/invites/respond/:token", handler.handleRespondInvite)
	}

	api := r.Group("/api")
	api.Use(limiter.Middleware(), AuthMiddleware())
	{
		api.POST("/users", handler.handleCreateUser)
		api.GET("/users", handler.handleListUsers)
		api.GET("/users/:id", handler.handleGetUser)
		api.GET("/users/:id/reputation", handler.handleUserReputation)
		api.GET("/users/:id/lobbies", handler.handleUserLobbies)
		api.GET("/users/:id/invitations", handler.handleUserInvitations)

		api.POST("/lobbies", handler.handleCreateLobby)
		api.GET("/lobbies", handler.handleListLobbies)
		api.GET("/lobbies/:id", handler.handleGetLobby)
		api.POST("/lobbies/:id/finish", handler.handleFinishLobby)
		api.GET("/lobbies/:id/invite-suggestions", handler.handleInviteSuggestions)
		api.POST("/lobbies/:id/invite", handler.handleCreateInvite)
		api.POST("/lobbies/:id/join-requests", handler.handleCreateJoinRequest)
		api.GET("/lobbies/:id/join-requests", handler.handleListJoinRequests)
		api.POST("/lobbies/:id/join-requests/:requestId/decision", handler.handleDecideJoinRequest)

		api.POST("/teams/:id/lock", handler.handleLockTeam)
		api.POST("/teams/:id/submit", handler.handleSubmitProof)
		api.GET("/teams/:id/submissions", handler.handleListSubmissions)
		api.DELETE("/teams/:id/submissions/:submissionId", handler.handleDeleteSubmission)
		api.POST("/teams/:id/ratings", handler.handleRateMember)
		api.DELETE("/teams/:id/ratings/:ratingId", handler.handleDeleteRating)
	}

	// Serve Static Dashboard
	r.Static("/dashboard", "./public")

	return r
}

func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleGraph exports the deduped rating graph with trust scores for
// the visualization front-end.
func (h *APIHandler) handleGraph(c *gin.Context) {
	graph, err := h.engine.Graph(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build graph", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, graph)
}

// pathID parses an integer path parameter, responding 400 on garbage.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// queryID parses an optional integer query parameter; 0 means absent.
func queryID(c *gin.Context, name string) int64 {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// respondStoreErr maps persistence errors to HTTP responses.
func respondStoreErr(c *gin.Context, err error) {
	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Persistence failure", "details": err.Error()})
}
