package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Handler serves the REST API over a Store. Presence sessions are held in
// memory only; they describe what is happening right now and have no value
// across restarts.
type Handler struct {
	store Store

	mu       sync.Mutex
	presence map[string]presenceSession
}

type presenceSession struct {
	SessionID    string
	ActivityName string
	Details      string
	StartedAt    time.Time
}

func NewHandler(store Store) *Handler {
	return &Handler{
		store:    store,
		presence: make(map[string]presenceSession),
	}
}

// Router builds the gin engine with all routes registered.
func (h *Handler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/records", h.ListRecords)
		api.POST("/records", h.CreateRecord)
		api.PUT("/records/:id", h.UpdateRecord)
		api.DELETE("/records/:id", h.DeleteRecord)

		api.GET("/activities", h.ListActivities)
		api.POST("/activities", h.CreateActivity)
		api.DELETE("/activities/:id", h.DeleteActivity)

		api.POST("/discord_presence/start", h.StartPresence)
		api.POST("/discord_presence/stop", h.StopPresence)
	}

	return r
}

func (h *Handler) ListRecords(c *gin.Context) {
	records, err := h.store.ListRecords(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *Handler) CreateRecord(c *gin.Context) {
	var draft RecordDraft

	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.store.CreateRecord(c.Request.Context(), draft)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var patch RecordPatch

	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := h.store.UpdateRecord(c.Request.Context(), id, patch)
	if err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteRecord(c.Request.Context(), id); err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Record deleted"})
}

func (h *Handler) ListActivities(c *gin.Context) {
	activities, err := h.store.ListActivities(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, activities)
}

func (h *Handler) CreateActivity(c *gin.Context) {
	var draft ActivityDraft

	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	activity, err := h.store.CreateActivity(c.Request.Context(), draft)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, activity)
}

func (h *Handler) DeleteActivity(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.store.DeleteActivity(c.Request.Context(), id); err != nil {
		h.storeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Activity deleted"})
}

func (h *Handler) StartPresence(c *gin.Context) {
	var input struct {
		SessionID    string `json:"session_id" binding:"required"`
		Group        string `json:"group" binding:"required"`
		ActivityName string `json:"activity_name"`
		Details      string `json:"details"`
		AssetKey     string `json:"asset_key"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	h.presence[input.Group] = presenceSession{
		SessionID:    input.SessionID,
		ActivityName: input.ActivityName,
		Details:      input.Details,
		StartedAt:    time.Now().UTC(),
	}
	h.mu.Unlock()

	slog.Info(
		"presence started",
		slog.String("group", input.Group),
		slog.String("activity", input.ActivityName),
	)

	c.JSON(http.StatusOK, gin.H{"message": "Presence updated"})
}

func (h *Handler) StopPresence(c *gin.Context) {
	var input struct {
		Group string `json:"group" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.mu.Lock()
	delete(h.presence, input.Group)
	h.mu.Unlock()

	slog.Info("presence stopped", slog.String("group", input.Group))

	c.JSON(http.StatusOK, gin.H{"message": "Presence cleared"})
}

func (h *Handler) storeError(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}

	return id, true
}
