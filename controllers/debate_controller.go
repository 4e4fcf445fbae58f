package controllers

import (
	"errors"
	"net/http"

	"debatebot/services"

	"github.com/gin-gonic/gin"
)

type StartDebateRequest struct {
	Topic   string `json:"topic"`
	BotSide string `json:"bot_side"`
}

type TurnRequest struct {
	SessionID    string `json:"session_id"`
	HumanMessage string `json:"human_message"`
}

type DebateResponse struct {
	BotMessage string `json:"bot_message"`
	SessionID  string `json:"session_id"`
}

type DebateController struct {
	service *services.DebateService
}

func NewDebateController(svc *services.DebateService) *DebateController {
	return &DebateController{service: svc}
}

// Healthz is the liveness probe.
func (dc *DebateController) Healthz(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// StartDebate opens a session and returns the bot's opening argument.
func (dc *DebateController) StartDebate(c *gin.Context) {
	var req StartDebateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	sessionID, botMessage, err := dc.service.StartDebate(req.Topic, req.BotSide)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, DebateResponse{BotMessage: botMessage, SessionID: sessionID})
}

// TakeTurn submits a human message and returns the bot's reply.
func (dc *DebateController) TakeTurn(c *gin.Context) {
	var req TurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	botMessage, err := dc.service.TakeTurn(req.SessionID, req.HumanMessage)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, DebateResponse{BotMessage: botMessage, SessionID: req.SessionID})
}

// statusForError maps service error kinds to HTTP status codes. Anything
// unrecognized is treated as a validation failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotUsersTurn):
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}
