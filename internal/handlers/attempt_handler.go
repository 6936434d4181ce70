package handlers

import (
	"context"
	"net/http"

	"preparedness-service/internal/grading"
	"preparedness-service/internal/middleware"
	"preparedness-service/internal/service"

	"github.com/gin-gonic/gin"
)

type AttemptHandler struct {
	Service *service.AttemptService
}

func NewAttemptHandler(s *service.AttemptService) *AttemptHandler {
	return &AttemptHandler{Service: s}
}

// Start opens an attempt on a quiz, or resumes the caller's ongoing one.
func (h *AttemptHandler) Start(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	result, err := h.Service.Start(context.Background(), c.Param("quizId"), caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	if result.Resumed {
		respond(c, http.StatusOK, "resumed ongoing attempt", result)
		return
	}
	respond(c, http.StatusCreated, "attempt started", result)
}

type submitRequest struct {
	Answers []grading.SubmittedAnswer `json:"answers"`
}

func (h *AttemptHandler) Submit(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "answers must be a list", nil)
		return
	}
	result, err := h.Service.Submit(context.Background(), c.Param("attemptId"), req.Answers, caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "attempt submitted", result)
}

func (h *AttemptHandler) Get(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	detail, err := h.Service.Get(context.Background(), c.Param("attemptId"), caller.UserID, caller.Role)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "attempt retrieved", detail)
}

// ListForQuiz returns the caller's attempts on one quiz, newest first.
func (h *AttemptHandler) ListForQuiz(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	attempts, err := h.Service.ListForQuiz(context.Background(), c.Param("quizId"), caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "attempts retrieved", attempts)
}

// ListMine returns all of the caller's attempts across quizzes.
func (h *AttemptHandler) ListMine(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	attempts, err := h.Service.ListForStudent(context.Background(), caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "attempts retrieved", attempts)
}
