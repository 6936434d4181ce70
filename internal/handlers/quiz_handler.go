package handlers

import (
	"context"
	"net/http"

	"preparedness-service/internal/middleware"
	"preparedness-service/internal/models"
	"preparedness-service/internal/service"

	"github.com/gin-gonic/gin"
)

type QuizHandler struct {
	Service *service.QuizService
}

func NewQuizHandler(s *service.QuizService) *QuizHandler {
	return &QuizHandler{Service: s}
}

func (h *QuizHandler) Create(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var in service.CreateQuizInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	quiz, err := h.Service.Create(context.Background(), in, caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "quiz created", quiz)
}

func (h *QuizHandler) List(c *gin.Context) {
	quizzes, err := h.Service.List(context.Background())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "quizzes retrieved", quizzes)
}

// Get hides the answer key from students; creators and admins see the
// full quiz.
func (h *QuizHandler) Get(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	if caller.Role == models.RoleStudent {
		quiz, err := h.Service.GetForStudent(context.Background(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, "quiz retrieved", quiz)
		return
	}
	quiz, err := h.Service.Get(context.Background(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "quiz retrieved", quiz)
}

func (h *QuizHandler) ListByLesson(c *gin.Context) {
	quizzes, err := h.Service.ListByLesson(context.Background(), c.Param("lessonId"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "quizzes retrieved", quizzes)
}

func (h *QuizHandler) ListByModule(c *gin.Context) {
	quizzes, err := h.Service.ListByModule(context.Background(), c.Param("moduleId"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "quizzes retrieved", quizzes)
}

func (h *QuizHandler) Update(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	quiz, err := h.Service.Update(context.Background(), c.Param("id"), caller.UserID, updates)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "quiz updated", quiz)
}

func (h *QuizHandler) Delete(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	if err := h.Service.Delete(context.Background(), c.Param("id"), caller.UserID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "quiz deleted", nil)
}
