package handlers

import (
	"context"
	"net/http"

	"preparedness-service/internal/middleware"
	"preparedness-service/internal/service"

	"github.com/gin-gonic/gin"
)

type LessonHandler struct {
	Service *service.LessonService
}

func NewLessonHandler(s *service.LessonService) *LessonHandler {
	return &LessonHandler{Service: s}
}

func (h *LessonHandler) Create(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var in service.CreateLessonInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	lesson, err := h.Service.Create(context.Background(), in, caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "lesson created", lesson)
}

func (h *LessonHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.Service.List(context.Background(), page, limit, c.Query("moduleId"), c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "lessons retrieved", result)
}

func (h *LessonHandler) Get(c *gin.Context) {
	detail, err := h.Service.Get(context.Background(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "lesson retrieved", detail)
}

func (h *LessonHandler) Update(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	lesson, err := h.Service.Update(context.Background(), c.Param("id"), caller.UserID, updates)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "lesson updated", lesson)
}

func (h *LessonHandler) Delete(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	if err := h.Service.Delete(context.Background(), c.Param("id"), caller.UserID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "lesson deleted", nil)
}
