package handlers

import (
	"context"
	"net/http"

	"preparedness-service/internal/middleware"
	"preparedness-service/internal/service"

	"github.com/gin-gonic/gin"
)

type ModuleHandler struct {
	Service *service.ModuleService
}

func NewModuleHandler(s *service.ModuleService) *ModuleHandler {
	return &ModuleHandler{Service: s}
}

func (h *ModuleHandler) Create(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var in service.CreateModuleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	module, err := h.Service.Create(context.Background(), in, caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "module created", module)
}

func (h *ModuleHandler) List(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.Service.List(context.Background(), page, limit, c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "modules retrieved", result)
}

func (h *ModuleHandler) ListByLevel(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.Service.ListByLevel(context.Background(), c.Param("level"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "modules retrieved", result)
}

func (h *ModuleHandler) Get(c *gin.Context) {
	module, err := h.Service.Get(context.Background(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "module retrieved", module)
}

func (h *ModuleHandler) Update(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	module, err := h.Service.Update(context.Background(), c.Param("id"), caller.UserID, updates)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "module updated", module)
}

func (h *ModuleHandler) Delete(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	if err := h.Service.Delete(context.Background(), c.Param("id"), caller.UserID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "module deleted", nil)
}

// Student catalog views.

func (h *ModuleHandler) ListForStudent(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.Service.ListForStudent(context.Background(), page, limit, c.Query("search"), c.Query("level"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "modules retrieved", result)
}

func (h *ModuleHandler) GetWithLessons(c *gin.Context) {
	result, err := h.Service.GetWithLessons(context.Background(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "module retrieved", result)
}

func (h *ModuleHandler) LessonsByModule(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.Service.LessonsByModule(context.Background(), c.Param("id"), page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "lessons retrieved", result)
}
