package handlers

import (
	"context"
	"net/http"

	"preparedness-service/internal/middleware"
	"preparedness-service/internal/service"

	"github.com/gin-gonic/gin"
)

type DrillHandler struct {
	Service *service.DrillService
}

func NewDrillHandler(s *service.DrillService) *DrillHandler {
	return &DrillHandler{Service: s}
}

func (h *DrillHandler) Create(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var in service.DrillInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	drill, err := h.Service.Create(context.Background(), in, caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "drill created", drill)
}

func (h *DrillHandler) Get(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	drill, err := h.Service.Get(context.Background(), c.Param("id"), caller.UserID, caller.Role)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "drill retrieved", drill)
}

func (h *DrillHandler) ListReleased(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.Service.ListReleased(context.Background(), page, limit, c.Query("search"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "drills retrieved", result)
}

func (h *DrillHandler) ListMine(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	page, limit := pageParams(c)
	result, err := h.Service.ListMine(context.Background(), caller.UserID, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "drills retrieved", result)
}

func (h *DrillHandler) ListAll(c *gin.Context) {
	page, limit := pageParams(c)
	result, err := h.Service.ListAll(context.Background(), page, limit, c.Query("search"), c.Query("released"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "drills retrieved", result)
}

// ListForInstitute returns the released drills targeting the caller's
// institute.
func (h *DrillHandler) ListForInstitute(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	page, limit := pageParams(c)
	result, err := h.Service.ListForInstitute(context.Background(), caller.UserID, page, limit)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "drills retrieved", result)
}

func (h *DrillHandler) Update(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	drill, err := h.Service.Update(context.Background(), c.Param("id"), caller.UserID, caller.Role, updates)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "drill updated", drill)
}

type releaseRequest struct {
	Released bool `json:"released"`
}

func (h *DrillHandler) SetReleased(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var req releaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	drill, err := h.Service.SetReleased(context.Background(), c.Param("id"), req.Released, caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "drill release flag updated", drill)
}

func (h *DrillHandler) Delete(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	if err := h.Service.Delete(context.Background(), c.Param("id"), caller.UserID, caller.Role); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "drill deleted", nil)
}

func (h *DrillHandler) Stats(c *gin.Context) {
	stats, err := h.Service.Stats(context.Background())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "drill stats retrieved", stats)
}
