package handlers

import (
	"context"
	"net/http"

	"preparedness-service/internal/middleware"
	"preparedness-service/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Service *service.UserService
}

func NewUserHandler(s *service.UserService) *UserHandler {
	return &UserHandler{Service: s}
}

func (h *UserHandler) Profile(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	user, err := h.Service.GetProfile(context.Background(), caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "profile retrieved", user)
}

// Institute-admin student management.

func (h *UserHandler) CreateStudent(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var in service.CreateStudentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	student, err := h.Service.CreateStudent(context.Background(), in, caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "student created", student)
}

func (h *UserHandler) CreateBulkStudents(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var rows []service.CreateStudentInput
	if err := c.ShouldBindJSON(&rows); err != nil {
		respond(c, http.StatusBadRequest, "students must be a list", nil)
		return
	}
	result, err := h.Service.CreateBulkStudents(context.Background(), rows, caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "bulk creation finished", result)
}

func (h *UserHandler) ListStudents(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	page, limit := pageParams(c)
	result, err := h.Service.ListStudents(context.Background(), caller.UserID, service.StudentListQuery{
		Page:   page,
		Limit:  limit,
		Search: c.Query("search"),
		Grade:  c.Query("grade"),
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "students retrieved", result)
}

func (h *UserHandler) UpdateStudent(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	student, err := h.Service.UpdateStudent(context.Background(), c.Param("id"), caller.UserID, updates)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "student updated", student)
}

func (h *UserHandler) DeleteStudent(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	if err := h.Service.DeleteStudent(context.Background(), c.Param("id"), caller.UserID); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "student deleted", nil)
}

// Platform-admin operations.

func (h *UserHandler) CreateInstituteAdmin(c *gin.Context) {
	caller, _ := middleware.CallerFrom(c)
	var in service.CreateInstituteAdminInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	admin, err := h.Service.CreateInstituteAdmin(context.Background(), in, caller.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "institute admin created", admin)
}

func (h *UserHandler) Update(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	user, err := h.Service.UpdateUser(context.Background(), c.Param("id"), updates)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "user updated", user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Service.DeleteUser(context.Background(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "user deleted", nil)
}
