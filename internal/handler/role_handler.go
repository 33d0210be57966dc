package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RoleHandler struct {
	roleService service.RoleService
	auth        gin.HandlerFunc
}

func NewRoleHandler(roleService service.RoleService, auth gin.HandlerFunc) *RoleHandler {
	return &RoleHandler{roleService: roleService, auth: auth}
}

// RegisterRoutes binds role-registry endpoints. Everything here requires the
// roles.manage capability (superusers pass implicitly).
func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	manage := middleware.RequireCapabilities(service.CapRolesManage)

	roles := router.Group("/roles", h.auth, manage)
	{
		roles.GET("", h.ListRoles)
		roles.POST("", h.EnsureRole)
	}

	userRoles := router.Group("/users/:id/roles", h.auth, manage)
	{
		userRoles.GET("", h.GetUserRoles)
		userRoles.PUT("", h.ReplaceUserRoles)
		userRoles.POST("/:name", h.AssignRole)
		userRoles.DELETE("/:name", h.RemoveRole)
	}
}

// ListRoles returns every registered role with its capabilities
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.RoleResponse}
// @Router       /roles [get]
func (h *RoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.ListRoles(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, roles))
}

// EnsureRole creates a role if it does not exist yet
// @Summary      Ensure role
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.RoleResponse}
// @Router       /roles [post]
func (h *RoleHandler) EnsureRole(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	role, err := h.roleService.EnsureRole(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, role))
}

// GetUserRoles returns the role names assigned to an account
// @Summary      Get user roles
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response{data=[]string}
// @Failure      404  {object}  response.Response
// @Router       /users/{id}/roles [get]
func (h *RoleHandler) GetUserRoles(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid user id"))
		return
	}
	names, err := h.roleService.UserRoles(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, names))
}

// ReplaceUserRoles atomically swaps the account's role set
// @Summary      Replace user roles
// @Description  All-or-nothing: any unknown role name aborts the whole swap
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                       true  "User ID"
// @Param        payload  body      service.ReplaceRolesRequest  true  "Role names"
// @Success      200      {object}  response.Response{data=[]string}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /users/{id}/roles [put]
func (h *RoleHandler) ReplaceUserRoles(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid user id"))
		return
	}
	var req service.ReplaceRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	principal := middleware.Principal(c)
	names, err := h.roleService.ReplaceRoles(c.Request.Context(), principal.ID, userID, req.Roles)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, names))
}

// AssignRole adds one role to an account (no-op when already held)
// @Summary      Assign role
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "User ID"
// @Param        name  path      string  true  "Role name"
// @Success      200   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Router       /users/{id}/roles/{name} [post]
func (h *RoleHandler) AssignRole(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid user id"))
		return
	}
	if err := h.roleService.AssignRole(c.Request.Context(), userID, c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message(http.StatusOK, "Role assigned"))
}

// RemoveRole removes one role from an account
// @Summary      Remove role
// @Description  Refuses to orphan the superuser role or let a superuser self-demote
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string  true  "User ID"
// @Param        name  path      string  true  "Role name"
// @Success      200   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /users/{id}/roles/{name} [delete]
func (h *RoleHandler) RemoveRole(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid user id"))
		return
	}
	principal := middleware.Principal(c)
	if err := h.roleService.RemoveRole(c.Request.Context(), principal.ID, userID, c.Param("name")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message(http.StatusOK, "Role removed"))
}
