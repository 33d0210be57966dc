package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GuestHandler serves guest operations addressed by guest id; list/create
// live under the wedding routes.
type GuestHandler struct {
	guestService service.GuestService
	auth         gin.HandlerFunc
}

func NewGuestHandler(guestService service.GuestService, auth gin.HandlerFunc) *GuestHandler {
	return &GuestHandler{guestService: guestService, auth: auth}
}

func (h *GuestHandler) RegisterRoutes(router *gin.RouterGroup) {
	guests := router.Group("/guests", h.auth)
	{
		guests.GET("/:id", h.GetGuest)
		guests.PATCH("/:id", h.UpdateGuest)
		guests.DELETE("/:id", h.DeleteGuest)
	}
}

// GetGuest returns one guest
// @Summary      Get guest
// @Tags         guests
// @Produce      json
// @Security     BearerAuth
// @Param        id               path      string  true   "Guest ID"
// @Param        include_deleted  query     bool    false  "See soft-deleted row (audit capability required)"
// @Success      200              {object}  response.Response{data=service.GuestResponse}
// @Failure      404              {object}  response.Response
// @Router       /guests/{id} [get]
func (h *GuestHandler) GetGuest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid guest id"))
		return
	}
	guest, err := h.guestService.Get(c.Request.Context(), middleware.Principal(c), id, pagination.IncludeDeleted(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, guest))
}

// UpdateGuest applies a partial update (rsvp changes broadcast to dashboards)
// @Summary      Update guest
// @Tags         guests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Guest ID"
// @Param        payload  body      service.UpdateGuestRequest  true  "Partial Update"
// @Success      200      {object}  response.Response{data=service.GuestResponse}
// @Failure      404      {object}  response.Response
// @Router       /guests/{id} [patch]
func (h *GuestHandler) UpdateGuest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid guest id"))
		return
	}
	var req service.UpdateGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	guest, err := h.guestService.Update(c.Request.Context(), middleware.Principal(c), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, guest))
}

// DeleteGuest soft-deletes a guest
// @Summary      Delete guest
// @Tags         guests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Guest ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /guests/{id} [delete]
func (h *GuestHandler) DeleteGuest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid guest id"))
		return
	}
	if err := h.guestService.Delete(c.Request.Context(), middleware.Principal(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message(http.StatusOK, "Guest deleted"))
}
