package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"comparteride/api/internal/service"
	"comparteride/api/pkg/response"
)

type CircleHandler struct {
	circleService service.CircleService
}

func NewCircleHandler(circleService service.CircleService) *CircleHandler {
	return &CircleHandler{circleService: circleService}
}

type CreateCircleRequest struct {
	Name         string `json:"name" binding:"required,max=140"`
	SlugName     string `json:"slug_name" binding:"required,max=40"`
	About        string `json:"about" binding:"max=255"`
	IsLimited    bool   `json:"is_limited"`
	MembersLimit uint   `json:"members_limit"`
}

type UpdateCircleRequest struct {
	Name         *string `json:"name"`
	About        *string `json:"about"`
	IsLimited    *bool   `json:"is_limited"`
	MembersLimit *uint   `json:"members_limit"`
}

func (h *CircleHandler) List(c *gin.Context) {
	circles, err := h.circleService.ListPublic(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to list circles")
		return
	}
	response.Success(c, circles)
}

func (h *CircleHandler) Create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req CreateCircleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	circle, err := h.circleService.Create(c.Request.Context(), userID, service.CreateCircleInput{
		Name:         req.Name,
		SlugName:     req.SlugName,
		About:        req.About,
		IsLimited:    req.IsLimited,
		MembersLimit: req.MembersLimit,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLimitMismatch):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrSlugTaken):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, "failed to create circle")
		}
		return
	}
	response.Created(c, circle)
}

func (h *CircleHandler) Retrieve(c *gin.Context) {
	circle, err := h.circleService.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrCircleNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "failed to load circle")
		return
	}
	response.Success(c, circle)
}

func (h *CircleHandler) Update(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req UpdateCircleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	circle, err := h.circleService.Update(c.Request.Context(), userID, c.Param("slug"), service.UpdateCircleInput{
		Name:         req.Name,
		About:        req.About,
		IsLimited:    req.IsLimited,
		MembersLimit: req.MembersLimit,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCircleNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNotCircleAdmin):
			response.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrLimitMismatch):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "failed to update circle")
		}
		return
	}
	response.Success(c, circle)
}
