package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"comparteride/api/internal/service"
	"comparteride/api/pkg/response"
)

type InvitationHandler struct {
	invitationService service.InvitationService
}

func NewInvitationHandler(invitationService service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

type IssueInvitationRequest struct {
	// Code is optional; when omitted a random code is generated.
	Code string `json:"code" binding:"omitempty,max=64"`
}

func (h *InvitationHandler) Issue(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req IssueInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	invitation, err := h.invitationService.Issue(c.Request.Context(), userID, c.Param("slug"), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCircleNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrNotCircleMember):
			response.Forbidden(c, err.Error())
		case errors.Is(err, service.ErrCodeSpaceExhausted):
			response.InternalError(c, err.Error())
		default:
			response.InternalError(c, "failed to issue invitation")
		}
		return
	}
	response.Created(c, invitation)
}
