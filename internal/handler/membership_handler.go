package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"comparteride/api/internal/service"
	"comparteride/api/pkg/response"
)

type MembershipHandler struct {
	membershipService service.MembershipService
}

func NewMembershipHandler(membershipService service.MembershipService) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService}
}

type JoinCircleRequest struct {
	InvitationCode string `json:"invitation_code" binding:"required"`
}

func (h *MembershipHandler) List(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	members, err := h.membershipService.List(c.Request.Context(), c.Param("slug"), userID)
	if err != nil {
		writeMembershipError(c, err, "failed to list members")
		return
	}
	response.Success(c, members)
}

func (h *MembershipHandler) Retrieve(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	member, err := h.membershipService.Get(c.Request.Context(), c.Param("slug"), c.Param("username"), userID)
	if err != nil {
		writeMembershipError(c, err, "failed to load member")
		return
	}
	response.Success(c, member)
}

func (h *MembershipHandler) Join(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req JoinCircleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	member, err := h.membershipService.Join(c.Request.Context(), c.Param("slug"), userID, req.InvitationCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCircleNotFound):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrInvitationInvalid):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrCircleFull),
			errors.Is(err, service.ErrAlreadyMember):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, "failed to join circle")
		}
		return
	}
	response.Created(c, member)
}

func (h *MembershipHandler) Deactivate(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	err = h.membershipService.Deactivate(c.Request.Context(), c.Param("slug"), c.Param("username"), userID)
	if err != nil {
		writeMembershipError(c, err, "failed to leave circle")
		return
	}
	response.Success(c, nil)
}

func (h *MembershipHandler) Invitations(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	breakdown, err := h.membershipService.Invitations(c.Request.Context(), c.Param("slug"), c.Param("username"), userID)
	if err != nil {
		if errors.Is(err, service.ErrCodeSpaceExhausted) {
			response.InternalError(c, err.Error())
			return
		}
		writeMembershipError(c, err, "failed to load invitations")
		return
	}
	response.Success(c, breakdown)
}

func writeMembershipError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrCircleNotFound),
		errors.Is(err, service.ErrMemberNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNotCircleMember),
		errors.Is(err, service.ErrNotCircleAdmin),
		errors.Is(err, service.ErrNotMembershipOwner):
		response.Forbidden(c, err.Error())
	default:
		response.InternalError(c, fallback)
	}
}
