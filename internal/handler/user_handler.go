package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"comparteride/api/internal/service"
	"comparteride/api/pkg/response"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type SignUpRequest struct {
	Username             string `json:"username" binding:"required,min=3,max=150"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=8,max=64"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required"`
	FirstName            string `json:"first_name" binding:"required"`
	LastName             string `json:"last_name" binding:"required"`
	PhoneNumber          string `json:"phone_number"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=64"`
}

type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

type UpdateUserRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
}

type UpdateProfileRequest struct {
	Picture   *string `json:"picture"`
	Biography *string `json:"biography"`
}

func (h *UserHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.userService.SignUp(c.Request.Context(), service.SignUpInput{
		Username:             req.Username,
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		PhoneNumber:          req.PhoneNumber,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch),
			errors.Is(err, service.ErrInvalidPhone):
			response.BadRequest(c, err.Error())
		case errors.Is(err, service.ErrUserAlreadyExists):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, "signup failed")
		}
		return
	}

	response.Created(c, gin.H{"user": user})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, token, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, "invalid credentials")
		case errors.Is(err, service.ErrUserNotVerified):
			response.Forbidden(c, err.Error())
		default:
			response.InternalError(c, "login failed")
		}
		return
	}

	response.Created(c, gin.H{
		"user":         user,
		"access_token": token,
	})
}

func (h *UserHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.userService.Verify(c.Request.Context(), req.Token); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, "verification failed")
		}
		return
	}

	response.Success(c, gin.H{"message": "Congratulations, now go share some rides!"})
}

func (h *UserHandler) Retrieve(c *gin.Context) {
	detail, err := h.userService.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "failed to load user")
		return
	}
	response.Success(c, detail)
}

func (h *UserHandler) Update(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.userService.Update(c.Request.Context(), userID, c.Param("username"), service.UpdateUserInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		writeUserError(c, err)
		return
	}
	response.Success(c, gin.H{"user": user})
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, c.Param("username"), service.UpdateProfileInput{
		Picture:   req.Picture,
		Biography: req.Biography,
	})
	if err != nil {
		writeUserError(c, err)
		return
	}
	response.Success(c, gin.H{"user": user})
}

func writeUserError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNotAccountOwner):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrInvalidPhone):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, "failed to update user")
	}
}
