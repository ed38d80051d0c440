package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"comparteride/api/internal/service"
	"comparteride/api/pkg/response"
)

type RideHandler struct {
	rideService service.RideService
}

func NewRideHandler(rideService service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

type OfferRideRequest struct {
	OfferedBy         string    `json:"offered_by"`
	Comments          string    `json:"comments" binding:"max=255"`
	DepartureLocation string    `json:"departure_location" binding:"required,max=255"`
	ArrivalLocation   string    `json:"arrival_location" binding:"required,max=255"`
	DepartureDate     time.Time `json:"departure_date" binding:"required"`
	ArrivalDate       time.Time `json:"arrival_date" binding:"required"`
	AvailableSeats    uint      `json:"available_seats" binding:"required,min=1,max=15"`
}

type UpdateRideRequest struct {
	Comments          *string    `json:"comments"`
	DepartureLocation *string    `json:"departure_location"`
	ArrivalLocation   *string    `json:"arrival_location"`
	DepartureDate     *time.Time `json:"departure_date"`
	ArrivalDate       *time.Time `json:"arrival_date"`
	AvailableSeats    *uint      `json:"available_seats"`
}

type RateRideRequest struct {
	Score uint `json:"score" binding:"required,min=1,max=5"`
}

func (h *RideHandler) Create(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	var req OfferRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ride, err := h.rideService.Offer(c.Request.Context(), userID, c.Param("slug"), service.OfferRideInput{
		OfferedBy:         req.OfferedBy,
		Comments:          req.Comments,
		DepartureLocation: req.DepartureLocation,
		ArrivalLocation:   req.ArrivalLocation,
		DepartureDate:     req.DepartureDate,
		ArrivalDate:       req.ArrivalDate,
		AvailableSeats:    req.AvailableSeats,
	})
	if err != nil {
		writeRideError(c, err, "failed to offer ride")
		return
	}
	response.Created(c, ride)
}

func (h *RideHandler) List(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}

	rides, err := h.rideService.List(c.Request.Context(), userID, c.Param("slug"), service.ListRidesQuery{
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	})
	if err != nil {
		writeRideError(c, err, "failed to list rides")
		return
	}
	response.Success(c, rides)
}

func (h *RideHandler) Update(c *gin.Context) {
	userID, rideID, ok := h.rideContext(c)
	if !ok {
		return
	}

	var req UpdateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ride, err := h.rideService.Update(c.Request.Context(), userID, c.Param("slug"), rideID, service.UpdateRideInput{
		Comments:          req.Comments,
		DepartureLocation: req.DepartureLocation,
		ArrivalLocation:   req.ArrivalLocation,
		DepartureDate:     req.DepartureDate,
		ArrivalDate:       req.ArrivalDate,
		AvailableSeats:    req.AvailableSeats,
	})
	if err != nil {
		writeRideError(c, err, "failed to update ride")
		return
	}
	response.Success(c, ride)
}

func (h *RideHandler) Join(c *gin.Context) {
	userID, rideID, ok := h.rideContext(c)
	if !ok {
		return
	}

	ride, err := h.rideService.Join(c.Request.Context(), userID, c.Param("slug"), rideID)
	if err != nil {
		writeRideError(c, err, "failed to join ride")
		return
	}
	response.Success(c, ride)
}

func (h *RideHandler) Rate(c *gin.Context) {
	userID, rideID, ok := h.rideContext(c)
	if !ok {
		return
	}

	var req RateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ride, err := h.rideService.Rate(c.Request.Context(), userID, c.Param("slug"), rideID, req.Score)
	if err != nil {
		writeRideError(c, err, "failed to rate ride")
		return
	}
	response.Success(c, ride)
}

func (h *RideHandler) rideContext(c *gin.Context) (userID, rideID uuid.UUID, ok bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return uuid.Nil, uuid.Nil, false
	}
	rideID, err = uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid ride id")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, rideID, true
}

func writeRideError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrCircleNotFound),
		errors.Is(err, service.ErrRideNotFound),
		errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrNotCircleMember),
		errors.Is(err, service.ErrNotRideOwner),
		errors.Is(err, service.ErrOfferOnBehalf):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrDepartureTooSoon),
		errors.Is(err, service.ErrInvalidSchedule),
		errors.Is(err, service.ErrInvalidSeats),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrInvalidOrdering),
		errors.Is(err, service.ErrRideNotFinished):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrRideInactive),
		errors.Is(err, service.ErrRideFull),
		errors.Is(err, service.ErrAlreadyPassenger),
		errors.Is(err, service.ErrNotPassenger),
		errors.Is(err, service.ErrAlreadyRated),
		errors.Is(err, service.ErrRideStarted):
		response.Conflict(c, err.Error())
	default:
		response.InternalError(c, fallback)
	}
}
