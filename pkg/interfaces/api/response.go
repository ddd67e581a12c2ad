package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/prodsched/pkg/domain/entities"
	"github.com/vsinha/prodsched/pkg/domain/repositories"
)

// Response is the envelope for every API reply
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// Created writes a 201 response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

// Error writes an error response; the HTTP status is code/100
func Error(c *gin.Context, code int, message string) {
	status := code / 100
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, Response{Code: code, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// respondError maps domain errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var (
		validation *entities.ValidationError
		stale      *entities.StaleStateError
		illegal    *entities.IllegalTransitionError
		violation  *entities.InvariantViolation
	)
	switch {
	case errors.As(err, &validation):
		BadRequest(c, err.Error())
	case errors.Is(err, repositories.ErrOrderNotFound):
		NotFound(c, err.Error())
	case errors.As(err, &stale), errors.As(err, &illegal):
		Conflict(c, err.Error())
	case errors.As(err, &violation):
		Error(c, 50001, err.Error())
	default:
		InternalError(c, err.Error())
	}
}
