package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, msg string, details interface{}) {
	c.JSON(status, ErrorResponse{Error: msg, Details: details})
}

func respondInternal(c *gin.Context, err error) {
	msg := "Unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error", Message: msg})
}
