package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DataResponse wraps a successful payload.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// JSON writes a raw JSON response with the given status.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.JSON(status, payload)
}

// Data writes payload wrapped as {"data": payload}.
func Data(c *gin.Context, status int, payload interface{}) {
	JSON(c, status, DataResponse{Data: payload})
}

// OK writes a 200 {"data": payload} response.
func OK(c *gin.Context, payload interface{}) {
	Data(c, http.StatusOK, payload)
}

// Created writes a 201 {"data": payload} response.
func Created(c *gin.Context, payload interface{}) {
	Data(c, http.StatusCreated, payload)
}

// Success writes the {"success": true} acknowledgement used by deletes.
func Success(c *gin.Context) {
	JSON(c, http.StatusOK, gin.H{"success": true})
}
