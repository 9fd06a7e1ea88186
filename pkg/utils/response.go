package utils

import "github.com/gin-gonic/gin"

type ErrorBody struct {
	Error string `json:"error"`
}

type SuccessBody struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{Error: message})
}

func SuccessResponse(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, SuccessBody{Success: true, Message: message, Data: data})
}
