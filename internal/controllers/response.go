package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/HuNTer8272/surplus2share-project/internal/apperror"
)

func respondData(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func respondList[T any](c *gin.Context, items []T) {
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(items), "data": items})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": true, "message": message})
}

// respondError renders err by kind. Internal errors are logged and replaced
// by fallback so driver details never reach the client.
func respondError(c *gin.Context, err error, fallback string) {
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(kind)
	if kind == apperror.KindInternal {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error(fallback)
		c.JSON(status, gin.H{"success": false, "message": fallback})
		return
	}

	var appErr *apperror.Error
	errors.As(err, &appErr)
	body := gin.H{"success": false, "message": appErr.Message}
	if len(appErr.Fields) > 0 {
		body["errors"] = appErr.Fields
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

// pathID parses a UUID route parameter. A malformed id cannot match a row, so
// it is reported as notFound.
func pathID(c *gin.Context, param, notFound string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": notFound})
		return uuid.Nil, false
	}
	return id, true
}
