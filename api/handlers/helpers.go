package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"legispuls/services"
)

// abortWithError maps a service failure onto a status code and a JSON body
// carrying both the message and the error kind, so clients can tell a bad
// request from backend trouble.
func abortWithError(c *gin.Context, err error) {
	var reqErr *services.RequestError
	if !errors.As(err, &reqErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "kind": services.KindBackend})
		return
	}

	status := http.StatusInternalServerError
	switch reqErr.Kind {
	case services.KindValidation:
		status = http.StatusBadRequest
	case services.KindNotFound:
		status = http.StatusNotFound
	case services.KindQuota:
		status = http.StatusTooManyRequests
	}
	c.JSON(status, gin.H{"error": reqErr.Err.Error(), "kind": reqErr.Kind})
}
