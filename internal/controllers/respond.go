package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"meetbase/internal/apperr"
)

// fail writes the taxonomy-mapped error body. Unknown errors surface as
// 500 with the underlying message.
func fail(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Internal(err)
	}
	c.JSON(ae.Status(), gin.H{"error": ae.Message})
}
