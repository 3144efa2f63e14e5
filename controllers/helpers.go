package controllers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError logs a warning and writes the standard JSON error envelope.
// typeTag is the machine-readable tag clients switch on.
func (cc *CheckoutController) respondError(c *gin.Context, status int, msg, typeTag string, err error) {
	if err != nil {
		cc.Logger.Warn(msg, zap.String("type", typeTag), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg, "type": typeTag})
}
