package handler

import (
	"net/http"

	"github.com/brodiemcgee/thegloryapp-sub002/pkg/conditions"
	"github.com/gin-gonic/gin"
)

func ListConditions(c *gin.Context) {
	c.JSON(http.StatusOK, conditions.All())
}
