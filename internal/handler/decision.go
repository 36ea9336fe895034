package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/pkg/response"
)

type decisionFunc func(ctx context.Context, key, adminID string) (*models.Decision, error)

// decide runs an approve or reject for the :id path parameter as the calling admin.
func decide(c *gin.Context, fn decisionFunc) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	decision, err := fn(c.Request.Context(), c.Param("id"), claims.PrincipalID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, decision)
}
