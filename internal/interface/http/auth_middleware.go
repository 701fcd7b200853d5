package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/food-waste-predictor/internal/domain/auth"
	apperrors "github.com/yanqian/food-waste-predictor/pkg/errors"
)

func authMiddleware(guard auth.Guard) gin.HandlerFunc {
	if guard == nil {
		guard = auth.NoopGuard{}
	}
	return func(c *gin.Context) {
		if err := guard.Authorize(c.Request.Context(), c.GetHeader("Authorization")); err != nil {
			httpErr := fromAppError(err, apperrors.CodeUnauthorized)
			if httpErr.Status == http.StatusInternalServerError {
				httpErr.Status = http.StatusUnauthorized
			}
			abortWithError(c, httpErr)
			return
		}
		c.Next()
	}
}
