// controllers/respond.go
package controllers

import (
	"errors"
	"net/http"

	"clinicapi-backend/services"
	"clinicapi-backend/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError translates the billing error taxonomy into HTTP status
// codes. Anything unclassified is an internal error and its details stay out
// of the response body.
func respondServiceError(c *gin.Context, err error) {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		switch svcErr.Kind {
		case services.KindBadRequest:
			utils.RespondWithError(c, http.StatusBadRequest, svcErr.Message)
		case services.KindNotFound:
			utils.RespondWithError(c, http.StatusNotFound, svcErr.Message)
		case services.KindConflict:
			utils.RespondWithError(c, http.StatusConflict, svcErr.Message)
		case services.KindBusinessRule:
			utils.RespondWithError(c, http.StatusUnprocessableEntity, svcErr.Message)
		default:
			utils.RespondWithError(c, http.StatusInternalServerError, "Internal error")
		}
		return
	}

	utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
}
