package users

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/internal/auth"
	"codeberg.org/parley/server/internal/credits"
	"codeberg.org/parley/server/internal/errors"
)

// CreditsHandler godoc
// @Summary Get credit balance
// @Description Returns the caller's granted, reserved and available credits
// @Tags users
// @Produce json
// @Success 200 {object} CreditsResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/users/me/credits [get]
func CreditsHandler(ledger *credits.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "authentication required")
			return
		}

		account, err := ledger.Account(c.Request.Context(), userID)
		if err != nil {
			if stderrors.Is(err, credits.ErrAccountNotFound) {
				errors.NotFound(c, "credit account")
				return
			}

			errors.InternalError(c, "failed to load credit account", err)
			return
		}

		c.JSON(http.StatusOK, CreditsResponse{
			Credits:   account.Credits,
			Reserved:  account.ReservedCredits,
			Available: account.Available(),
		})
	}
}
