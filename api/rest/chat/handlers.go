package chat

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/parley/server/internal/auth"
	"codeberg.org/parley/server/internal/credits"
	"codeberg.org/parley/server/internal/errors"
	"codeberg.org/parley/server/internal/orchestrator"
	"codeberg.org/parley/server/internal/provider"
	"codeberg.org/parley/server/internal/tools"
	"codeberg.org/parley/server/parley/users"
)

// TurnHandler godoc
// @Summary Run one chat turn
// @Description Sends a message to the AI provider and returns the assistant reply
// @Tags chat
// @Accept json
// @Produce json
// @Param request body TurnRequest true "Turn request"
// @Success 200 {object} orchestrator.TurnResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 402 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Router /api/v1/chat/turn [post]
func TurnHandler(orch *orchestrator.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TurnRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		result, err := orch.Turn(c.Request.Context(), auth.GetIdentity(c), orchestrator.TurnRequest{
			ChatID:          req.ChatID,
			MessageID:       req.MessageID,
			Content:         req.Content,
			ParentMessageID: req.ParentMessageID,
			Model:           req.Model,
			Tool:            req.Tool,
		})
		if err != nil {
			writeTurnError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// maps orchestration failures onto the wire taxonomy
func writeTurnError(c *gin.Context, err error) {
	var budgetErr *tools.BudgetExceededError

	switch {
	case stderrors.Is(err, orchestrator.ErrValidation):
		errors.BadRequest(c, "invalid turn request", err)
	case stderrors.Is(err, orchestrator.ErrUnauthorized):
		errors.Unauthorized(c, "chat belongs to a different account")
	case stderrors.Is(err, orchestrator.ErrModelNotAllowed):
		errors.Forbidden(c, "model not available on your plan")
	case stderrors.Is(err, orchestrator.ErrInputTooLarge):
		errors.InputTooLarge(c, "message is too long")
	case stderrors.Is(err, orchestrator.ErrRateLimited):
		errors.TooManyRequests(c, "anonymous message limit reached, sign in to continue")
	case stderrors.Is(err, credits.ErrInsufficientCredits):
		errors.PaymentRequired(c, "not enough credits for this request")
	case stderrors.As(err, &budgetErr):
		errors.PaymentRequired(c, budgetErr.Error())
	case stderrors.Is(err, users.ErrUserNotFound):
		errors.NotFound(c, "user")
	case stderrors.Is(err, provider.ErrModelNotFound):
		errors.NotFound(c, "model")
	case stderrors.Is(err, provider.ErrRateLimited):
		errors.TooManyRequests(c, "provider is rate limiting, try again shortly")
	default:
		errors.InternalError(c, "turn failed", err)
	}
}
