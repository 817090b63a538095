package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/khare/internal/services"
)

// SendVerificationEmail is the function form of SendCode: any failure past
// input validation answers 500 with the error message.
func (handler *Handler) SendVerificationEmail(c *fiber.Ctx) error {
	input := emailInput{}
	if err := handler.parseInput(c, &input); err != nil {
		return respondError(c, err)
	}

	ip := clientIP(c)
	if handler.otpBudget.blocked(ip, scopeCodeSend, input.Email) {
		return apiError(c, fiber.StatusTooManyRequests, "too many verification requests, try again later")
	}
	handler.otpBudget.addFailure(ip, scopeCodeSend, input.Email)

	dispatch, err := handler.verification.SendVerificationCode(c.UserContext(), input.Email)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return respondError(c, err)
		}
		return apiError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(newCodeDispatchPayload(dispatch))
}

// SendInterestNotification mails a project owner about an inquiry from the
// signed-in user and returns the send receipt.
func (handler *Handler) SendInterestNotification(c *fiber.Ctx) error {
	input := interestInput{}
	if err := handler.parseInput(c, &input); err != nil {
		return respondError(c, err)
	}

	if input.InterestedUserID == "" {
		input.InterestedUserID = currentViewer(c).AccountID
	}
	receipt, err := handler.interest.Notify(c.UserContext(), services.InterestNotification{
		ProjectID:             input.ProjectID,
		ProjectTitle:          input.ProjectTitle,
		ProjectOwnerEmail:     input.ProjectOwnerEmail,
		InterestedUserEmail:   input.InterestedUserEmail,
		InterestedUserContact: input.InterestedUserContact,
		InterestedUserID:      input.InterestedUserID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(receipt)
}
