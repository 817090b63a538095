package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/khare/internal/models"
	"github.com/terraincognita07/khare/internal/services"
)

const (
	scopeCodeSend   = "code-send"
	scopeCodeVerify = "code-verify"
)

type sessionPayload struct {
	Session     *models.Session `json:"session"`
	AccessToken string          `json:"access_token,omitempty"`
}

func newSessionPayload(session models.Session) sessionPayload {
	return sessionPayload{Session: &session, AccessToken: session.Token}
}

type codeDispatchPayload struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func newCodeDispatchPayload(dispatch services.VerificationDispatch) codeDispatchPayload {
	return codeDispatchPayload{Success: true, Message: "Verification code sent", Code: dispatch.Code}
}

func (handler *Handler) SignUp(c *fiber.Ctx) error {
	input := signUpInput{}
	if err := handler.parseInput(c, &input); err != nil {
		return respondError(c, err)
	}

	account, err := authManager(c).SignUp(c.UserContext(), input.Email, input.Password, input.FullName)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    models.SessionUser{ID: account.ID, Email: account.Email},
		"message": "Check your email for a verification code",
	})
}

func (handler *Handler) SignIn(c *fiber.Ctx) error {
	input := signInInput{}
	if err := handler.parseInput(c, &input); err != nil {
		return respondError(c, err)
	}

	session, err := authManager(c).SignIn(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newSessionPayload(session))
}

// SendCode mails a fresh one-time code. Every send counts against the
// caller's budget, successful or not.
func (handler *Handler) SendCode(c *fiber.Ctx) error {
	input := emailInput{}
	if err := handler.parseInput(c, &input); err != nil {
		return respondError(c, err)
	}

	ip := clientIP(c)
	if handler.otpBudget.blocked(ip, scopeCodeSend, input.Email) {
		return apiError(c, fiber.StatusTooManyRequests, "too many verification requests, try again later")
	}
	handler.otpBudget.addFailure(ip, scopeCodeSend, input.Email)

	dispatch, err := authManager(c).SendVerificationCode(c.UserContext(), input.Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newCodeDispatchPayload(dispatch))
}

// VerifyCode redeems a code without signing in. A lookup failure is reported
// next to is_valid rather than as an HTTP error.
func (handler *Handler) VerifyCode(c *fiber.Ctx) error {
	input := codeInput{}
	if err := handler.parseInput(c, &input); err != nil {
		return respondError(c, err)
	}

	ip := clientIP(c)
	if handler.otpBudget.blocked(ip, scopeCodeVerify, input.Email) {
		return apiError(c, fiber.StatusTooManyRequests, "too many verification attempts, try again later")
	}

	result := authManager(c).VerifyEmailCode(c.UserContext(), input.Email, input.Code)
	if !result.IsValid {
		handler.otpBudget.addFailure(ip, scopeCodeVerify, input.Email)
	} else {
		handler.otpBudget.reset(ip, scopeCodeVerify, input.Email)
	}

	payload := fiber.Map{"is_valid": result.IsValid}
	if result.Err != nil {
		payload["error"] = "verification could not be completed"
	}
	return c.JSON(payload)
}

func (handler *Handler) SignInWithCode(c *fiber.Ctx) error {
	input := codeInput{}
	if err := handler.parseInput(c, &input); err != nil {
		return respondError(c, err)
	}

	ip := clientIP(c)
	if handler.otpBudget.blocked(ip, scopeCodeVerify, input.Email) {
		return apiError(c, fiber.StatusTooManyRequests, "too many verification attempts, try again later")
	}

	session, err := authManager(c).SignInWithOTP(c.UserContext(), input.Email, input.Code)
	if err != nil {
		handler.otpBudget.addFailure(ip, scopeCodeVerify, input.Email)
		return respondError(c, err)
	}
	handler.otpBudget.reset(ip, scopeCodeVerify, input.Email)
	return c.JSON(newSessionPayload(session))
}

// SignOut clears the cookie even when the server-side revoke fails.
func (handler *Handler) SignOut(c *fiber.Ctx) error {
	if err := authManager(c).SignOut(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"ok": true})
}

func (handler *Handler) Session(c *fiber.Ctx) error {
	return c.JSON(authState(c))
}
