package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

func (handler *Handler) GetProfile(c *fiber.Ctx) error {
	profile, err := handler.profiles.Get(c.UserContext(), currentViewer(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile edits the caller's name and avatar. A role field in the body is ignored.
func (handler *Handler) UpdateProfile(c *fiber.Ctx) error {
	input := profileInput{}
	if err := handler.parseInput(c, &input); err != nil {
		return respondError(c, err)
	}

	profile, err := handler.profiles.UpdateOwn(c.UserContext(), currentViewer(c), input.FullName, input.AvatarURL)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

func (handler *Handler) ListUsers(c *fiber.Ctx) error {
	profiles, err := handler.profiles.List(c.UserContext(), currentViewer(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profiles)
}

func (handler *Handler) SetUserRole(c *fiber.Ctx) error {
	input := roleInput{}
	if err := handler.parseInput(c, &input); err != nil {
		return respondError(c, err)
	}

	profile, err := handler.profiles.SetRole(c.UserContext(), currentViewer(c), utils.CopyString(c.Params("id")), input.Role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}
