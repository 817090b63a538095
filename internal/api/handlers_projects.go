package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/terraincognita07/khare/internal/services"
)

func projectID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}

func (handler *Handler) ListProjects(c *fiber.Ctx) error {
	projects, err := handler.projects.ListForViewer(c.UserContext(), currentViewer(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(projects)
}

func (handler *Handler) CreateProject(c *fiber.Ctx) error {
	input := projectInput{}
	if err := handler.parseInput(c, &input); err != nil {
		return respondError(c, err)
	}

	project, err := handler.projects.Create(c.UserContext(), currentViewer(c), services.ProjectInput{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Budget:      input.Budget,
		Status:      input.Status,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

func (handler *Handler) GetProject(c *fiber.Ctx) error {
	project, err := handler.projects.Get(c.UserContext(), currentViewer(c), projectID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

func (handler *Handler) UpdateProject(c *fiber.Ctx) error {
	input := projectPatchInput{}
	if err := handler.parseInput(c, &input); err != nil {
		return respondError(c, err)
	}

	project, err := handler.projects.Update(c.UserContext(), currentViewer(c), projectID(c), services.ProjectPatch{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		Budget:      input.Budget,
		Status:      input.Status,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

func (handler *Handler) DeleteProject(c *fiber.Ctx) error {
	if err := handler.projects.Delete(c.UserContext(), currentViewer(c), projectID(c)); err != nil {
		return respondError(c, err)
	}
	return sendNoContent(c)
}

// AssignContractor sets the project's contractor; an empty contractor_id unassigns.
func (handler *Handler) AssignContractor(c *fiber.Ctx) error {
	input := contractorInput{}
	if err := handler.parseInput(c, &input); err != nil {
		return respondError(c, err)
	}

	project, err := handler.projects.AssignContractor(c.UserContext(), currentViewer(c), projectID(c), input.ContractorID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(project)
}

func (handler *Handler) ListProjectUpdates(c *fiber.Ctx) error {
	updates, err := handler.projects.ListUpdates(c.UserContext(), currentViewer(c), projectID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updates)
}

func (handler *Handler) CreateProjectUpdate(c *fiber.Ctx) error {
	input := projectUpdateInput{}
	if err := handler.parseInput(c, &input); err != nil {
		return respondError(c, err)
	}

	update, err := handler.projects.AddUpdate(c.UserContext(), currentViewer(c), projectID(c), input.Content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(update)
}

func (handler *Handler) ListProjectImages(c *fiber.Ctx) error {
	images, err := handler.projects.ListImages(c.UserContext(), currentViewer(c), projectID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(images)
}

func (handler *Handler) CreateProjectImage(c *fiber.Ctx) error {
	input := projectImageInput{}
	if err := handler.parseInput(c, &input); err != nil {
		return respondError(c, err)
	}

	image, err := handler.projects.AddImage(c.UserContext(), currentViewer(c), projectID(c), input.ImageURL)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(image)
}
