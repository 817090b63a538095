package api

import "strings"

type signUpInput struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	FullName string `json:"full_name" form:"full_name" validate:"required,max=200"`
}

type signInInput struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type emailInput struct {
	Email string `json:"email" form:"email" validate:"required,email"`
}

// codeInput keeps the code loosely validated: a malformed code is an invalid
// code, not a bad request.
type codeInput struct {
	Email string `json:"email" form:"email" validate:"required,email"`
	Code  string `json:"code" form:"code" validate:"required"`
}

type interestInput struct {
	ProjectID             string `json:"projectId"`
	ProjectTitle          string `json:"projectTitle"`
	ProjectOwnerEmail     string `json:"projectOwnerEmail"`
	InterestedUserEmail   string `json:"interestedUserEmail" validate:"omitempty,email"`
	InterestedUserContact string `json:"interestedUserContact"`
	InterestedUserID      string `json:"interestedUserId"`
}

type projectInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Budget      *float64 `json:"budget" validate:"omitempty,gte=0"`
	Status      string   `json:"status" validate:"project_status"`
}

type projectPatchInput struct {
	Title       *string  `json:"title" validate:"omitempty,max=200"`
	Description *string  `json:"description"`
	Location    *string  `json:"location"`
	Budget      *float64 `json:"budget" validate:"omitempty,gte=0"`
	Status      *string  `json:"status" validate:"omitempty,project_status"`
}

type contractorInput struct {
	ContractorID string `json:"contractor_id"`
}

type projectUpdateInput struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type projectImageInput struct {
	ImageURL string `json:"image_url" validate:"required,url"`
}

type profileInput struct {
	FullName  *string `json:"full_name" validate:"omitempty,max=200"`
	AvatarURL *string `json:"avatar_url"`
}

type roleInput struct {
	Role string `json:"role" validate:"required,role"`
}

// normalizer inputs are cleaned up between binding and validation so that
// surrounding spaces do not fail the email rule.
type normalizer interface {
	normalize()
}

func (input *signUpInput) normalize() {
	input.Email = strings.TrimSpace(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
}

func (input *signInInput) normalize() {
	input.Email = strings.TrimSpace(input.Email)
}

func (input *emailInput) normalize() {
	input.Email = strings.TrimSpace(input.Email)
}

func (input *codeInput) normalize() {
	input.Email = strings.TrimSpace(input.Email)
	input.Code = strings.TrimSpace(input.Code)
}

func (input *interestInput) normalize() {
	input.ProjectOwnerEmail = strings.TrimSpace(input.ProjectOwnerEmail)
	input.InterestedUserEmail = strings.TrimSpace(input.InterestedUserEmail)
}
