package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/studio/internal/models"
)

// CreateProjectRequest is the request body for creating a project.
// An empty name creates a "Project N" placeholder.
type CreateProjectRequest struct {
	RequestedName string `json:"requested_name" example:"My Project"`
}

// RenameProjectRequest is the request body for renaming a project.
type RenameProjectRequest struct {
	NewDisplayName string `json:"new_display_name" example:"Alpha 2.0" validate:"required"`
}

// Validate implements validation.Validatable.
func (r RenameProjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NewDisplayName, validation.Required, validation.Length(1, 200)),
	)
}

// UpdateSettingsRequest is the request body for replacing project settings.
type UpdateSettingsRequest struct {
	Description string   `json:"description" example:"Short essays"`
	Intention   string   `json:"intention" example:"Publish weekly"`
	PostRecipe  []string `json:"post_recipe" example:"Hook,Argument"`
}

// Validate implements validation.Validatable.
func (r UpdateSettingsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PostRecipe, validation.Each(validation.Required, validation.Length(1, 120))),
	)
}

func (r UpdateSettingsRequest) settings() models.ProjectSettings {
	return models.ProjectSettings{
		Description: r.Description,
		Intention:   r.Intention,
		PostRecipe:  r.PostRecipe,
	}
}

// CreatePostRequest is the request body for creating a post.
type CreatePostRequest struct {
	RequestedTitle string `json:"requested_title" example:"Hello World"`
}

// UpdatePostRequest is the request body for replacing post content.
// Empty content is allowed.
type UpdatePostRequest struct {
	Content *string `json:"content" example:"---\ntitle: \"Hello\"\n---\n\nBody" validate:"required"`
}

// Validate implements validation.Validatable.
func (r UpdatePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.NotNil),
	)
}

// RetitlePostRequest is the request body for changing a post title.
type RetitlePostRequest struct {
	Title string `json:"title" example:"A Better Title" validate:"required"`
}

// Validate implements validation.Validatable.
func (r RetitlePostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
	)
}

// InitializeResponse reports whether the workspace root was created.
type InitializeResponse struct {
	Created bool `json:"created" example:"true"`
}

// ProjectListResponse wraps project listings.
type ProjectListResponse struct {
	Projects []models.Project `json:"projects" validate:"required"`
}

// PostListResponse wraps post listings.
type PostListResponse struct {
	Posts []models.PostSummary `json:"posts" validate:"required"`
}
