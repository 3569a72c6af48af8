// Package models defines the domain types for Studio.
package models

// PostExt is the file extension of every post.
const PostExt = ".md"

// ProjectSettings is optional per-project metadata kept next to the posts.
type ProjectSettings struct {
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Intention   string   `yaml:"intention,omitempty" json:"intention,omitempty"`
	PostRecipe  []string `yaml:"post_recipe,omitempty" json:"post_recipe,omitempty"`
}

// Project is a directory directly under the workspace root.
type Project struct {
	Name       string          `json:"name"`
	FolderName string          `json:"folder_name"`
	Path       string          `json:"path"`
	Settings   ProjectSettings `json:"settings"`
}

// PostSummary is a lightweight representation returned by list operations.
type PostSummary struct {
	Filename string `json:"filename"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
}

// Post is a Markdown file inside a project. Slug is fixed at creation time;
// Title is derived from Content on every read.
type Post struct {
	Filename string `json:"filename"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Checksum string `json:"checksum"`
}
