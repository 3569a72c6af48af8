// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the Studio content operations via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/studio/internal/apperr"
	"github.com/starford/studio/internal/contentservice"
	"github.com/starford/studio/internal/models"
)

// PostFormatURI is the resource URI of the post format contract.
const PostFormatURI = "studio://post-format"

// Server wraps the MCP server with Studio tools.
type Server struct {
	mcp *server.MCPServer
	svc *contentservice.Service
}

// New creates a new MCP server with all Studio tools registered.
func New(svc *contentservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Studio",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("initialize_workspace",
		mcp.WithDescription("Create the workspace root with a starter project if it does not exist yet. "+
			"Does nothing when the root already exists."),
	), s.initializeWorkspace)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List all projects with their folder names and settings."),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("get_project",
		mcp.WithDescription("Get one project with its description, intention and post recipe."),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Project folder name")),
	), s.getProject)

	s.mcp.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create a project. The folder name is derived from the name and made unique."),
		mcp.WithString("requested_name", mcp.Description("Display name (empty for a numbered placeholder)")),
	), s.createProject)

	s.mcp.AddTool(mcp.NewTool("rename_project",
		mcp.WithDescription("Rename a project. Its folder is moved to match the new name; posts are kept."),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Current folder name")),
		mcp.WithString("new_display_name", mcp.Required(), mcp.Description("New display name")),
	), s.renameProject)

	s.mcp.AddTool(mcp.NewTool("update_project_settings",
		mcp.WithDescription("Replace a project's description, intention and post recipe. "+
			"The recipe lists the section headings every new post starts with."),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Project folder name")),
		mcp.WithString("description", mcp.Description("What the project is about")),
		mcp.WithString("intention", mcp.Description("What the posts should achieve")),
		mcp.WithArray("post_recipe", mcp.Description("Section headings for new posts"), mcp.WithStringItems()),
	), s.updateProjectSettings)

	s.mcp.AddTool(mcp.NewTool("delete_project",
		mcp.WithDescription("Delete a project and every post in it. This cannot be undone."),
		mcp.WithString("folder", mcp.Required(), mcp.Description("Project folder name")),
	), s.deleteProject)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List the posts of a project with their slugs and titles."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project folder name")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("create_post",
		mcp.WithDescription("Create a post from a title. Returns the new post including its slug and starter content."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project folder name")),
		mcp.WithString("requested_title", mcp.Description("Post title (empty for a default title)")),
	), s.createPost)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read the full Markdown content of a post and its checksum."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project folder name")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug (file name without .md)")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("update_post",
		mcp.WithDescription("Replace the full content of a post. Content MUST follow the post format; "+
			"read it via get_post_format or the "+PostFormatURI+" resource. Pass the checksum "+
			"from read_post to fail instead of overwriting a concurrent edit."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project folder name")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New Markdown content")),
		mcp.WithString("checksum", mcp.Description("Checksum the post must still have")),
	), s.updatePost)

	s.mcp.AddTool(mcp.NewTool("retitle_post",
		mcp.WithDescription("Change the title stored in a post's frontmatter. The slug does not change."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project folder name")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug")),
		mcp.WithString("title", mcp.Required(), mcp.Description("New title")),
	), s.retitlePost)

	s.mcp.AddTool(mcp.NewTool("delete_post",
		mcp.WithDescription("Delete a post."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Project folder name")),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug")),
	), s.deletePost)

	s.mcp.AddTool(mcp.NewTool("get_post_format",
		mcp.WithDescription("Returns the Studio post format. "+
			"Call this before updating posts to keep their structure intact."),
	), s.getPostFormat)

	s.mcp.AddResource(
		mcp.NewResource(PostFormatURI, "Post Format",
			mcp.WithResourceDescription("Markdown post format that all posts follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) initializeWorkspace(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	created, err := s.svc.InitializeWorkspace(ctx)
	if err != nil {
		return toolError(err), nil
	}
	if created {
		return mcp.NewToolResultText("created: " + s.svc.Root()), nil
	}
	return mcp.NewToolResultText("exists: " + s.svc.Root()), nil
}

func (s *Server) listProjects(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.svc.ListProjects(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(list), nil
}

func (s *Server) getProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.GetProject(ctx, folder)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(p), nil
}

func (s *Server) createProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.svc.CreateProject(ctx, optionalString(req, "requested_name"))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(p), nil
}

func (s *Server) renameProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("new_display_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.RenameProject(ctx, folder, name)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(p), nil
}

func (s *Server) updateProjectSettings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var recipe []string
	if raw, ok := req.GetArguments()["post_recipe"].([]any); ok {
		for _, v := range raw {
			field, ok := v.(string)
			if !ok || strings.TrimSpace(field) == "" {
				return mcp.NewToolResultError("post_recipe entries must be non-empty strings"), nil
			}
			recipe = append(recipe, field)
		}
	}
	p, err := s.svc.UpdateProjectSettings(ctx, folder, models.ProjectSettings{
		Description: optionalString(req, "description"),
		Intention:   optionalString(req, "intention"),
		PostRecipe:  recipe,
	})
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(p), nil
}

func (s *Server) deleteProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	folder, err := req.RequireString("folder")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteProject(ctx, folder); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText("deleted: " + folder), nil
}

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	list, err := s.svc.ListPosts(ctx, project)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(list), nil
}

func (s *Server) createPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, err := req.RequireString("project")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.CreatePost(ctx, project, optionalString(req, "requested_title"))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(p), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, slug, errRes := postArgs(req)
	if errRes != nil {
		return errRes, nil
	}
	p, err := s.svc.ReadPost(ctx, project, slug)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(p), nil
}

func (s *Server) updatePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, slug, errRes := postArgs(req)
	if errRes != nil {
		return errRes, nil
	}
	// Empty content is a valid post, so presence is checked instead of RequireString.
	content, ok := req.GetArguments()["content"].(string)
	if !ok {
		return mcp.NewToolResultError(`required argument "content" not found`), nil
	}
	if err := s.svc.UpdatePost(ctx, project, slug, content, optionalString(req, "checksum")); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s/%s", project, slug)), nil
}

func (s *Server) retitlePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, slug, errRes := postArgs(req)
	if errRes != nil {
		return errRes, nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.RetitlePost(ctx, project, slug, title)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(p), nil
}

func (s *Server) deletePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project, slug, errRes := postArgs(req)
	if errRes != nil {
		return errRes, nil
	}
	if err := s.svc.DeletePost(ctx, project, slug); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s/%s", project, slug)), nil
}

func (s *Server) getPostFormat(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormat), nil
}

func (s *Server) readPostFormatResource(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      PostFormatURI,
			MIMEType: "text/markdown",
			Text:     PostFormat,
		},
	}, nil
}

func postArgs(req mcp.CallToolRequest) (project, slug string, errRes *mcp.CallToolResult) {
	project, err := req.RequireString("project")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	slug, err = req.RequireString("slug")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	return project, slug, nil
}

func optionalString(req mcp.CallToolRequest, key string) string {
	v, _ := req.GetArguments()[key].(string)
	return v
}

// toolError reports err to the client prefixed with its error kind.
func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(apperr.Code(err) + ": " + err.Error())
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}
