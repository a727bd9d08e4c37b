package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ldi/taskboard/internal/db"
	"github.com/ldi/taskboard/pkg/models"
)

// NewServer creates a new MCP server exposing the task operations as tools.
func NewServer(database *db.DB) *server.MCPServer {
	s := server.NewMCPServer("Taskboard", "0.1.0")

	s.AddTool(mcp.NewTool("create_task",
		mcp.WithDescription("Create a new task. Status starts as 'pending'."),
		mcp.WithString("title", mcp.Description("Task title"), mcp.Required()),
		mcp.WithString("description", mcp.Description("Optional task description")),
	), createTaskHandler(database))

	s.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks with optional filters."),
		mcp.WithString("status", mcp.Description("Only tasks with exactly this status")),
		mcp.WithString("q", mcp.Description("Only tasks whose title contains this text")),
	), listTasksHandler(database))

	s.AddTool(mcp.NewTool("update_task",
		mcp.WithDescription("Update some fields of a task. Setting status to 'completed' records the completion time."),
		mcp.WithNumber("id", mcp.Description("Task id"), mcp.Required()),
		mcp.WithString("title", mcp.Description("New title")),
		mcp.WithString("description", mcp.Description("New description")),
		mcp.WithString("status", mcp.Description("New status")),
	), updateTaskHandler(database))

	s.AddTool(mcp.NewTool("delete_task",
		mcp.WithDescription("Delete a task permanently."),
		mcp.WithNumber("id", mcp.Description("Task id"), mcp.Required()),
	), deleteTaskHandler(database))

	s.AddTool(mcp.NewTool("get_analytics",
		mcp.WithDescription("Get total and completed task counts and the average completion time in seconds."),
	), getAnalyticsHandler(database))

	return s
}

// Serve starts the MCP server on stdio.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func createTaskHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		title, _ := args["title"].(string)

		var description *string
		if d, ok := args["description"].(string); ok {
			description = &d
		}

		var id int64
		err := database.WithSession(ctx, func(s *db.Session) error {
			var err error
			id, err = s.CreateTask(ctx, title, description)
			return err
		})
		if err != nil {
			return toolError(err), nil
		}

		return jsonResult(map[string]any{"message": "Task created", "id": id})
	}
}

func listTasksHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()

		var filter db.ListFilter
		if s, ok := args["status"].(string); ok && s != "" {
			ts := models.TaskStatus(s)
			filter.Status = &ts
		}
		if q, ok := args["q"].(string); ok && q != "" {
			filter.Query = &q
		}

		var tasks []*models.Task
		err := database.WithSession(ctx, func(s *db.Session) error {
			var err error
			tasks, err = s.ListTasks(ctx, filter)
			return err
		})
		if err != nil {
			return toolError(err), nil
		}

		return jsonResult(map[string]any{"tasks": tasks})
	}
}

func updateTaskHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		id, err := taskID(args)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var update models.TaskUpdate
		update.Title = optionalArg(args, "title")
		update.Description = optionalArg(args, "description")
		update.Status = optionalArg(args, "status")

		err = database.WithSession(ctx, func(s *db.Session) error {
			return s.UpdateTask(ctx, id, update)
		})
		if err != nil {
			return toolError(err), nil
		}

		return mcp.NewToolResultText("Task updated"), nil
	}
}

func deleteTaskHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := taskID(request.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		err = database.WithSession(ctx, func(s *db.Session) error {
			return s.DeleteTask(ctx, id)
		})
		if err != nil {
			return toolError(err), nil
		}

		return mcp.NewToolResultText("Task deleted"), nil
	}
}

func getAnalyticsHandler(database *db.DB) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var analytics *models.Analytics
		err := database.WithSession(ctx, func(s *db.Session) error {
			var err error
			analytics, err = s.Analytics(ctx)
			return err
		})
		if err != nil {
			return toolError(err), nil
		}

		return jsonResult(analytics)
	}
}

// optionalArg maps a tool argument onto the absent/null/value states of a
// task update.
func optionalArg(args map[string]any, key string) models.OptionalString {
	v, ok := args[key]
	if !ok {
		return models.OptionalString{}
	}
	if v == nil {
		return models.Null()
	}
	if s, ok := v.(string); ok {
		return models.Some(s)
	}
	return models.Some(fmt.Sprint(v))
}

func taskID(args map[string]any) (int64, error) {
	switch v := args["id"].(type) {
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("id must be an integer")
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	default:
		return 0, fmt.Errorf("id must be an integer")
	}
}

func toolError(err error) *mcp.CallToolResult {
	if db.IsValidation(err) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError("internal storage error")
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
