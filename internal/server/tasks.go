package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ldi/taskboard/internal/db"
	"github.com/ldi/taskboard/pkg/models"
)

const livenessMessage = "Taskboard is running"

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type messageResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

func (s *Server) handleHome(c *gin.Context) {
	c.String(http.StatusOK, livenessMessage)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	log := requestLogger(c, s.logger)

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	var id int64
	err := s.withSession(c, func(sess *db.Session) error {
		var err error
		id, err = sess.CreateTask(c.Request.Context(), req.Title, req.Description)
		return err
	})
	if err != nil {
		s.fail(c, err, "failed to create task")
		return
	}

	log.Info().Int64("id", id).Msg("created task")
	c.JSON(http.StatusCreated, messageResponse{Message: "Task created", ID: id})
}

func (s *Server) handleListTasks(c *gin.Context) {
	var filter db.ListFilter
	if status, ok := c.GetQuery("status"); ok && status != "" {
		ts := models.TaskStatus(status)
		filter.Status = &ts
	}
	if q, ok := c.GetQuery("q"); ok && q != "" {
		filter.Query = &q
	}

	var tasks []*models.Task
	err := s.withSession(c, func(sess *db.Session) error {
		var err error
		tasks, err = sess.ListTasks(c.Request.Context(), filter)
		return err
	})
	if err != nil {
		s.fail(c, err, "failed to list tasks")
		return
	}

	requestLogger(c, s.logger).Debug().Int("count", len(tasks)).Msg("listed tasks")
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	log := requestLogger(c, s.logger)

	id, ok := taskID(c)
	if !ok {
		return
	}

	var update models.TaskUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		log.Warn().Err(err).Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	err := s.withSession(c, func(sess *db.Session) error {
		return sess.UpdateTask(c.Request.Context(), id, update)
	})
	if err != nil {
		s.fail(c, err, "failed to update task")
		return
	}

	log.Info().Int64("id", id).Msg("updated task")
	c.JSON(http.StatusOK, messageResponse{Message: "Task updated"})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	err := s.withSession(c, func(sess *db.Session) error {
		return sess.DeleteTask(c.Request.Context(), id)
	})
	if err != nil {
		s.fail(c, err, "failed to delete task")
		return
	}

	requestLogger(c, s.logger).Info().Int64("id", id).Msg("deleted task")
	c.JSON(http.StatusOK, messageResponse{Message: "Task deleted"})
}

func (s *Server) handleAnalytics(c *gin.Context) {
	var analytics *models.Analytics
	err := s.withSession(c, func(sess *db.Session) error {
		var err error
		analytics, err = sess.Analytics(c.Request.Context())
		return err
	})
	if err != nil {
		s.fail(c, err, "failed to compute analytics")
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// withSession scopes one storage session to the request. The session is
// released before the caller writes the response.
func (s *Server) withSession(c *gin.Context, fn func(sess *db.Session) error) error {
	return s.db.WithSession(c.Request.Context(), fn)
}

func (s *Server) fail(c *gin.Context, err error, msg string) {
	apiErr := fromRepositoryError(err)
	log := requestLogger(c, s.logger)
	if apiErr.Code >= http.StatusInternalServerError {
		log.Error().Err(err).Msg(msg)
	} else {
		log.Warn().Err(err).Msg(msg)
	}
	abort(c, apiErr)
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abort(c, newBadRequestError(errInvalidTaskID.Error()))
		return 0, false
	}
	return id, true
}
