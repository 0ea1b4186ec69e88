package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/markgregr/todoAgent_REST_server/internal/domain"
	"github.com/markgregr/todoAgent_REST_server/internal/rest/forms/tasks"
	"github.com/markgregr/todoAgent_REST_server/internal/rest/middleware"
	"github.com/markgregr/todoAgent_REST_server/internal/rest/models"
	taskssvc "github.com/markgregr/todoAgent_REST_server/internal/services/tasks"
	"github.com/markgregr/todoAgent_REST_server/pkg/rest/response"
)

type Task struct {
	log   *logrus.Entry
	tasks *taskssvc.Service
}

func NewTaskHandler(tasks *taskssvc.Service, log *logrus.Logger) *Task {
	return &Task{
		log:   logrus.NewEntry(log),
		tasks: tasks,
	}
}

func (h *Task) EnrichRoutes(router *gin.Engine, authenticate gin.HandlerFunc) {
	taskRoutes := router.Group("/api/tasks", authenticate)
	taskRoutes.GET("", h.listAction)
	taskRoutes.POST("", h.createAction)
	taskRoutes.GET("/:taskID", h.getAction)
	taskRoutes.PUT("/:taskID", h.updateAction)
	taskRoutes.PATCH("/:taskID", h.updateAction)
	taskRoutes.DELETE("/:taskID", h.deleteAction)
	taskRoutes.POST("/:taskID/complete", h.completeAction)
}

func (h *Task) listAction(c *gin.Context) {
	const op = "handlers.Task.listAction"
	log := h.log.WithField("operation", op)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.HandleError(response.NewUnauthorizedError(), c)
		return
	}

	filter, ok := domain.ParseTaskFilter(c.Query("status"))
	if !ok {
		response.HandleError(response.NewBadRequestError("invalid status filter"), c)
		return
	}

	list, err := h.tasks.List(c.Request.Context(), user.ID, filter)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to list tasks", op)
		response.HandleError(response.ResolveError(err), c)
		return
	}

	c.JSON(http.StatusOK, models.TaskListResponse{
		Success: true,
		Data:    models.NewTaskList(list),
	})
}

func (h *Task) createAction(c *gin.Context) {
	const op = "handlers.Task.createAction"
	log := h.log.WithField("operation", op)
	log.Info("create task")

	form, verr := tasks.NewCreateTaskForm().ParseAndValidate(c)
	if verr != nil {
		response.HandleError(verr, c)
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.HandleError(response.NewUnauthorizedError(), c)
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), user.ID,
		form.(*tasks.CreateTaskForm).Title,
		form.(*tasks.CreateTaskForm).Description,
	)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to create task", op)
		response.HandleError(response.ResolveError(err), c)
		return
	}

	c.JSON(http.StatusCreated, models.TaskUpdateResponse{
		Success: true,
		Data:    models.NewTask(task),
	})
}

func (h *Task) getAction(c *gin.Context) {
	const op = "handlers.Task.getAction"
	log := h.log.WithField("operation", op)

	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.HandleError(response.NewUnauthorizedError(), c)
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), user.ID, taskID)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to get task", op)
		response.HandleError(response.ResolveError(err), c)
		return
	}

	c.JSON(http.StatusOK, models.TaskUpdateResponse{
		Success: true,
		Data:    models.NewTask(task),
	})
}

func (h *Task) updateAction(c *gin.Context) {
	const op = "handlers.Task.updateAction"
	log := h.log.WithField("operation", op)
	log.Info("update task")

	form, verr := tasks.NewUpdateTaskForm().ParseAndValidate(c)
	if verr != nil {
		response.HandleError(verr, c)
		return
	}

	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.HandleError(response.NewUnauthorizedError(), c)
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	f := form.(*tasks.UpdateTaskForm)
	task, err := h.tasks.Update(c.Request.Context(), user.ID, taskID, domain.TaskPatch{
		Title:       f.Title,
		Description: f.Description,
		Completed:   f.Completed,
	})
	if err != nil {
		log.WithError(err).Errorf("%s: failed to update task", op)
		response.HandleError(response.ResolveError(err), c)
		return
	}

	c.JSON(http.StatusOK, models.TaskUpdateResponse{
		Success: true,
		Data:    models.NewTask(task),
	})
}

func (h *Task) completeAction(c *gin.Context) {
	const op = "handlers.Task.completeAction"
	log := h.log.WithField("operation", op)
	log.Info("complete task")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.HandleError(response.NewUnauthorizedError(), c)
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Complete(c.Request.Context(), user.ID, taskID)
	if err != nil {
		log.WithError(err).Errorf("%s: failed to complete task", op)
		response.HandleError(response.ResolveError(err), c)
		return
	}

	c.JSON(http.StatusOK, models.TaskUpdateResponse{
		Success: true,
		Data:    models.NewTask(task),
	})
}

func (h *Task) deleteAction(c *gin.Context) {
	const op = "handlers.Task.deleteAction"
	log := h.log.WithField("operation", op)
	log.Info("delete task")

	user, ok := middleware.CurrentUser(c)
	if !ok {
		response.HandleError(response.NewUnauthorizedError(), c)
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), user.ID, taskID); err != nil {
		log.WithError(err).Errorf("%s: failed to delete task", op)
		response.HandleError(response.ResolveError(err), c)
		return
	}

	c.JSON(http.StatusOK, models.TaskDeleteResponse{
		Success: true,
		Message: "Task deleted successfully",
	})
}

// parseTaskID reads the :taskID path segment. A non-numeric id cannot name
// an existing task, so it gets the same 404 as a missing one.
func parseTaskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("taskID"), 10, 64)
	if err != nil || id <= 0 {
		response.HandleError(response.NewNotFoundError("task not found"), c)
		return 0, false
	}
	return id, true
}
