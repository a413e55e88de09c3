package http

import (
	"errors"
	"net/http"
	"strconv"

	"task-notifier/internal/dto"
	"task-notifier/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupTasks(base *echo.Group) {
	v1 := base.Group("/v1/tasks")
	{
		v1.POST("/add", h.createTask)
		v1.GET("/all", h.listTasks)
		v1.GET("/:id", h.getTask)
		v1.PUT("/update/:id", h.updateTask)
		v1.DELETE("/delete/:id", h.deleteTask)
		v1.GET("/user/:userId", h.listTasksByUser)
	}
}

func (h *HttpAPIHandler) createTask(c echo.Context) error {
	ctx := c.Request().Context()

	req := new(dto.CreateTaskRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	task, err := h.service.TaskService.Create(ctx, req)
	if err != nil {
		return h.taskError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Task created", dto.NewTaskResponse(task)))
}

func (h *HttpAPIHandler) listTasks(c echo.Context) error {
	tasks, err := h.service.TaskService.List(c.Request().Context())
	if err != nil {
		return h.taskError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Tasks", dto.NewTaskListResponse(tasks)))
}

func (h *HttpAPIHandler) getTask(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid task id"))
	}

	task, err := h.service.TaskService.Get(c.Request().Context(), id)
	if err != nil {
		return h.taskError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Task", dto.NewTaskResponse(task)))
}

func (h *HttpAPIHandler) updateTask(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid task id"))
	}

	req := new(dto.UpdateTaskRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	task, err := h.service.TaskService.Update(c.Request().Context(), id, req)
	if err != nil {
		return h.taskError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Task updated", dto.NewTaskResponse(task)))
}

func (h *HttpAPIHandler) deleteTask(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid task id"))
	}

	if err := h.service.TaskService.Delete(c.Request().Context(), id); err != nil {
		return h.taskError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Task deleted", nil))
}

func (h *HttpAPIHandler) listTasksByUser(c echo.Context) error {
	userID, err := parseID(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid user id"))
	}

	tasks, err := h.service.TaskService.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return h.taskError(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Tasks", dto.NewTaskListResponse(tasks)))
}

func (h *HttpAPIHandler) taskError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		return c.JSON(http.StatusNotFound, dto.NewNotFoundResponse(err.Error()))
	case errors.Is(err, service.ErrEmptyRecipients),
		errors.Is(err, service.ErrUnknownRecipient),
		errors.Is(err, service.ErrInvalidSchedule):
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "internal error", nil))
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
