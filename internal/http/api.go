package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/domain"
	"taskboard/internal/service"
	"taskboard/internal/token"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth   service.AuthService
	tasks  service.TaskService
	tokens *token.Service
}

func NewHandler(auth service.AuthService, tasks service.TaskService, tokens *token.Service) *Handler {
	return &Handler{
		auth:   auth,
		tasks:  tasks,
		tokens: tokens,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/register", h.register)
		api.POST("/login", h.login)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": true})
		})

		protected := api.Group("", h.authGuard())
		{
			protected.GET("/profile", h.getProfile)
			protected.GET("/tasks", h.listTasks)
			protected.GET("/tasks/:id", h.getTask)
			protected.POST("/tasks", h.createTask)
			protected.PATCH("/tasks/:id", h.updateTask)
			protected.DELETE("/tasks/:id", h.deleteTask)
		}
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	EndDate     string `json:"endDate"`
}

// updateTaskRequest distinguishes absent fields from empty ones; only
// fields present in the body are applied.
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	EndDate     *string `json:"endDate"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "Invalid request body"})
		return
	}

	user, tok, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.failAuth(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": true,
		"msg":    "Account created successfully!",
		"token":  tok,
		"user":   user.Public(),
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "Invalid request body"})
		return
	}

	user, tok, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.failAuth(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": true,
		"msg":    "Login successful",
		"token":  tok,
		"user":   user.Public(),
	})
}

func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.auth.GetProfile(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"status": false, "msg": "User not found"})
			return
		}
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": true,
		"msg":    "Profile loaded successfully",
		"user":   user.Public(),
	})
}

func (h *Handler) listTasks(c *gin.Context) {
	page := intQuery(c, "page")
	pageSize := intQuery(c, "pageSize")

	tasks, pagination, err := h.tasks.List(
		c.Request.Context(),
		currentUser(c).ID,
		page,
		pageSize,
		c.Query("sortBy"),
		c.Query("sortOrder"),
	)
	if err != nil {
		internalError(c)
		return
	}

	resp := make([]TaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = taskToResponse(tasks[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     true,
		"tasks":      resp,
		"pagination": pagination,
		"msg":        "Tasks fetched successfully.",
	})
}

func (h *Handler) getTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	task, err := h.tasks.Get(c.Request.Context(), currentUser(c).ID, id)
	if err != nil {
		h.failTask(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": true,
		"task":   taskToResponse(*task),
		"msg":    "Task found successfully.",
	})
}

func (h *Handler) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "Invalid request body"})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), currentUser(c).ID, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		EndDate:     req.EndDate,
	})
	if err != nil {
		h.failTask(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": true,
		"task":   taskToResponse(*task),
		"msg":    "Task created successfully.",
	})
}

func (h *Handler) updateTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "Invalid request body"})
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), currentUser(c).ID, id, service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		EndDate:     req.EndDate,
	})
	if err != nil {
		h.failTask(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": true,
		"task":   taskToResponse(*task),
		"msg":    "Task updated successfully.",
	})
}

func (h *Handler) deleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}

	if err := h.tasks.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		h.failTask(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": true,
		"msg":    "Task deleted successfully.",
	})
}

// failAuth translates auth service errors. Field-level validation failures
// return the full errors array; everything classified (conflict, unknown
// email, wrong password) is a 400 so the responses stay indistinguishable
// beyond their message.
func (h *Handler) failAuth(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "errors": verr.Fields})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "This email is already registered"})
	case errors.Is(err, service.ErrEmailNotRegistered):
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "This email is not registered"})
	case errors.Is(err, service.ErrPasswordIncorrect):
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "Password incorrect"})
	default:
		internalError(c)
	}
}

func (h *Handler) failTask(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": verr.First()})
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": false, "msg": "Task not found"})
	default:
		internalError(c)
	}
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"status": false, "msg": "Internal Server Error"})
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "msg": "Invalid task id"})
		return 0, false
	}
	return id, true
}

// intQuery parses an integer query parameter, falling back to zero (which
// the service replaces with its default) when absent or malformed.
func intQuery(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

type TaskResponse struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    domain.Priority `json:"priority"`
	EndDate     string          `json:"endDate"`
	CreatedAt   string          `json:"createdAt"`
}

func taskToResponse(task domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		UserID:      task.OwnerID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		EndDate:     task.EndDate.UTC().Format(time.RFC3339),
		CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339),
	}
}
