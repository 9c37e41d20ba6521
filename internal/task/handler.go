package task

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/todo-api/internal/auth"
	"github.com/yourusername/todo-api/internal/model"
	"github.com/yourusername/todo-api/internal/storage"
)

// Handler serves the /tasks endpoints. Every route sits behind the auth
// middleware, so CurrentUser is always available.
type Handler struct {
	service *Service
}

// NewHandler creates a task Handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register wires the task routes onto a router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/mine", h.ListMine)
	rg.GET("/:id", h.Get)
	rg.POST("", h.Create)
	rg.PATCH("/:id/complete", h.Complete)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

type listQuery struct {
	Status  string `form:"status"`
	Search  string `form:"q"`
	SortBy  string `form:"sort_by"`
	SortDir string `form:"sort_dir"`
	Page    int    `form:"page,default=1" binding:"gte=1"`
	Limit   int    `form:"limit,default=10" binding:"gte=1,lte=100"`
}

// parseListParams validates the shared listing query parameters.
func parseListParams(c *gin.Context) (ListParams, bool) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "page must be >= 1 and limit between 1 and 100",
		})
		return ListParams{}, false
	}

	params := ListParams{
		Search:  q.Search,
		SortBy:  q.SortBy,
		SortDir: q.SortDir,
		Page:    q.Page,
		Limit:   q.Limit,
	}
	if q.Status != "" {
		status, err := model.ParseStatus(q.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_STATUS",
				"message": err.Error(),
			})
			return ListParams{}, false
		}
		params.Status = &status
	}
	return params, true
}

// List is the GET /tasks handler: every owner's tasks, filtered, searched,
// sorted and paginated.
func (h *Handler) List(c *gin.Context) {
	params, ok := parseListParams(c)
	if !ok {
		return
	}
	h.respondList(c, params)
}

// ListMine is the GET /tasks/mine handler: same query surface, scoped to
// the caller.
func (h *Handler) ListMine(c *gin.Context) {
	params, ok := parseListParams(c)
	if !ok {
		return
	}
	ownerID := auth.CurrentUser(c).ID
	params.OwnerID = &ownerID
	h.respondList(c, params)
}

func (h *Handler) respondList(c *gin.Context, params ListParams) {
	page, err := h.service.List(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "STORAGE_ERROR",
			"message": "could not list tasks",
		})
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get is the GET /tasks/:id handler. Ownership is deliberately not
// checked here: any authenticated caller may fetch any task by id.
func (h *Handler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	task, err := h.service.Get(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

type createRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
}

// Create is the POST /tasks handler.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "title is required",
		})
		return
	}

	task, err := h.service.Create(auth.CurrentUser(c).ID, CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Complete is the PATCH /tasks/:id/complete handler.
func (h *Handler) Complete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	task, err := h.service.Complete(id, auth.CurrentUser(c).ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Update is the PATCH /tasks/:id handler. The body is decoded into a raw
// key map so an omitted field and a field set to null stay distinct.
func (h *Handler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var patch map[string]json.RawMessage
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "request body must be a JSON object",
		})
		return
	}

	task, err := h.service.Update(id, auth.CurrentUser(c).ID, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete is the DELETE /tasks/:id handler.
func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(id, auth.CurrentUser(c).ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// respondError maps service errors onto the HTTP taxonomy.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": "task not found",
		})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"code":    "FORBIDDEN",
			"message": err.Error(),
		})
	case errors.Is(err, model.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_STATUS",
			"message": err.Error(),
		})
	case errors.Is(err, ErrInvalidTitle), errors.Is(err, ErrInvalidPatch):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "VALIDATION_ERROR",
			"message": err.Error(),
		})
	case errors.Is(err, storage.ErrInvalidOwner):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "CONSTRAINT_VIOLATION",
			"message": "task owner does not exist",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "STORAGE_ERROR",
			"message": "unexpected storage failure",
		})
	}
}

// parseID reads the :id path segment. A non-numeric id answers 404
// rather than 422: no task can live at such a path, so the route is
// treated as pointing at nothing.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "NOT_FOUND",
			"message": "task not found",
		})
		return 0, false
	}
	return uint(id), true
}
