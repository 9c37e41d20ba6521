package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/todo-api/internal/model"
	"github.com/yourusername/todo-api/internal/storage"
)

// Handler serves the /auth endpoints.
type Handler struct {
	users  *storage.UserRepository
	hasher *PasswordHasher
	tokens *TokenManager
}

// NewHandler creates an auth Handler.
func NewHandler(users *storage.UserRepository, hasher *PasswordHasher, tokens *TokenManager) *Handler {
	return &Handler{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

type registerRequest struct {
	FirstName string  `json:"first_name" binding:"required,max=50"`
	LastName  *string `json:"last_name"`
	Username  string  `json:"username" binding:"required,max=50"`
	Password  string  `json:"password" binding:"required"`
}

type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

// Register is the POST /auth/register handler. Responds with the created
// user; the password digest never appears in the response.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "first_name, username and password are required",
		})
		return
	}

	if len(req.Password) < MinPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "PASSWORD_TOO_SHORT",
			"message": "password must be at least 6 characters",
		})
		return
	}
	if len(req.Password) > MaxPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "PASSWORD_TOO_LONG",
			"message": "password must be at most 72 characters",
		})
		return
	}

	digest, err := h.hasher.Hash(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "HASH_FAILED",
			"message": "could not hash password",
		})
		return
	}

	user := &model.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Password:  digest,
	}
	if err := h.users.Create(user); err != nil {
		if errors.Is(err, storage.ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "USERNAME_TAKEN",
				"message": "username already exists",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "STORAGE_ERROR",
			"message": "could not create user",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// Login is the POST /auth/login handler. Credentials arrive form-encoded
// (OAuth2 password style); JSON bodies bind too. A missing user and a
// wrong password produce the same response.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "username and password are required",
		})
		return
	}

	user, err := h.users.FindByUsername(req.Username)
	if err != nil || !h.hasher.Verify(req.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"code":    "INVALID_CREDENTIALS",
			"message": "invalid username or password",
		})
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "TOKEN_ISSUE_FAILED",
			"message": "could not issue token",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Me is the GET /auth/me handler; it echoes the authenticated user.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, CurrentUser(c))
}
