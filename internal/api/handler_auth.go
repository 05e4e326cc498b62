package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mikrotik-manager/internal/model"
	"mikrotik-manager/internal/mw"
	"mikrotik-manager/internal/parse"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// SignUp registers the account, creates its profile and returns the session.
func (h *Handler) SignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	email, password, err := parse.Credentials(req.Email, req.Password)
	if err != nil {
		badRequest(c, err)
		return
	}

	session, state, err := h.sessions.SignUp(c.Request.Context(), email, password, req.FullName)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session, "state": state})
}

// SignIn exchanges credentials for a session.
func (h *Handler) SignIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	email, password, err := parse.Credentials(req.Email, req.Password)
	if err != nil {
		badRequest(c, err)
		return
	}

	session, state, err := h.sessions.SignIn(c.Request.Context(), email, password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session, "state": state})
}

// SignOut revokes the caller's token.
func (h *Handler) SignOut(c *gin.Context) {
	state, err := h.sessions.SignOut(c.Request.Context(), mw.Session(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetCurrentUser returns the authenticated user, or null without a session.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	user, err := h.gateway.GetCurrentUser(c.Request.Context(), mw.BearerToken(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetSession reports which screen the caller's token leads to.
func (h *Handler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.sessions.Resolve(c.Request.Context(), mw.BearerToken(c)))
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.gateway.GetUserProfile(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, err)
		return
	}
	if profile == nil {
		notFound(c, "profile")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req model.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	profile, err := h.gateway.UpdateUserProfile(c.Request.Context(), userID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
