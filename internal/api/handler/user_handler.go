package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/martijn/homedash/internal/api/dto"
	"github.com/martijn/homedash/internal/api/middleware"
	"github.com/martijn/homedash/internal/core/domain"
	"github.com/martijn/homedash/internal/core/service"
)

// multipartOverhead is the slack allowed on top of the upload limit for the
// multipart envelope.
const multipartOverhead = 1 << 20

type UserHandler struct {
	userService    *service.UserService
	uploadService  *service.UploadService
	maxUploadBytes int64
}

func NewUserHandler(userService *service.UserService, uploadService *service.UploadService, maxUploadBytes int64) *UserHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = service.DefaultMaxUploadBytes
	}
	return &UserHandler{
		userService:    userService,
		uploadService:  uploadService,
		maxUploadBytes: maxUploadBytes,
	}
}

// Profile handles GET /user/profile
func (h *UserHandler) Profile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateSettings handles PATCH /user/settings/update
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	updated, err := h.userService.UpdateSettings(c.Request.Context(), user, service.SettingsChange{
		Username:        req.Username,
		BackgroundImage: req.BackgroundImage,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(updated))
}

// UploadAvatar handles POST /user/avatar
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	h.upload(c, h.uploadService.UploadAvatar)
}

// UploadBackground handles POST /user/background
func (h *UserHandler) UploadBackground(c *gin.Context) {
	h.upload(c, h.uploadService.UploadBackground)
}

type uploadFunc func(ctx context.Context, user *domain.User, filename string, content io.Reader) (*domain.User, error)

func (h *UserHandler) upload(c *gin.Context, store uploadFunc) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			badRequest(c, fmt.Sprintf("File is too large, the limit is %d bytes", h.maxUploadBytes))
			return
		}
		badRequest(c, "A file must be sent in the 'file' form field")
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer file.Close()

	updated, err := store(c.Request.Context(), user, header.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(updated))
}

// currentUser returns the user set by the auth middleware. Routes without the
// middleware are a wiring mistake and answer 401.
func currentUser(c *gin.Context) (*domain.User, bool) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		respondError(c, domain.ErrUnknownSubject)
		return nil, false
	}
	return user, true
}
