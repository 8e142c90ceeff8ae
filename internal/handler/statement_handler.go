package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deep-platform/deep-api/internal/dto"
	"github.com/deep-platform/deep-api/internal/service"
	appErrors "github.com/deep-platform/deep-api/pkg/errors"
	"github.com/deep-platform/deep-api/pkg/response"
)

type statementService interface {
	Export(ctx context.Context, mentorID string, req dto.StatementRequest) (*dto.StatementResponse, error)
	Open(token string) (*service.StatementFile, error)
}

// StatementHandler exposes mentor statements.
type StatementHandler struct {
	service statementService
}

// NewStatementHandler builds a new handler.
func NewStatementHandler(service statementService) *StatementHandler {
	return &StatementHandler{service: service}
}

// Export godoc
// @Summary Render the caller's earnings statement
// @Tags Mentors
// @Produce json
// @Security BearerAuth
// @Param from query string true "First day (YYYY-MM-DD)"
// @Param to query string true "Last day (YYYY-MM-DD)"
// @Param format query string false "csv or pdf"
// @Success 200 {object} dto.StatementResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /mentors/me/statement [get]
func (h *StatementHandler) Export(c *gin.Context) {
	var req dto.StatementRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid statement request"))
		return
	}
	result, err := h.service.Export(c.Request.Context(), callerID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Download godoc
// @Summary Download a rendered statement
// @Tags Mentors
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /statements/{token} [get]
func (h *StatementHandler) Download(c *gin.Context) {
	file, err := h.service.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.File.Close()

	info, err := file.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to read statement"))
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.DataFromReader(http.StatusOK, info.Size(), file.ContentType, file.File, nil)
}
