package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/lohithadamisetti123/secure-vault-authorization-system/internal/repository"
)

// AdminHandler serves authenticated read access to the audit trail.
type AdminHandler struct {
	authRepo repository.AuthorizationRepository
	logger   *logrus.Logger
}

// NewAdminHandler creates the handler.
func NewAdminHandler(authRepo repository.AuthorizationRepository, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{authRepo: authRepo, logger: logger}
}

// ListAuthorizations pages through consumed authorizations, newest
// first.
// GET /api/admin/authorizations?page=1&page_size=50
func (h *AdminHandler) ListAuthorizations(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if err != nil || pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	records, total, err := h.authRepo.List(c.Request.Context(), page, pageSize)
	if err != nil {
		h.logger.WithError(err).Error("failed to list consumed authorizations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query authorizations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authorizations": records,
		"total":          total,
		"page":           page,
		"page_size":      pageSize,
	})
}
