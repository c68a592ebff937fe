package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/storage"
	apperrors "github.com/lucaanasser/nsr-ecommerce-backend/internal/errors"
	"github.com/lucaanasser/nsr-ecommerce-backend/internal/middleware"
)

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(storage *storage.S3Storage) *UploadController {
	return &UploadController{
		storage: storage,
	}
}

type PresignUploadRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder"` // defaults to "products"
}

// PresignUpload issues a presigned PUT URL for a product image (admin)
// POST /api/v1/admin/uploads/presign
func (ctrl *UploadController) PresignUpload(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid presign request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "os dados do upload são inválidos")
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = "products"
	}

	upload, err := ctrl.storage.PresignImageUpload(c.Request.Context(), req.Filename, req.ContentType, folder)
	if err != nil {
		if !storage.AllowedImageTypes[req.ContentType] {
			apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "apenas imagens JPEG, PNG, GIF ou WEBP são permitidas")
			return
		}
		if !storage.ImageFolders[folder] {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "destino de upload inválido")
			return
		}
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
			"folder":       folder,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "falha ao preparar o upload")
		return
	}

	log.Info("Presigned upload URL generated", map[string]interface{}{
		"key":    upload.Key,
		"folder": folder,
	})

	c.JSON(http.StatusOK, upload)
}
