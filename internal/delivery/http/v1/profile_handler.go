package v1

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"io"
	"net/http"
	"strings"
	"time"

	"go-jobseeker-backend/config"
	"go-jobseeker-backend/internal/delivery/http/middleware"
	"go-jobseeker-backend/internal/delivery/http/response"
	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/image/draw"
)

type ProfileHandler struct {
	profileUC   domain.ProfileUsecase
	maxUploadMB int
}

func NewProfileHandler(r *gin.RouterGroup, profileUC domain.ProfileUsecase, cfg *config.Config) {
	handler := &ProfileHandler{
		profileUC:   profileUC,
		maxUploadMB: cfg.MaxUploadMB,
	}

	uploadLimiter := middleware.RateLimitMiddleware(middleware.UploadRateLimitConfig(
		cfg.RateLimitUploadThreshold,
		time.Duration(cfg.RateLimitWindowSeconds)*time.Second,
	))

	profile := r.Group("/profile")
	{
		profile.GET("/me", handler.GetProfile)
		profile.POST("/setup", handler.UpdateProfile)
		profile.POST("/upload-photo", uploadLimiter, handler.UploadPhoto)
		profile.POST("/upload-resume", uploadLimiter, handler.UploadResume)
	}
}

// GetProfile godoc
// @Summary      Get current profile
// @Description  Get the combined user and profile data of the logged-in user
// @Tags         profile
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.ProfileView}
// @Failure      401  {object}  response.Response
// @Router       /profile/me [get]
// @Security     BearerAuth
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	view, err := h.profileUC.GetProfile(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile", view)
}

// UpdateProfile godoc
// @Summary      Update profile
// @Description  Apply a partial profile update. Omitted fields are left untouched; a present skills array fully replaces the stored skill set.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request  body  domain.ProfileUpdate  true  "Partial update"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /profile/setup [post]
// @Security     BearerAuth
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	var update domain.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := h.profileUC.UpdateProfile(c.Request.Context(), userID, update); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Profile updated successfully", nil)
}

// UploadPhoto godoc
// @Summary      Upload profile picture
// @Description  Upload a profile picture. Images are downscaled and re-encoded as JPEG before storage.
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "File to upload"
// @Success      200  {object}  response.Response{data=string}
// @Failure      400  {object}  response.Response
// @Router       /profile/upload-photo [post]
// @Security     BearerAuth
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	h.uploadAsset(c, domain.AssetPicture)
}

// UploadResume godoc
// @Summary      Upload resume
// @Description  Upload a resume document and attach it to the profile.
// @Tags         profile
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "File to upload"
// @Success      200  {object}  response.Response{data=string}
// @Failure      400  {object}  response.Response
// @Router       /profile/upload-resume [post]
// @Security     BearerAuth
func (h *ProfileHandler) UploadResume(c *gin.Context) {
	h.uploadAsset(c, domain.AssetResume)
}

func (h *ProfileHandler) uploadAsset(c *gin.Context, kind domain.AssetKind) {
	userID := c.GetString(string(domain.KeyUserID))

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No file uploaded", err.Error())
		return
	}

	maxBytes := int64(h.maxUploadMB) << 20
	if file.Size > maxBytes {
		response.Error(c, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File exceeds the %d MB upload limit", h.maxUploadMB), nil)
		return
	}

	src, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to open file", nil)
		return
	}
	defer src.Close()

	fileBytes, err := io.ReadAll(src)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "Failed to read file", nil)
		return
	}

	originalName := file.Filename

	// Detect content type from bytes, not the client-supplied header
	if kind == domain.AssetPicture && strings.HasPrefix(http.DetectContentType(fileBytes), "image/") {
		compressed, compressErr := compressImage(fileBytes, 1200, 80)
		if compressErr != nil {
			logger.Log.Warn("Image compression failed, storing original", "error", compressErr)
		} else {
			logger.Log.Debug("Image compressed", "from", len(fileBytes), "to", len(compressed))
			fileBytes = compressed
			originalName = strings.TrimSuffix(originalName, "."+getExtension(originalName)) + ".jpg"
		}
	}

	path, err := h.profileUC.AttachAsset(c.Request.Context(), userID, kind, fileBytes, originalName)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "File uploaded", path)
}

// compressImage downscales an image to the given max dimension, keeping the
// aspect ratio, and re-encodes it as JPEG at the given quality
func compressImage(data []byte, maxDimension int, quality int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	newWidth, newHeight := width, height
	if width > height {
		if width > maxDimension {
			newWidth = maxDimension
			newHeight = int(float64(height) * float64(maxDimension) / float64(width))
		}
	} else {
		if height > maxDimension {
			newHeight = maxDimension
			newWidth = int(float64(width) * float64(maxDimension) / float64(height))
		}
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), nil
}

// getExtension returns the file extension from a filename
func getExtension(filename string) string {
	parts := strings.Split(filename, ".")
	if len(parts) > 1 {
		return parts[len(parts)-1]
	}
	return ""
}
