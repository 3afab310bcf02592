package v1

import (
	"errors"
	"io"
	"net/http"

	"go-jobseeker-backend/internal/delivery/http/response"
	"go-jobseeker-backend/pkg/apperror"
	"go-jobseeker-backend/pkg/blobstore"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	store *blobstore.Store
}

// NewFileHandler registers the public asset-serving route. Retrieval paths
// returned by uploads point here.
func NewFileHandler(r *gin.Engine, store *blobstore.Store) {
	handler := &FileHandler{store: store}

	r.GET("/uploads/:folder/:filename", handler.Serve)
}

// Serve godoc
// @Summary      Serve an uploaded file
// @Description  Stream a previously stored asset by category and stored name.
// @Tags         uploads
// @Produce      octet-stream
// @Param        folder    path  string  true  "Storage category"
// @Param        filename  path  string  true  "Stored file name"
// @Success      200  {file}    binary
// @Failure      404  {object}  response.Response
// @Router       /uploads/{folder}/{filename} [get]
func (h *FileHandler) Serve(c *gin.Context) {
	folder := c.Param("folder")
	filename := c.Param("filename")

	// The store canonicalizes the path and refuses anything resolving
	// outside its root, independent of gin's own path matching. Traversal
	// attempts look exactly like missing files.
	rc, err := h.store.Open(folder, filename)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			response.Error(c, http.StatusNotFound, "File not found", nil)
			return
		}
		c.Error(apperror.Internal(err))
		return
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	c.Data(http.StatusOK, blobstore.ContentType(filename), data)
}
