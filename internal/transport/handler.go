package transport

import (
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ds124wfegd/autotagger/internal/entity"
	"github.com/ds124wfegd/autotagger/internal/service"
	"github.com/gin-gonic/gin"
)

// multipart framing on top of the file itself
const formOverhead = 1 << 20

var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

type Handler struct {
	tagging  service.TaggingService
	sessions service.SessionService
	maxBytes int64
	pages    map[entity.Project]gin.HandlerFunc
}

func NewHandler(svc *service.Service, maxBytes int64) *Handler {
	h := &Handler{
		tagging:  svc.TaggingService,
		sessions: svc.SessionService,
		maxBytes: maxBytes,
	}
	h.pages = map[entity.Project]gin.HandlerFunc{
		entity.ProjectAutoTagging:  h.autoTaggingPage,
		entity.ProjectNeuralSearch: h.stubPage,
		entity.ProjectSimilarity:   h.stubPage,
	}
	return h
}

// openUpload validates the "image" form file and opens it.
func (h *Handler) openUpload(c *gin.Context) (multipart.File, error) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+formOverhead)
	}

	file, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, entity.ErrImageTooLarge
		}
		return nil, entity.ErrNoImage
	}

	if !allowedExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
		return nil, entity.ErrUnsupportedType
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		return nil, entity.ErrImageTooLarge
	}
	if file.Size == 0 {
		return nil, entity.ErrNoImage
	}

	return file.Open()
}

func errorStatus(err error) int {
	var (
		decodeErr    *entity.ImageDecodeError
		encodeErr    *entity.ImageEncodeError
		serviceErr   *entity.ServiceError
		transportErr *entity.TransportError
	)
	switch {
	case errors.Is(err, entity.ErrNoImage),
		errors.Is(err, entity.ErrUnsupportedType),
		errors.Is(err, entity.ErrImageTooLarge),
		errors.Is(err, entity.ErrUnknownLanguage):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrUnknownProject):
		return http.StatusNotFound
	case errors.As(err, &decodeErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &encodeErr):
		return http.StatusInternalServerError
	case errors.As(err, &serviceErr):
		return http.StatusBadGateway
	case errors.As(err, &transportErr):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

