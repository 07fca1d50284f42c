package transport

import (
	"net/http"

	"github.com/ds124wfegd/autotagger/internal/entity"
	"github.com/gin-gonic/gin"
)

type tagsResponse struct {
	PayloadKey   string              `json:"payload_key"`
	Width        int                 `json:"width"`
	Height       int                 `json:"height"`
	Cached       bool                `json:"cached"`
	Presentation entity.Presentation `json:"presentation"`
}

// TagImage is the JSON variant of the upload form. The language comes from
// ?lang= and falls back to Accept-Language.
func (h *Handler) TagImage(c *gin.Context) {
	lang := entity.NegotiateLanguage(c.GetHeader("Accept-Language"))
	if raw := c.Query("lang"); raw != "" {
		parsed, err := entity.ParseLanguage(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		lang = parsed
	}

	file, err := h.openUpload(c)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	view, err := h.tagging.Tag(c.Request.Context(), file, lang)
	if err != nil {
		c.Error(err)
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tagsResponse{
		PayloadKey:   view.PayloadKey,
		Width:        view.Width,
		Height:       view.Height,
		Cached:       view.Cached,
		Presentation: view.Presentation,
	})
}
