package transport

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/ds124wfegd/autotagger/internal/entity"
	"github.com/ds124wfegd/autotagger/internal/transport/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type projectLink struct {
	Slug   string
	Name   string
	Active bool
}

type pageData struct {
	Projects    []projectLink
	Project     entity.Project
	Title       string
	Language    entity.Language
	HTMLLang    string
	Direction   entity.Direction
	ToggleLabel string
	View        *entity.TaggingView
	ImageSrc    template.URL
	Error       string
}

func newPageData(session *entity.Session) pageData {
	links := make([]projectLink, 0, len(entity.Projects))
	for _, p := range entity.Projects {
		links = append(links, projectLink{Slug: string(p), Name: p.Name(), Active: p == session.Project})
	}

	toggle := "العربية"
	if session.Language == entity.LanguageAR {
		toggle = "English"
	}

	return pageData{
		Projects:    links,
		Project:     session.Project,
		Title:       session.Project.Title(),
		Language:    session.Language,
		HTMLLang:    session.Language.Tag().String(),
		Direction:   session.Language.Direction(),
		ToggleLabel: toggle,
	}
}

func (d *pageData) setView(view *entity.TaggingView) {
	if view == nil {
		return
	}
	d.View = view
	d.Direction = view.Presentation.Direction
	// payload is plain base64, safe inside a data URL
	d.ImageSrc = template.URL("data:image/jpeg;base64," + view.Payload.Data)
}

func (h *Handler) Index(c *gin.Context) {
	session := middleware.CurrentSession(c)
	page, ok := h.pages[session.Project]
	if !ok {
		page = h.autoTaggingPage
	}
	page(c)
}

func (h *Handler) SelectProject(c *gin.Context) {
	project, err := entity.ParseProject(c.Param("project"))
	if err != nil {
		c.String(errorStatus(err), err.Error())
		return
	}

	h.sessions.SelectProject(middleware.CurrentSession(c), project)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) autoTaggingPage(c *gin.Context) {
	session := middleware.CurrentSession(c)
	data := newPageData(session)

	view, err := h.tagging.Current(c.Request.Context(), session)
	if err != nil && !errors.Is(err, entity.ErrNothingToRender) {
		logrus.WithError(err).Warn("Could not restore last tagging result")
	}
	data.setView(view)

	c.HTML(http.StatusOK, "index.html", data)
}

func (h *Handler) stubPage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", newPageData(middleware.CurrentSession(c)))
}

func (h *Handler) Upload(c *gin.Context) {
	session := middleware.CurrentSession(c)

	view, err := h.tagUpload(c, session)
	if err != nil {
		c.Error(err)
		data := newPageData(session)
		data.Error = err.Error()
		c.HTML(errorStatus(err), "index.html", data)
		return
	}

	data := newPageData(session)
	data.setView(view)
	c.HTML(http.StatusOK, "index.html", data)
}

func (h *Handler) tagUpload(c *gin.Context, session *entity.Session) (*entity.TaggingView, error) {
	file, err := h.openUpload(c)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return h.tagging.TagImage(c.Request.Context(), session, file)
}

func (h *Handler) ToggleLanguage(c *gin.Context) {
	_, err := h.tagging.ToggleLanguage(c.Request.Context(), middleware.CurrentSession(c))
	if err != nil && !errors.Is(err, entity.ErrNothingToRender) {
		c.Error(err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}
