package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ds124wfegd/autotagger/internal/database"
	"github.com/ds124wfegd/autotagger/internal/entity"
	"github.com/ds124wfegd/autotagger/internal/pkg/kafka"
	"github.com/ds124wfegd/autotagger/internal/pkg/normalizer"
	"github.com/ds124wfegd/autotagger/internal/pkg/storage"
	"github.com/ds124wfegd/autotagger/internal/service"
	"github.com/ds124wfegd/autotagger/internal/transport/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "tagger_session"

type stubClient struct {
	calls int32
	err   error
}

func (s *stubClient) FetchTags(_ context.Context, _ entity.EncodedPayload) (*entity.TagResult, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return &entity.TagResult{
		EngTags: entity.TagSet{{Key: "Title", Value: "Blue Shirt"}, {Key: "Color", Value: "Blue"}},
		ArTags:  entity.TagSet{{Key: "Title", Value: "قميص أزرق"}, {Key: "Color", Value: "أزرق"}},
	}, nil
}

func newTestRouter(t *testing.T, client *stubClient, maxBytes int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := service.NewService(
		normalizer.NewNormalizer(normalizer.DefaultWidth, normalizer.DefaultQuality, normalizer.DefaultMaxPixels),
		client,
		database.NewMemoryTagCache(),
		database.NewSessionRepository(),
		kafka.NewLogProducer(),
	)
	sessionOpts := middleware.SessionOptions{CookieName: cookieName, TTL: time.Hour}
	assets := &storage.Assets{
		Logo: storage.Asset{Name: "logo.png", ContentType: "image/png", Data: []byte("png")},
		Icon: storage.Asset{Name: "logo_icon.ico", ContentType: "image/x-icon", Data: []byte("ico")},
	}

	return InitRoutes(NewHandler(svc, maxBytes), middleware.Session(svc.SessionService, sessionOpts), assets, 5*time.Second)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: 90, B: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, target, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func do(router *gin.Engine, req *http.Request, cookie *http.Cookie) *httptest.ResponseRecorder {
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", cookieName)
	return nil
}

func TestIndexCreatesSession(t *testing.T) {
	router := newTestRouter(t, &stubClient{}, 1<<20)

	rec := do(router, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Auto Tag Your Fashion Catalog")
	assert.Contains(t, rec.Body.String(), "العربية")
	assert.Contains(t, rec.Body.String(), `lang="en"`)

	cookie := sessionCookie(t, rec)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	again := do(router, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	assert.Empty(t, again.Result().Cookies(), "known session must not be reissued")
}

func TestIndexNegotiatesArabic(t *testing.T) {
	router := newTestRouter(t, &stubClient{}, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "ar-SA,ar;q=0.9")
	rec := do(router, req, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `lang="ar"`)
	assert.Contains(t, rec.Body.String(), "English")
}

func TestUploadAndToggleLanguage(t *testing.T) {
	client := &stubClient{}
	router := newTestRouter(t, client, 1<<20)

	first := do(router, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	cookie := sessionCookie(t, first)

	rec := do(router, uploadRequest(t, "/autotagging/upload", "shirt.PNG", pngBytes(t, 1200, 800)), cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Blue Shirt")
	assert.Contains(t, body, "data:image/jpeg;base64,")
	assert.Contains(t, body, `width="600" height="400"`)
	assert.Contains(t, body, "Tags:")
	assert.Equal(t, 1, strings.Count(body, "Blue Shirt"), "title must be rendered once")

	toggle := do(router, httptest.NewRequest(http.MethodPost, "/autotagging/language", nil), cookie)
	assert.Equal(t, http.StatusSeeOther, toggle.Code)
	assert.Equal(t, "/", toggle.Header().Get("Location"))

	page := do(router, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "قميص أزرق")
	assert.Contains(t, page.Body.String(), `dir="rtl"`)
	assert.Contains(t, page.Body.String(), "الوسوم:")
	assert.NotContains(t, page.Body.String(), "Blue Shirt")

	assert.Equal(t, int32(1), atomic.LoadInt32(&client.calls))
}

// TestUploadErrors checks every failure renders inline with the right status
func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name     string
		client   *stubClient
		filename string
		data     []byte
		status   int
		message  string
	}{
		{name: "no file", client: &stubClient{}, status: http.StatusBadRequest, message: "no image file provided"},
		{name: "gif extension", client: &stubClient{}, filename: "a.gif", data: []byte("GIF89a"), status: http.StatusBadRequest, message: "invalid image type"},
		{name: "corrupt png", client: &stubClient{}, filename: "a.png", data: []byte("garbage"), status: http.StatusUnprocessableEntity, message: "cannot decode image"},
		{
			name:     "service error",
			client:   &stubClient{err: &entity.ServiceError{StatusCode: 500}},
			filename: "a.jpg",
			status:   http.StatusBadGateway,
			message:  "error in API response",
		},
		{
			name:     "transport error",
			client:   &stubClient{err: &entity.TransportError{Err: context.DeadlineExceeded}},
			filename: "a.jpeg",
			status:   http.StatusGatewayTimeout,
			message:  "request failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.data
			if data == nil && tt.filename != "" {
				data = pngBytes(t, 64, 64)
			}
			router := newTestRouter(t, tt.client, 1<<20)

			rec := do(router, uploadRequest(t, "/autotagging/upload", tt.filename, data), nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
			assert.Contains(t, rec.Body.String(), `class="error"`)
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	router := newTestRouter(t, &stubClient{}, 512)

	rec := do(router, uploadRequest(t, "/autotagging/upload", "big.png", bytes.Repeat([]byte{0x89}, 4096)), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "too large")
}

func TestSelectProject(t *testing.T) {
	router := newTestRouter(t, &stubClient{}, 1<<20)
	cookie := sessionCookie(t, do(router, httptest.NewRequest(http.MethodGet, "/", nil), nil))

	rec := do(router, httptest.NewRequest(http.MethodPost, "/projects/similarity", nil), cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	page := do(router, httptest.NewRequest(http.MethodGet, "/", nil), cookie)
	assert.Contains(t, page.Body.String(), "Similar Items Recommender")
	assert.Contains(t, page.Body.String(), "Coming soon.")
	assert.NotContains(t, page.Body.String(), `name="image"`)

	unknown := do(router, httptest.NewRequest(http.MethodPost, "/projects/recommendations", nil), cookie)
	assert.Equal(t, http.StatusNotFound, unknown.Code)
}

func TestTagsAPI(t *testing.T) {
	client := &stubClient{}
	router := newTestRouter(t, client, 1<<20)
	upload := pngBytes(t, 800, 600)

	rec := do(router, uploadRequest(t, "/api/v1/tags?lang=ar", "shirt.png", upload), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tagsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "قميص أزرق", resp.Presentation.Title)
	assert.Equal(t, entity.DirectionRTL, resp.Presentation.Direction)
	assert.Equal(t, 600, resp.Width)
	assert.Equal(t, 450, resp.Height)
	assert.False(t, resp.Cached)

	rec = do(router, uploadRequest(t, "/api/v1/tags?lang=EN", "shirt.png", upload), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Blue Shirt", resp.Presentation.Title)
	assert.True(t, resp.Cached)
	assert.Equal(t, int32(1), atomic.LoadInt32(&client.calls))

	bad := do(router, uploadRequest(t, "/api/v1/tags?lang=fr", "shirt.png", upload), nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
	assert.Contains(t, bad.Body.String(), "unknown display language")
}

func TestAssetsAndHealth(t *testing.T) {
	router := newTestRouter(t, &stubClient{}, 1<<20)

	logo := do(router, httptest.NewRequest(http.MethodGet, "/assets/logo.png", nil), nil)
	assert.Equal(t, http.StatusOK, logo.Code)
	assert.Equal(t, "image/png", logo.Header().Get("Content-Type"))
	assert.Equal(t, "png", logo.Body.String())

	icon := do(router, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil), nil)
	assert.Equal(t, http.StatusOK, icon.Code)
	assert.Equal(t, "ico", icon.Body.String())

	health := do(router, httptest.NewRequest(http.MethodGet, "/health", nil), nil)
	assert.Equal(t, http.StatusOK, health.Code)
	assert.JSONEq(t, `{"status":"ok","service":"autotagger"}`, health.Body.String())
}
