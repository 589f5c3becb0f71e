package middleware

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/apperr"
)

type uploadFile struct {
	name        string
	contentType string
	size        int
}

func newUploadApp(opts UploadOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := apperr.As(err); ok {
				return c.Status(appErr.Status()).SendString(appErr.Code)
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Post("/", UploadPermission(opts), func(c *fiber.Ctx) error {
		names := make([]string, 0)
		for _, file := range UploadedFiles(c) {
			names = append(names, file.Filename)
		}
		return c.SendString(strings.Join(names, ","))
	})
	return app
}

func uploadRequest(t *testing.T, field string, files ...uploadFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("name", "value"))
	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+f.name+`"`)
		header.Set("Content-Type", f.contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(bytes.Repeat([]byte("x"), f.size))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	return req
}

func TestUploadPermission(t *testing.T) {
	opts := UploadOptions{FieldName: "image", Required: true, MaxFiles: 1, MaxFileSize: 1024}
	png := uploadFile{name: "cover.png", contentType: "image/png", size: 10}

	tests := []struct {
		name     string
		opts     UploadOptions
		req      func(t *testing.T) *http.Request
		wantCode int
		wantBody string
	}{
		{
			name:     "accepted",
			opts:     opts,
			req:      func(t *testing.T) *http.Request { return uploadRequest(t, "image", png) },
			wantCode: http.StatusOK,
			wantBody: "cover.png",
		},
		{
			name:     "missing required file",
			opts:     opts,
			req:      func(t *testing.T) *http.Request { return uploadRequest(t, "image") },
			wantCode: http.StatusBadRequest,
			wantBody: apperr.CodeNotUploadingFile,
		},
		{
			name: "missing required file without multipart body",
			opts: opts,
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
				req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
				return req
			},
			wantCode: http.StatusBadRequest,
			wantBody: apperr.CodeNotUploadingFile,
		},
		{
			name:     "optional file absent",
			opts:     UploadOptions{FieldName: "image", MaxFiles: 1},
			req:      func(t *testing.T) *http.Request { return uploadRequest(t, "image") },
			wantCode: http.StatusOK,
			wantBody: "",
		},
		{
			name:     "too many files",
			opts:     opts,
			req:      func(t *testing.T) *http.Request { return uploadRequest(t, "image", png, png) },
			wantCode: http.StatusBadRequest,
			wantBody: apperr.CodeLimitUnexpectedFile,
		},
		{
			name: "file too large",
			opts: opts,
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "image", uploadFile{name: "big.png", contentType: "image/png", size: 2048})
			},
			wantCode: http.StatusBadRequest,
			wantBody: apperr.CodeLimitFileSize,
		},
		{
			name: "wrong type",
			opts: opts,
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "image", uploadFile{name: "doc.pdf", contentType: "application/pdf", size: 10})
			},
			wantCode: http.StatusBadRequest,
			wantBody: apperr.CodeInvalidFileType,
		},
		{
			name:     "other field ignored",
			opts:     opts,
			req:      func(t *testing.T) *http.Request { return uploadRequest(t, "avatar", png) },
			wantCode: http.StatusBadRequest,
			wantBody: apperr.CodeNotUploadingFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newUploadApp(tt.opts)
			resp, err := app.Test(tt.req(t), -1)
			require.NoError(t, err)

			body := new(bytes.Buffer)
			_, _ = body.ReadFrom(resp.Body)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			assert.Equal(t, tt.wantBody, body.String())
		})
	}
}
