package middleware

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/example/storefront/internal/apperr"
)

const uploadedFilesKey = "uploadedFiles"

// AcceptedImageTypes are the content types product images may have.
var AcceptedImageTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp"}

// UploadOptions configures UploadPermission.
type UploadOptions struct {
	FieldName   string
	Required    bool
	MaxFiles    int
	MaxFileSize int64
	FileTypes   []string
}

// UploadPermission checks the multipart files under FieldName before the
// handler runs and exposes them through UploadedFiles.
func UploadPermission(opts UploadOptions) fiber.Handler {
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = 1
	}
	if len(opts.FileTypes) == 0 {
		opts.FileTypes = AcceptedImageTypes
	}

	return func(c *fiber.Ctx) error {
		var files []*multipart.FileHeader

		form, err := c.MultipartForm()
		switch {
		case err == nil:
			files = form.File[opts.FieldName]
		case errors.Is(err, fasthttp.ErrNoMultipartForm):
		default:
			return apperr.BadRequest("invalid multipart form")
		}

		if len(files) > opts.MaxFiles {
			return apperr.BadRequest("at most %d file(s) may be uploaded", opts.MaxFiles).
				WithCode(apperr.CodeLimitUnexpectedFile)
		}

		for _, file := range files {
			if opts.MaxFileSize > 0 && file.Size > opts.MaxFileSize {
				return apperr.BadRequest("each file must be at most %s", humanSize(opts.MaxFileSize)).
					WithCode(apperr.CodeLimitFileSize)
			}
			if !contains(opts.FileTypes, file.Header.Get(fiber.HeaderContentType)) {
				return apperr.BadRequest("the uploaded file type is not accepted").
					WithCode(apperr.CodeInvalidFileType)
			}
		}

		if opts.Required && len(files) == 0 {
			return apperr.BadRequest("uploading at least one file is required").
				WithCode(apperr.CodeNotUploadingFile)
		}

		c.Locals(uploadedFilesKey, files)
		return c.Next()
	}
}

// UploadedFiles returns the files accepted by UploadPermission.
func UploadedFiles(c *fiber.Ctx) []*multipart.FileHeader {
	files, _ := c.Locals(uploadedFilesKey).([]*multipart.FileHeader)
	return files
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func humanSize(bytes int64) string {
	return fmt.Sprintf("%dMB", bytes>>20)
}
