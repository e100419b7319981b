package http

import (
	"io"
	"strings"

	in "hire_server/core/port/in"
	"hire_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

const maxUploadSize = 10 << 20 // 10 MiB

// formFile reads an optional multipart file field into memory. Returns
// nil when the field is absent.
func formFile(c *fiber.Ctx, field string) (*in.FileUpload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		// Fiber returns an error for a missing field; treat it as no file.
		return nil, nil
	}
	if header.Size > maxUploadSize {
		return nil, apperr.ValidationFailed("file exceeds the 10MB limit")
	}

	f, err := header.Open()
	if err != nil {
		return nil, apperr.BadRequest("could not read uploaded file")
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxUploadSize+1))
	if err != nil {
		return nil, apperr.BadRequest("could not read uploaded file")
	}
	if int64(len(content)) > maxUploadSize {
		return nil, apperr.ValidationFailed("file exceeds the 10MB limit")
	}

	return &in.FileUpload{Filename: header.Filename, Content: content}, nil
}

// formValue returns a trimmed multipart form value and whether the field
// was present.
func formValue(c *fiber.Ctx, field string) (string, bool) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return "", false
	}
	values, ok := form.Value[field]
	if !ok || len(values) == 0 {
		return "", false
	}
	return strings.TrimSpace(values[0]), true
}

// splitCommaList splits a comma-separated field into trimmed parts.
func splitCommaList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBody(c *fiber.Ctx, dest interface{}) error {
	if err := c.BodyParser(dest); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	return nil
}
