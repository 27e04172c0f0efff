package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/me/uniportal/pkg/model"
)

// UploadResult is the server's answer to a profile image upload.
type UploadResult struct {
	Path string `json:"profile_image"`
	URL  string `json:"url,omitempty"`
}

// UploadProfileImage uploads data as the signed-in user's profile picture.
// The payload must be non-empty and look like an image.
func (c *Client) UploadProfileImage(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, &ValidationError{Field: "file", Message: "image is empty"}
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, &ValidationError{Field: "file", Message: fmt.Sprintf("not an image (%s)", contentType)}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="profile_image"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	res, err := call[UploadResult](ctx, c, model.Request{
		Method: http.MethodPost,
		Path:   PathUploadProfileImage,
		Body:   rawBody{contentType: mw.FormDataContentType(), data: buf.Bytes()},
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}
