package apiclient

import (
	"context"
	"net/http"

	"github.com/me/uniportal/pkg/model"
)

// Notices returns the notices visible to the signed-in user.
func (c *Client) Notices(ctx context.Context) ([]model.Notice, error) {
	return callList[model.Notice](ctx, c, model.Request{Method: http.MethodGet, Path: PathNotices})
}
