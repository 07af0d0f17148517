// internal/jira/attachment.go
package jira

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"oktaexport/pkg/errs"
	"oktaexport/pkg/logger"
)

// Client attaches files to Jira issues with basic auth (account email +
// API token). It performs no other mutation against Jira.
type Client struct {
	HTTP      *http.Client
	Log       logger.Sugared
	BaseURL   string // e.g. https://example.atlassian.net
	UserEmail string
	APIToken  string
}

// Attach uploads the file at path as a binary attachment on the issue.
// The X-Atlassian-Token header disables XSRF checking, which Jira
// requires for multipart attachment uploads.
func (c *Client) Attach(ctx context.Context, issueKey, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &errs.IOError{Op: "upload", Path: path, Err: err}
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return &errs.IOError{Op: "upload", Path: path, Err: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return &errs.IOError{Op: "upload", Path: path, Err: err}
	}
	if err := mw.Close(); err != nil {
		return &errs.IOError{Op: "upload", Path: path, Err: err}
	}

	url := fmt.Sprintf("%s/rest/api/3/issue/%s/attachments", c.BaseURL, issueKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return &errs.APIError{System: "jira", Status: 0, Body: err.Error()}
	}
	req.SetBasicAuth(c.UserEmail, c.APIToken)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Atlassian-Token", "no-check")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &errs.APIError{System: "jira", Status: 0, Body: err.Error()}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	c.Log.Infow("jira attachment upload", "issue", issueKey, "status", resp.StatusCode)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusNotFound:
		return &errs.NotFoundError{Kind: "issue", ID: issueKey}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &errs.AuthenticationError{System: "jira", Reason: fmt.Sprintf("status %d: %s", resp.StatusCode, excerpt(body))}
	default:
		return &errs.APIError{System: "jira", Status: resp.StatusCode, Body: excerpt(body)}
	}
}

func excerpt(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
