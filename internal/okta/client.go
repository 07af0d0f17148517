// internal/okta/client.go
package okta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"oktaexport/internal/export"
	"oktaexport/pkg/errs"
	"oktaexport/pkg/logger"
)

// Client performs bearer-authenticated reads against the Okta API and
// flattens the responses into collections ready for the CSV writer.
// Calls are strictly sequential; any non-success response aborts the
// run (no retry, per the fail-fast policy of this job).
type Client struct {
	HTTP    *http.Client
	Log     logger.Sugared
	BaseURL string
	Token   string
}

// AllUsers lists every user in the org.
func (c *Client) AllUsers(ctx context.Context) ([]export.Collection, error) {
	items, err := c.getPaged(ctx, c.BaseURL+"/api/v1/users?limit=200")
	if err != nil {
		return nil, err
	}
	return []export.Collection{collect("users.csv", "user", items)}, nil
}

// AllGroups lists every group in the org.
func (c *Client) AllGroups(ctx context.Context) ([]export.Collection, error) {
	items, err := c.getPaged(ctx, c.BaseURL+"/api/v1/groups?limit=200")
	if err != nil {
		return nil, err
	}
	return []export.Collection{collect("groups.csv", "group", items)}, nil
}

// GroupDetail returns three collections for one group, in documented
// order: the group itself, its assigned apps, its members.
func (c *Client) GroupDetail(ctx context.Context, groupID string) ([]export.Collection, error) {
	group, err := c.getOne(ctx, c.BaseURL+"/api/v1/groups/"+groupID, "group", groupID)
	if err != nil {
		return nil, err
	}
	apps, err := c.getPaged(ctx, c.BaseURL+"/api/v1/groups/"+groupID+"/apps")
	if err != nil {
		return nil, err
	}
	users, err := c.getPaged(ctx, c.BaseURL+"/api/v1/groups/"+groupID+"/users")
	if err != nil {
		return nil, err
	}
	return []export.Collection{
		collect(fmt.Sprintf("group_detail_%s.csv", groupID), "group_detail", []map[string]any{group}),
		collect(fmt.Sprintf("group_apps_%s.csv", groupID), "group_app", apps),
		collect(fmt.Sprintf("group_users_%s.csv", groupID), "group_user", users),
	}, nil
}

// AllApps lists every application in the org.
func (c *Client) AllApps(ctx context.Context) ([]export.Collection, error) {
	items, err := c.getPaged(ctx, c.BaseURL+"/api/v1/apps")
	if err != nil {
		return nil, err
	}
	return []export.Collection{collect("apps.csv", "app", items)}, nil
}

// AppDetail returns two collections for one application: the app
// itself, then the groups it is assigned to.
func (c *Client) AppDetail(ctx context.Context, appID string) ([]export.Collection, error) {
	app, err := c.getOne(ctx, c.BaseURL+"/api/v1/apps/"+appID, "app", appID)
	if err != nil {
		return nil, err
	}
	groups, err := c.getPaged(ctx, c.BaseURL+"/api/v1/apps/"+appID+"/groups")
	if err != nil {
		return nil, err
	}
	return []export.Collection{
		collect(fmt.Sprintf("app_detail_%s.csv", appID), "app", []map[string]any{app}),
		collect(fmt.Sprintf("app_groups_%s.csv", appID), "app_group", groups),
	}, nil
}

// AllDevices lists every device. Requires okta.devices.read in the
// token's scope.
func (c *Client) AllDevices(ctx context.Context) ([]export.Collection, error) {
	items, err := c.getPaged(ctx, c.BaseURL+"/api/v1/devices?limit=200")
	if err != nil {
		return nil, err
	}
	return []export.Collection{collect("devices.csv", "device", items)}, nil
}

// DeviceDetail returns one collection with the single device.
func (c *Client) DeviceDetail(ctx context.Context, deviceID string) ([]export.Collection, error) {
	device, err := c.getOne(ctx, c.BaseURL+"/api/v1/devices/"+deviceID, "device", deviceID)
	if err != nil {
		return nil, err
	}
	return []export.Collection{
		collect(fmt.Sprintf("device_detail_%s.csv", deviceID), "device", []map[string]any{device}),
	}, nil
}

func collect(fileName, kind string, items []map[string]any) export.Collection {
	s := schemaFor(kind)
	return export.Collection{
		FileName: fileName,
		Columns:  s.Header(),
		Rows:     s.FlattenAll(items),
	}
}

// getPaged follows the Link header's rel="next" URL until exhausted,
// concatenating pages in server order.
func (c *Client) getPaged(ctx context.Context, url string) ([]map[string]any, error) {
	var all []map[string]any
	for url != "" {
		body, link, err := c.get(ctx, url)
		if err != nil {
			return nil, err
		}
		var page []map[string]any
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, &errs.APIError{System: "okta", Status: http.StatusOK, Body: "unexpected response shape: " + err.Error()}
		}
		all = append(all, page...)
		url = nextLink(link)
	}
	return all, nil
}

// getOne fetches a single resource; a 404 means the identifier does not
// exist.
func (c *Client) getOne(ctx context.Context, url, kind, id string) (map[string]any, error) {
	body, _, err := c.get(ctx, url)
	if err != nil {
		var ae *errs.APIError
		if errors.As(err, &ae) && ae.Status == http.StatusNotFound {
			return nil, &errs.NotFoundError{Kind: kind, ID: id}
		}
		return nil, err
	}
	var item map[string]any
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, &errs.APIError{System: "okta", Status: http.StatusOK, Body: "unexpected response shape: " + err.Error()}
	}
	return item, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", &errs.APIError{System: "okta", Status: 0, Body: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, "", &errs.APIError{System: "okta", Status: 0, Body: err.Error()}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	c.Log.Infow("okta request", "url", url, "status", resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, resp.Header.Get("Link"), nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, "", &errs.AuthenticationError{System: "okta", Reason: fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(body))}
	default:
		return nil, "", &errs.APIError{System: "okta", Status: resp.StatusCode, Body: truncate(body)}
	}
}

// nextLink extracts the rel="next" target from an RFC 8288 Link header.
// Returns "" when there is no next page.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start >= 0 && end > start {
			return part[start+1 : end]
		}
	}
	return ""
}
