// internal/runner/runner.go
package runner

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"oktaexport/internal/action"
	"oktaexport/internal/export"
	"oktaexport/internal/jira"
	"oktaexport/internal/okta"
	"oktaexport/pkg/config"
	"oktaexport/pkg/errs"
	"oktaexport/pkg/logger"
)

// Runner executes one export action end to end: validate, authenticate,
// fetch, write, archive, optionally upload. Strictly sequential; the
// first failure aborts everything after it.
type Runner struct {
	Cfg  config.Config
	Log  logger.Sugared
	HTTP *http.Client
}

// Run performs the full pipeline for one action descriptor.
func (r *Runner) Run(ctx context.Context, d action.Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := export.CleanDir(r.Cfg.OutputDir); err != nil {
		return err
	}

	tp := &okta.TokenProvider{
		HTTP:     r.HTTP,
		Domain:   r.Cfg.OktaDomain,
		ClientID: r.Cfg.OktaClientID,
		KeyPEM:   r.Cfg.OktaKeyPEM,
		Scope:    r.Cfg.OktaScope,
	}
	token, err := tp.Fetch(ctx)
	if err != nil {
		return err
	}
	r.Log.Infow("access token obtained", "action", d.Action)

	client := &okta.Client{HTTP: r.HTTP, Log: r.Log, BaseURL: r.Cfg.OktaDomain, Token: token}
	collections, err := fetch(ctx, client, d)
	if err != nil {
		return err
	}

	for _, c := range collections {
		if err := export.WriteCSV(r.Log, r.Cfg.OutputDir, c); err != nil {
			return err
		}
	}
	if err := export.Archive(r.Log, r.Cfg.OutputDir, r.Cfg.ArchivePath); err != nil {
		return err
	}

	if r.Cfg.JiraIssueKey == "" {
		r.Log.Infow("no issue key configured, archive left on disk", "path", r.Cfg.ArchivePath)
		return nil
	}
	jc := &jira.Client{
		HTTP:      r.HTTP,
		Log:       r.Log,
		BaseURL:   jiraBaseURL(r.Cfg.JiraDomain),
		UserEmail: r.Cfg.JiraUserEmail,
		APIToken:  r.Cfg.JiraAPIToken,
	}
	if err := jc.Attach(ctx, r.Cfg.JiraIssueKey, r.Cfg.ArchivePath); err != nil {
		return err
	}
	r.Log.Infow("archive attached", "issue", r.Cfg.JiraIssueKey, "path", r.Cfg.ArchivePath)
	return nil
}

// fetch invokes exactly the resource operations documented for the
// action, in their documented order.
func fetch(ctx context.Context, c *okta.Client, d action.Descriptor) ([]export.Collection, error) {
	switch d.Action {
	case action.AllUsers:
		return c.AllUsers(ctx)
	case action.AllGroups:
		return c.AllGroups(ctx)
	case action.DetailGroups:
		return c.GroupDetail(ctx, d.GroupID)
	case action.AllApps:
		return c.AllApps(ctx)
	case action.DetailApp:
		return c.AppDetail(ctx, d.AppID)
	case action.AllDevices:
		return c.AllDevices(ctx)
	case action.DetailDevice:
		return c.DeviceDetail(ctx, d.DeviceID)
	default:
		// Unreachable after Validate; kept so the switch stays total.
		return nil, &errs.InvalidActionError{Reason: fmt.Sprintf("unsupported action %q", d.Action)}
	}
}

// jiraBaseURL accepts either a bare site host (production config) or a
// full URL (tests pointing at a local server).
func jiraBaseURL(domain string) string {
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return strings.TrimRight(domain, "/")
	}
	return "https://" + domain
}
