// internal/action/action.go
package action

import (
	"encoding/json"
	"fmt"

	"oktaexport/pkg/errs"
)

// Kind is the closed set of supported export actions.
type Kind string

const (
	AllUsers     Kind = "all_users"
	AllGroups    Kind = "all_groups"
	DetailGroups Kind = "detail_groups"
	AllApps      Kind = "all_apps"
	DetailApp    Kind = "detail_app"
	AllDevices   Kind = "all_devices"
	DetailDevice Kind = "detail_device"
)

// Descriptor is the parsed invocation input. Exactly one identifier is
// meaningful per detail action; the rest stay empty.
type Descriptor struct {
	Action   Kind   `json:"action"`
	GroupID  string `json:"group_id"`
	AppID    string `json:"app_id"`
	DeviceID string `json:"device_id"`
}

// required maps each detail action to the descriptor field it needs.
var required = map[Kind]struct {
	field string
	get   func(Descriptor) string
}{
	DetailGroups: {"group_id", func(d Descriptor) string { return d.GroupID }},
	DetailApp:    {"app_id", func(d Descriptor) string { return d.AppID }},
	DetailDevice: {"device_id", func(d Descriptor) string { return d.DeviceID }},
}

var known = map[Kind]bool{
	AllUsers: true, AllGroups: true, DetailGroups: true,
	AllApps: true, DetailApp: true,
	AllDevices: true, DetailDevice: true,
}

// Parse decodes and validates an action descriptor. It fails with
// InvalidActionError before any network activity: unknown action, empty
// action, or an empty required identifier all reject the run here.
func Parse(raw []byte) (Descriptor, error) {
	var d Descriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return Descriptor{}, &errs.InvalidActionError{Reason: fmt.Sprintf("malformed descriptor: %v", err)}
	}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// Validate checks the action is known and its required identifier is set.
func (d Descriptor) Validate() error {
	if d.Action == "" {
		return &errs.InvalidActionError{Reason: "missing 'action' field"}
	}
	if !known[d.Action] {
		return &errs.InvalidActionError{Reason: fmt.Sprintf("unsupported action %q", d.Action)}
	}
	if req, ok := required[d.Action]; ok && req.get(d) == "" {
		return &errs.InvalidActionError{Reason: fmt.Sprintf("action %q requires a non-empty %s", d.Action, req.field)}
	}
	return nil
}
