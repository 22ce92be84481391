package audit

import (
	"net/http"
	"strings"
)

// ActionResource holds action and resource derived from an HTTP route.
type ActionResource struct {
	Action   string
	Resource string
}

// verbActions are route suffixes that name the action instead of the HTTP method.
var verbActions = map[string]ActionResource{
	"submit":  {Action: "listing_submitted", Resource: "listing"},
	"approve": {Action: "listing_approved", Resource: "listing"},
	"reject":  {Action: "listing_rejected", Resource: "listing"},
	"role":    {Action: "role_changed", Resource: "user"},
	"verify":  {Action: "user_verified", Resource: "user"},
}

// ParseRoute returns action and resource for a method and mux path template
// (e.g. PATCH /api/listings/{id} -> update/listing).
//
// The resource is the singular of the last collection segment, ignoring the admin/ and dashboard/
// prefixes. A trailing verb segment (submit, approve, reject, role, verify) names the action;
// otherwise the method does: POST create, PUT/PATCH update, DELETE delete.
// PATCH /api/auth/profile is update/profile.
func ParseRoute(method, template string) ActionResource {
	path := strings.Trim(strings.TrimPrefix(template, "/api"), "/")
	if path == "" {
		return ActionResource{Action: "unknown", Resource: "unknown"}
	}
	segs := strings.Split(path, "/")
	if segs[0] == "admin" || segs[0] == "dashboard" {
		segs = segs[1:]
	}
	if len(segs) == 0 {
		return ActionResource{Action: methodToAction(method), Resource: "unknown"}
	}
	if segs[0] == "auth" && len(segs) > 1 {
		return ActionResource{Action: methodToAction(method), Resource: segs[len(segs)-1]}
	}
	if ar, ok := verbActions[segs[len(segs)-1]]; ok && len(segs) > 1 {
		return ar
	}
	collection := ""
	for _, s := range segs {
		if !strings.HasPrefix(s, "{") {
			collection = s
		}
	}
	resource := singular(collection)
	if collection != segs[0] {
		// Sub-collection such as listings/{id}/photos.
		resource = singular(segs[0]) + "_" + resource
	}
	return ActionResource{Action: methodToAction(method), Resource: resource}
}

func singular(s string) string {
	switch {
	case strings.HasSuffix(s, "ies"):
		return strings.TrimSuffix(s, "ies") + "y"
	case strings.HasSuffix(s, "s"):
		return strings.TrimSuffix(s, "s")
	default:
		return s
	}
}

func methodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	case http.MethodGet:
		return "get"
	default:
		return strings.ToLower(method)
	}
}
