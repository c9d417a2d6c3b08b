package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"libris/internal/domain/entity"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// The backend nests profile payloads and names fields inconsistently across
// endpoints. Normalization is table-driven: candidate paths are probed in
// order, and each canonical field coalesces over its known aliases. Missing
// optional fields degrade to empty values; this never fails.
var (
	profilePaths = [][]string{
		nil,
		{"data"},
		{"data", "user"},
		{"data", "profile"},
		{"user"},
		{"profile"},
	}

	idAliases     = []string{"id", "user_id", "uid"}
	nameAliases   = []string{"name", "full_name", "username"}
	phoneAliases  = []string{"phone", "phone_number"}
	avatarAliases = []string{"avatar", "avatar_url", "photo"}
	adminFlags    = []string{"is_admin", "isAdmin", "admin"}
)

var titleCaser = cases.Title(language.Und)

// NormalizeProfile extracts a canonical profile from any of the backend's
// profile response shapes. It is idempotent: feeding it a marshalled
// entity.Profile yields the same profile back.
func NormalizeProfile(raw json.RawMessage) entity.Profile {
	var root map[string]any
	if err := json.Unmarshal(raw, &root); err != nil {
		return entity.Profile{}
	}

	obj := pickProfileObject(root)
	if obj == nil {
		return entity.Profile{}
	}

	return entity.Profile{
		ID:     coalesceString(obj, idAliases),
		Name:   titleCaser.String(coalesceString(obj, nameAliases)),
		Email:  coalesceString(obj, []string{"email"}),
		Phone:  coalesceString(obj, phoneAliases),
		Avatar: coalesceString(obj, avatarAliases),
		Admin:  deriveAdmin(obj),
	}
}

// pickProfileObject walks the candidate paths and returns the first object
// that looks profile-shaped (carries an id or a name under any alias).
func pickProfileObject(root map[string]any) map[string]any {
	for _, path := range profilePaths {
		obj := root
		ok := true
		for _, segment := range path {
			child, isMap := obj[segment].(map[string]any)
			if !isMap {
				ok = false

				break
			}
			obj = child
		}
		if !ok {
			continue
		}

		if coalesceString(obj, idAliases) != "" || coalesceString(obj, nameAliases) != "" {
			return obj
		}
	}

	return nil
}

// coalesceString returns the first non-empty alias value, stringifying
// numeric identifiers.
func coalesceString(obj map[string]any, aliases []string) string {
	for _, alias := range aliases {
		switch v := obj[alias].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			if v == float64(int64(v)) {
				return fmt.Sprintf("%d", int64(v))
			}

			return fmt.Sprintf("%v", v)
		}
	}

	return ""
}

// deriveAdmin reads either an explicit role string or a boolean admin flag.
func deriveAdmin(obj map[string]any) bool {
	if role, ok := obj["role"].(string); ok {
		switch strings.ToLower(role) {
		case "admin", "superadmin":
			return true
		}
	}

	for _, flag := range adminFlags {
		if v, ok := obj[flag].(bool); ok && v {
			return true
		}
	}

	return false
}
