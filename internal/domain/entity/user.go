package entity

// GuestNamespace is the fallback-store namespace used while unauthenticated.
const GuestNamespace = "guest"

// Profile is the authenticated user's normalized profile. The backend returns
// it in several envelope and field-name variants; the gateway normalizes into
// this shape, substituting empty strings for missing optional fields.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Admin  bool   `json:"is_admin,omitempty"`
}

// Namespace returns the fallback-store namespace for this profile.
func (p *Profile) Namespace() string {
	if p == nil || p.ID == "" {
		return GuestNamespace
	}

	return p.ID
}

// Session is a bearer token plus the profile it authenticates, persisted across
// restarts through the fallback store.
type Session struct {
	Token   string   `json:"token"`
	Profile *Profile `json:"user,omitempty"`
}
