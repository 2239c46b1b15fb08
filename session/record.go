package session

import (
	"encoding/json"
	"time"
)

// Profile is the persisted user record. The storefront backend attaches
// arbitrary fields to its user payloads; the envelope types the two
// fields the client actually branches on (user_type and
// available_roles) and round-trips everything else untouched in Extra.
type Profile struct {
	UserType       string
	AvailableRoles []string
	Username       string

	// Extra holds every profile field the envelope does not model.
	Extra map[string]json.RawMessage
}

// HasRole reports whether role is listed in the profile's available
// roles.
func (p *Profile) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.AvailableRoles {
		if r == role {
			return true
		}
	}
	return false
}

// MarshalJSON flattens the envelope back into the original wire shape.
func (p Profile) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(p.Extra)+3)
	for k, v := range p.Extra {
		out[k] = v
	}

	userType, err := json.Marshal(p.UserType)
	if err != nil {
		return nil, err
	}
	out["user_type"] = userType

	if p.AvailableRoles != nil {
		roles, err := json.Marshal(p.AvailableRoles)
		if err != nil {
			return nil, err
		}
		out["available_roles"] = roles
	}

	if p.Username != "" {
		username, err := json.Marshal(p.Username)
		if err != nil {
			return nil, err
		}
		out["username"] = username
	}

	return json.Marshal(out)
}

// UnmarshalJSON lifts user_type, available_roles and username out of
// the payload and keeps the remaining fields in Extra.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = Profile{}

	if v, ok := raw["user_type"]; ok {
		if err := json.Unmarshal(v, &p.UserType); err != nil {
			return err
		}
		delete(raw, "user_type")
	}
	if v, ok := raw["available_roles"]; ok {
		if err := json.Unmarshal(v, &p.AvailableRoles); err != nil {
			return err
		}
		delete(raw, "available_roles")
	}
	if v, ok := raw["username"]; ok {
		if err := json.Unmarshal(v, &p.Username); err != nil {
			return err
		}
		delete(raw, "username")
	}

	if len(raw) > 0 {
		p.Extra = raw
	}
	return nil
}

// Record is the authenticated session as held in memory: the
// token/user pair plus the last confirmed liveness instant. Token and
// user are set and cleared together; a record missing either half is
// not authenticated.
type Record struct {
	Token        string
	User         *Profile
	LastActivity time.Time
}

// Authenticated reports whether the record carries both halves of the
// credential pair.
func (r *Record) Authenticated() bool {
	return r != nil && r.Token != "" && r.User != nil
}
