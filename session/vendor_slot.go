package session

import (
	"context"
	"encoding/json"
	"log/slog"
)

// The vendor slot is a second, independent copy of a vendor's
// credentials with an absolute age cutoff. It survives a ClearAuth of
// the main session, so a vendor who signs out of the customer surface
// can still be restored into the vendor app without re-entering
// credentials.

// SaveVendorLogin writes the vendor slot. Non-vendor profiles are
// refused; the slot exists only for the persistent-session role.
func (s *Store) SaveVendorLogin(ctx context.Context, token string, user *Profile) {
	if token == "" || user == nil || user.UserType != s.persistentRole {
		s.logger.Warn("vendor slot write refused",
			slog.Bool("has_token", token != ""),
			slog.Bool("has_user", user != nil),
		)
		return
	}

	encoded, err := json.Marshal(user)
	if err != nil {
		s.logger.Warn("vendor profile not serializable", slog.String("error", err.Error()))
		return
	}

	s.write(ctx, s.keys.VendorToken, token)
	s.write(ctx, s.keys.VendorUser, string(encoded))
	s.write(ctx, s.keys.VendorTime, formatMillis(s.clock()))
}

// VendorAuth returns the slot contents if present and younger than the
// configured cutoff. An aged-out slot is cleared on the spot.
func (s *Store) VendorAuth(ctx context.Context) (string, *Profile, bool) {
	token, ok := s.read(ctx, s.keys.VendorToken)
	if !ok || token == "" {
		return "", nil, false
	}
	userValue, ok := s.read(ctx, s.keys.VendorUser)
	if !ok {
		return "", nil, false
	}
	timeValue, ok := s.read(ctx, s.keys.VendorTime)
	if !ok {
		return "", nil, false
	}

	savedAt, err := parseMillis(timeValue)
	if err != nil {
		s.logger.Warn("vendor slot timestamp corrupted", slog.String("value", timeValue))
		return "", nil, false
	}
	if s.clock().Sub(savedAt) > s.vendorMaxAge {
		s.ClearVendorAuth(ctx)
		return "", nil, false
	}

	var user Profile
	if err := json.Unmarshal([]byte(userValue), &user); err != nil {
		s.logger.Warn("vendor slot profile corrupted", slog.String("error", err.Error()))
		return "", nil, false
	}

	return token, &user, true
}

// ClearVendorAuth removes the vendor slot. Idempotent.
func (s *Store) ClearVendorAuth(ctx context.Context) {
	s.remove(ctx, s.keys.VendorToken)
	s.remove(ctx, s.keys.VendorUser)
	s.remove(ctx, s.keys.VendorTime)
}

// IsVendorLoggedIn reports whether the vendor slot holds a live vendor
// credential pair.
func (s *Store) IsVendorLoggedIn(ctx context.Context) bool {
	_, user, ok := s.VendorAuth(ctx)
	return ok && user.UserType == s.persistentRole
}
