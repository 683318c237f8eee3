package auth

import (
	"fmt"
	"strings"

	"crewshift/internal/domain/apperr"
)

// Role is the closed set of caller roles.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleManager
	RoleWorker
	RoleClient
)

var roleNames = map[Role]string{
	RoleManager: "MANAGER",
	RoleWorker:  "WORKER",
	RoleClient:  "CLIENT",
}

func ParseRole(value string) (Role, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "MANAGER":
		return RoleManager, nil
	case "WORKER":
		return RoleWorker, nil
	case "CLIENT":
		return RoleClient, nil
	}
	return RoleUnknown, fmt.Errorf("unknown role %q", value)
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", r)
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Identity is the authenticated caller as seen by every service operation.
type Identity struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Authorize gates an operation on the caller's role. A nil caller is
// unauthenticated; a caller outside allowed is forbidden.
func Authorize(caller *Identity, allowed ...Role) (Identity, error) {
	if caller == nil || caller.ID == "" {
		return Identity{}, apperr.New(apperr.KindUnauthenticated, "auth.Authorize", "authentication required")
	}
	for _, role := range allowed {
		if caller.Role == role {
			return *caller, nil
		}
	}
	return Identity{}, apperr.Newf(apperr.KindForbidden, "auth.Authorize", "role %s is not permitted", caller.Role)
}

// ErrForbiddenRole is the default branch of per-role visibility switches.
func ErrForbiddenRole(op string) error {
	return apperr.New(apperr.KindForbidden, op, "role is not permitted")
}
