package auth

import (
	"errors"
	"strings"
)

// Role labels as stored on user profiles.
const (
	RoleUser       = "Usuário"
	RoleAdmin      = "Administrador"
	RoleSuperAdmin = "superAdm"
)

var (
	ErrNameRequired = errors.New("Nome é obrigatório")
	ErrInvalidRole  = errors.New("Role inválido")
)

// Identity is the authenticated caller with its profile.
type Identity struct {
	UserID     string
	Email      string
	Name       string
	Company    string
	Area       string
	Role       string
	Authorized bool
}

// Option is one entry of a profile dropdown.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Companies a user may belong to.
var Companies = []Option{
	{ID: "trivia_trens", Label: "Trivia Trens"},
	{ID: "tic_trens", Label: "Tic Trens"},
	{ID: "metro_bh", Label: "Metrô BH"},
}

// Areas a user may work in.
var Areas = []Option{
	{ID: "restabelecimento", Label: "Restabelecimento"},
	{ID: "energia", Label: "Energia"},
	{ID: "telecom_sinalizacao", Label: "Telecom/Sinalização"},
	{ID: "engenharia", Label: "Engenharia"},
	{ID: "civil_vp", Label: "Civil/VP"},
	{ID: "oficinas", Label: "Oficinas"},
	{ID: "mro", Label: "MRO"},
}

// ResolveRole returns the stored role, or a fallback derived from the
// authorization flag when the profile has none.
func ResolveRole(stored string, authorized bool) string {
	if role := strings.TrimSpace(stored); role != "" {
		return role
	}
	if authorized {
		return "admin"
	}
	return "user"
}

// DisplayName returns the profile name, the local part of the email, or a
// generic label.
func DisplayName(name, email string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	if local, _, _ := strings.Cut(strings.TrimSpace(email), "@"); local != "" {
		return local
	}
	return RoleUser
}

func normalize(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}

// IsSuperAdmin reports whether role is the super administrator.
func IsSuperAdmin(role string) bool {
	return normalize(role) == "superadm"
}

// IsAdminLike reports whether role is an administrator below super admin.
func IsAdminLike(role string) bool {
	switch normalize(role) {
	case "admin", "administrador":
		return true
	}
	return false
}

// CanAdminister reports whether role may reach the admin routes.
func CanAdminister(role string) bool {
	return IsAdminLike(role) || IsSuperAdmin(role)
}

// Scope narrows what an administrator sees of the user base.
type Scope struct {
	Company string
	Area    string
	Limited bool
}

// ScopeFor returns the user listing scope of the caller. Admins are limited
// to their own company and area; super admins see everyone.
func ScopeFor(caller Identity) Scope {
	if !IsAdminLike(caller.Role) {
		return Scope{}
	}
	return Scope{
		Company: strings.TrimSpace(caller.Company),
		Area:    strings.TrimSpace(caller.Area),
		Limited: true,
	}
}

// Visible reports whether a user with the given profile fields is visible
// within the scope. Limited scopes never see super admins.
func (s Scope) Visible(role, company, area string) bool {
	if !s.Limited {
		return true
	}
	if IsSuperAdmin(role) {
		return false
	}
	if s.Company != "" && !strings.EqualFold(strings.TrimSpace(company), s.Company) {
		return false
	}
	if s.Area != "" && !strings.EqualFold(strings.TrimSpace(area), s.Area) {
		return false
	}
	return true
}

// UserEdit is a requested profile change.
type UserEdit struct {
	Name    string `json:"nome"`
	Company string `json:"empresa"`
	Area    string `json:"area"`
	Role    string `json:"role"`
}

// EditPlan is the subset of an edit the caller may apply. Nil fields stay
// unchanged.
type EditPlan struct {
	Name    string
	Company *string
	Area    *string
	Role    *string
}

// PlanEdit applies the editing rules: only super admins change company and
// area; admins may assign user or admin roles and super admins any role.
func PlanEdit(callerRole string, e UserEdit) (EditPlan, error) {
	plan := EditPlan{Name: strings.TrimSpace(e.Name)}
	if plan.Name == "" {
		return EditPlan{}, ErrNameRequired
	}

	super := IsSuperAdmin(callerRole)
	if super {
		if company := strings.TrimSpace(e.Company); company != "" {
			plan.Company = &company
		}
		if area := strings.TrimSpace(e.Area); area != "" {
			plan.Area = &area
		}
	}

	role := strings.TrimSpace(e.Role)
	if role == "" || !CanAdminister(callerRole) {
		return plan, nil
	}
	switch role {
	case RoleUser, RoleAdmin:
	case RoleSuperAdmin:
		if !super {
			return EditPlan{}, ErrInvalidRole
		}
	default:
		return EditPlan{}, ErrInvalidRole
	}
	plan.Role = &role
	return plan, nil
}
