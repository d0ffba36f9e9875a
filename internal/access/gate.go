package access

import "errors"

// Пути посадочных страниц.
const (
	PathHome              = "/"
	PathLogin             = "/login/"
	PathAdminDashboard    = "/admins/dashboard/"
	PathProviderDashboard = "/provider/dashboard/"
)

// Отказы шлюза. Веб-слой превращает их в flash-сообщения.
var (
	ErrLoginRequired   = errors.New("access: login required")
	ErrStaffOnly       = errors.New("access: staff only")
	ErrNotProvider     = errors.New("access: not a service provider")
	ErrPendingApproval = errors.New("access: provider pending approval")
)

// LandingPath: куда отправить пользователя после входа или с /login/.
func LandingPath(id Identity) string {
	switch {
	case id.IsStaff():
		return PathAdminDashboard
	case id.IsProvider():
		return PathProviderDashboard
	default:
		return PathHome
	}
}

func CheckAuthenticated(id Identity) error {
	if id.Anonymous() {
		return ErrLoginRequired
	}
	return nil
}

// CheckAdminDashboard пускает только персонал.
func CheckAdminDashboard(id Identity) error {
	if err := CheckAuthenticated(id); err != nil {
		return err
	}
	if !id.IsStaff() {
		return ErrStaffOnly
	}
	return nil
}

// CheckProviderDashboard пускает только подтверждённого провайдера.
// Персонал провайдером не считается, даже если у него есть запись провайдера.
func CheckProviderDashboard(id Identity) error {
	if err := CheckAuthenticated(id); err != nil {
		return err
	}
	switch {
	case id.IsProvider():
		return nil
	case id.PendingApproval():
		return ErrPendingApproval
	default:
		return ErrNotProvider
	}
}
