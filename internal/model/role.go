package model

// Role фиксирует, кем пользователь вошёл в систему. Определяется один раз
// при логине и хранится в сессии.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleStaff    Role = "staff"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleStaff:
		return true
	default:
		return false
	}
}
