package domain

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDispatcher Role = "dispatcher"
	RoleCustomer   Role = "customer"
	RoleGuest      Role = "guest"
)

// Actor is the authenticated (or guest) principal a request acts as. The API
// layer builds it from JWT claims; guests carry only a booking access token.
type Actor struct {
	Role       Role
	UserID     uint // staff user id, when Role is admin/dispatcher
	CustomerID uint // owned customer id, when Role is customer
	CompanyID  uint // zero for guests
	// AccessToken is the booking access token presented by a guest caller.
	AccessToken string
}

// IsStaff reports whether the actor may act on any booking in its company.
func (a Actor) IsStaff() bool {
	return a.Role == RoleAdmin || a.Role == RoleDispatcher
}

// IsCustomer reports whether the actor is an authenticated customer.
func (a Actor) IsCustomer() bool {
	return a.Role == RoleCustomer
}

// IsGuest reports whether the actor carries no authenticated identity.
func (a Actor) IsGuest() bool {
	return a.Role == RoleGuest || a.Role == ""
}
