package enums

// Role is the platform role carried in an access token. The storefront only
// uses it to pick which navigation to show.
type Role string

const (
	RoleGuest           Role = "guest"
	RoleCustomer        Role = "customer"
	RoleRestaurantOwner Role = "restaurant_owner"
	RoleCourier         Role = "courier"
	RoleAdmin           Role = "admin"
)

var validRoles = []Role{
	RoleCustomer,
	RoleRestaurantOwner,
	RoleCourier,
	RoleAdmin,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known authenticated role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// HasDashboard reports whether the role gets a dashboard link.
func (r Role) HasDashboard() bool {
	return r == RoleRestaurantOwner || r == RoleCourier || r == RoleAdmin
}
