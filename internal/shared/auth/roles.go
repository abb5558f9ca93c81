package auth

import "slices"

const (
	RoleAdmin    = "admin"
	RoleManager  = "gerente"
	RoleWaiter   = "garcom"
	RoleCook     = "cozinheiro"
	RoleCashier  = "caixa"
	RoleCustomer = "cliente"
)

// StaffRoles are every role working inside a restaurant.
var StaffRoles = []string{RoleManager, RoleWaiter, RoleCook, RoleCashier}

// HasRole reports whether the claims carry any of roles. Admins carry every role.
func (c *Claims) HasRole(roles ...string) bool {
	if c == nil {
		return false
	}
	if slices.Contains(c.Roles, RoleAdmin) {
		return true
	}
	for _, role := range roles {
		if slices.Contains(c.Roles, role) {
			return true
		}
	}
	return false
}

// CanAccessRestaurant reports whether the token may act on restaurantID.
func (c *Claims) CanAccessRestaurant(restaurantID string) bool {
	if c == nil {
		return false
	}
	if slices.Contains(c.Roles, RoleAdmin) || c.RestaurantID == "" {
		return true
	}
	return c.RestaurantID == restaurantID
}
