// Package view maps requested screens to the screens a user is actually
// allowed to see.
package view

import "foodguard/internal/model"

// View names a navigable screen of the compliance client.
type View string

const (
	Dashboard            View = "dashboard"
	Temperature          View = "temperature"
	Checklists           View = "checklists"
	Incidents            View = "incidents"
	HACCP                View = "haccp"
	Reports              View = "reports"
	Settings             View = "settings"
	AllergenManagement   View = "allergenManagement"
	RestaurantManagement View = "restaurantManagement"
	UserManagement       View = "userManagement"
	HACCPManager         View = "haccpManager"
)

// Default is the screen shown when nothing has been requested yet.
const Default = Dashboard

// All lists every known view.
var All = []View{
	Dashboard,
	Temperature,
	Checklists,
	Incidents,
	HACCP,
	Reports,
	Settings,
	AllergenManagement,
	RestaurantManagement,
	UserManagement,
	HACCPManager,
}

// Known reports whether v names an existing view.
func Known(v View) bool {
	for _, known := range All {
		if v == known {
			return true
		}
	}
	return false
}

// superadminViews are the only screens a superadmin can see; they are
// invisible to everyone else.
var superadminViews = map[View]bool{
	RestaurantManagement: true,
	UserManagement:       true,
	HACCPManager:         true,
}

// Resolve maps a requested view to the view actually rendered for user,
// applying role and subscription fallbacks. It is pure and total: every
// input yields exactly one view, and feeding the result back in returns the
// same view. The caller must only invoke it for an authenticated session.
func Resolve(requested View, user *model.User) View {
	if user.Role == model.RoleSuperadmin {
		if superadminViews[requested] {
			return requested
		}
		return RestaurantManagement
	}

	if superadminViews[requested] || !Known(requested) {
		return Dashboard
	}
	if requested == Temperature && user.SubscriptionType != model.SubscriptionSensor {
		return Dashboard
	}
	if requested == AllergenManagement && user.Role != model.RoleAdmin {
		return Dashboard
	}
	return requested
}
