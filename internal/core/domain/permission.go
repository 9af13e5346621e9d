package domain

// Permission is a fine-grained capability label attached to a screen.
type Permission string

const (
	PermissionViewDashboard  Permission = "view_dashboard"
	PermissionManageProfile  Permission = "manage_profile"
	PermissionManageProducts Permission = "manage_products"
	PermissionManageListings Permission = "manage_listings"
	PermissionManageWorkers  Permission = "manage_workers"
	PermissionManageTraining Permission = "manage_training"
	PermissionManageTenants  Permission = "manage_tenants"
	PermissionViewReports    Permission = "view_reports"
)

var rolePermissions = map[Role][]Permission{
	RoleCompany: {
		PermissionViewDashboard,
		PermissionManageProfile,
		PermissionManageProducts,
		PermissionManageListings,
		PermissionManageWorkers,
	},
	RoleSalon: {
		PermissionViewDashboard,
		PermissionManageProfile,
		PermissionManageListings,
	},
	RoleWorker: {
		PermissionViewDashboard,
		PermissionManageProfile,
	},
	RoleSuperadmin: {
		PermissionViewDashboard,
		PermissionManageProfile,
		PermissionManageProducts,
		PermissionManageListings,
		PermissionManageWorkers,
		PermissionManageTraining,
		PermissionManageTenants,
		PermissionViewReports,
	},
}

// PermissionsForRole returns the default permission set granted to a role.
// Unknown roles get nothing.
func PermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// MergePermissions returns the union of the given sets, preserving first-seen order.
func MergePermissions(sets ...[]Permission) []Permission {
	seen := make(map[Permission]struct{})
	var out []Permission
	for _, set := range sets {
		for _, p := range set {
			if p == "" {
				continue
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
