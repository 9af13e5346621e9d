package domain

var (
	staffRoles = []Role{RoleCompany, RoleSuperadmin}
	allRoles   = []Role{RoleCompany, RoleSuperadmin, RoleSalon, RoleWorker}
)

func badge(n int) *int { return &n }

// DefaultMenu is the console sidebar. Callers get a fresh copy.
func DefaultMenu() []NavigationNode {
	return []NavigationNode{
		{Path: "/", Label: "Dashboard", Icon: "home", Roles: allRoles},
		{
			Path: "/products", Label: "Products", Icon: "box", Roles: []Role{RoleCompany},
			Children: []NavigationNode{
				{Path: "/products/list", Label: "All products", Icon: "list"},
				{Path: "/products/import", Label: "Import", Icon: "upload", IsNew: true},
			},
		},
		{
			Path: "/listings", Label: "Listings", Icon: "store", Roles: []Role{RoleCompany, RoleSalon},
			Children: []NavigationNode{
				{Path: "/listings/active", Label: "Active", Icon: "check"},
				{Path: "/listings/pending", Label: "Pending review", Icon: "clock", BadgeCount: badge(0)},
			},
		},
		{Path: "/workers", Label: "Workers", Icon: "users", Roles: []Role{RoleCompany}},
		{
			Path: "/admin", Label: "Administration", Icon: "shield", Roles: []Role{RoleSuperadmin},
			Children: []NavigationNode{
				{Path: "/admin/companies", Label: "Companies", Icon: "building"},
				{Path: "/admin/salons", Label: "Salons", Icon: "scissors"},
				{Path: "/admin/training-videos", Label: "Training videos", Icon: "video", IsNew: true},
				{Path: "/admin/reports", Label: "Reports", Icon: "chart"},
			},
		},
		{Path: "/profile", Label: "Profile", Icon: "user", Roles: staffRoles},
	}
}

// DefaultScreens lists the console screens and their access requirements.
func DefaultScreens() []Screen {
	return []Screen{
		{Name: "login", Path: "/login", Title: "Sign in", Public: true},
		{Name: "unauthorized", Path: "/unauthorized", Title: "Access denied", Public: true},
		{Name: "dashboard", Path: "/", Title: "Dashboard"},
		{Name: "products", Path: "/products", Title: "Products", Requirement: AccessRequirement{
			AllowedRoles:        []Role{RoleCompany},
			RequiredPermissions: []Permission{PermissionManageProducts},
		}},
		{Name: "listings", Path: "/listings", Title: "Listings", Requirement: AccessRequirement{
			AllowedRoles: []Role{RoleCompany, RoleSalon},
		}},
		{Name: "workers", Path: "/workers", Title: "Workers", Requirement: AccessRequirement{
			AllowedRoles:        []Role{RoleCompany},
			RequiredPermissions: []Permission{PermissionManageWorkers},
		}},
		{Name: "companies", Path: "/admin/companies", Title: "Companies", Requirement: AccessRequirement{
			AllowedRoles: []Role{RoleSuperadmin},
		}},
		{Name: "training-videos", Path: "/admin/training-videos", Title: "Training videos", Requirement: AccessRequirement{
			AllowedRoles:        []Role{RoleSuperadmin},
			RequiredPermissions: []Permission{PermissionManageTraining},
		}},
		{Name: "reports", Path: "/admin/reports", Title: "Reports", Requirement: AccessRequirement{
			AllowedRoles:        []Role{RoleSuperadmin},
			RequiredPermissions: []Permission{PermissionViewReports},
		}},
		{Name: "profile", Path: "/profile", Title: "Profile", Requirement: AccessRequirement{
			AllowedRoles: staffRoles,
		}},
	}
}
