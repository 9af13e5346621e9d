package domain

// NavigationNode is an entry of the static navigation tree. Each node carries
// its own Roles; a child with no Roles inherits its parent's.
type NavigationNode struct {
	Path       string           `json:"path"`
	Label      string           `json:"label"`
	Icon       string           `json:"icon"`
	Roles      []Role           `json:"roles"`
	BadgeCount *int             `json:"badgeCount,omitempty"`
	IsNew      bool             `json:"isNew,omitempty"`
	Children   []NavigationNode `json:"children,omitempty"`
}

// VisibleTo reports whether role is listed on the node.
func (n NavigationNode) VisibleTo(role Role) bool {
	for _, r := range n.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// NavigationItem is a node of the filtered tree as rendered for one user and
// one location.
type NavigationItem struct {
	Path           string           `json:"path"`
	Label          string           `json:"label"`
	Icon           string           `json:"icon"`
	BadgeCount     *int             `json:"badgeCount,omitempty"`
	IsNew          bool             `json:"isNew,omitempty"`
	Active         bool             `json:"active"`
	HasActiveChild bool             `json:"hasActiveChild"`
	Expanded       bool             `json:"expanded"`
	Children       []NavigationItem `json:"children,omitempty"`
}

// NavigationView is the rendered sidebar.
type NavigationView struct {
	Collapsed bool             `json:"collapsed"`
	Items     []NavigationItem `json:"items"`
}
