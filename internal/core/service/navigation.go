package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/servicemarket/admin-console/internal/core/domain"
	"github.com/servicemarket/admin-console/internal/core/ports"
)

// KeySidebarCollapsed persists the icon-only sidebar mode across restarts.
const KeySidebarCollapsed = "sidebarCollapsed"

// Navigator derives the visible navigation tree for the current session and
// tracks presentation state: per-node expansion (in memory only) and the
// sidebar collapse mode (persisted).
type Navigator struct {
	tree    []domain.NavigationNode
	known   map[string]struct{}
	storage ports.KeyValueStore
	log     zerolog.Logger

	mu        sync.RWMutex
	expanded  map[string]bool
	badges    map[string]int
	collapsed bool
}

// NewNavigator returns a navigator over tree.
func NewNavigator(tree []domain.NavigationNode, storage ports.KeyValueStore, log zerolog.Logger) *Navigator {
	return &Navigator{
		tree:     tree,
		known:    collectPaths(tree, make(map[string]struct{})),
		storage:  storage,
		log:      log.With().Str("component", "navigator").Logger(),
		expanded: make(map[string]bool),
		badges:   make(map[string]int),
	}
}

// Load restores the persisted sidebar mode. Read failures fall back to the
// expanded sidebar.
func (n *Navigator) Load(ctx context.Context) {
	v, ok, err := n.storage.Get(ctx, KeySidebarCollapsed)
	if err != nil {
		n.log.Warn().Err(err).Msg("read sidebar mode")
		return
	}
	if !ok {
		return
	}
	collapsed, err := strconv.ParseBool(v)
	if err != nil {
		n.log.Warn().Str("value", v).Msg("ignoring malformed sidebar mode")
		return
	}

	n.mu.Lock()
	n.collapsed = collapsed
	n.mu.Unlock()
}

// SetCollapsed switches the sidebar mode and persists it.
func (n *Navigator) SetCollapsed(ctx context.Context, collapsed bool) error {
	if err := n.storage.SetMany(ctx, map[string]string{KeySidebarCollapsed: strconv.FormatBool(collapsed)}); err != nil {
		return err
	}
	n.mu.Lock()
	n.collapsed = collapsed
	n.mu.Unlock()
	return nil
}

// Collapsed reports the sidebar mode.
func (n *Navigator) Collapsed() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.collapsed
}

// Toggle flips the manual expansion of the node at path and returns the new
// state. A node with an active descendant stays expanded regardless.
func (n *Navigator) Toggle(path string) (bool, error) {
	if _, ok := n.known[path]; !ok {
		return false, fmt.Errorf("toggle %q: %w", path, domain.ErrUnknownNavigationPath)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expanded[path] = !n.expanded[path]
	return n.expanded[path], nil
}

// SetBadge overrides the badge count shown on the node at path.
func (n *Navigator) SetBadge(path string, count int) error {
	if _, ok := n.known[path]; !ok {
		return fmt.Errorf("badge %q: %w", path, domain.ErrUnknownNavigationPath)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.badges[path] = count
	return nil
}

func collectPaths(nodes []domain.NavigationNode, into map[string]struct{}) map[string]struct{} {
	for _, node := range nodes {
		into[node.Path] = struct{}{}
		collectPaths(node.Children, into)
	}
	return into
}

// Build renders the tree visible to the session's user at location.
func (n *Navigator) Build(s domain.Session, location string) domain.NavigationView {
	n.mu.RLock()
	defer n.mu.RUnlock()

	view := domain.NavigationView{Collapsed: n.collapsed, Items: []domain.NavigationItem{}}
	if !s.IsAuthenticated || s.User == nil {
		return view
	}

	for _, node := range FilterTree(n.tree, s.User.Role) {
		view.Items = append(view.Items, n.item(node, location))
	}
	return view
}

func (n *Navigator) item(node domain.NavigationNode, location string) domain.NavigationItem {
	it := domain.NavigationItem{
		Path:       node.Path,
		Label:      node.Label,
		Icon:       node.Icon,
		BadgeCount: node.BadgeCount,
		IsNew:      node.IsNew,
		Active:     IsActive(node.Path, location),
	}
	if count, ok := n.badges[node.Path]; ok {
		c := count
		it.BadgeCount = &c
	}

	if len(node.Children) == 0 {
		return it
	}

	children := make([]domain.NavigationItem, 0, len(node.Children))
	for _, child := range node.Children {
		ci := n.item(child, location)
		if ci.Active || ci.HasActiveChild {
			it.HasActiveChild = true
		}
		children = append(children, ci)
	}

	// Icon mode suppresses sub-items entirely rather than truncating them.
	if n.collapsed {
		return it
	}
	it.Expanded = it.HasActiveChild || n.expanded[node.Path]
	if it.Expanded {
		it.Children = children
	}
	return it
}

// FilterTree returns the nodes visible to role. Every level is checked; a
// child that declares no roles inherits its parent's.
func FilterTree(nodes []domain.NavigationNode, role domain.Role) []domain.NavigationNode {
	return filterNodes(nodes, role, nil)
}

func filterNodes(nodes []domain.NavigationNode, role domain.Role, inherited []domain.Role) []domain.NavigationNode {
	out := make([]domain.NavigationNode, 0, len(nodes))
	for _, node := range nodes {
		if len(node.Roles) == 0 {
			node.Roles = inherited
		}
		if !node.VisibleTo(role) {
			continue
		}
		node.Children = filterNodes(node.Children, role, node.Roles)
		out = append(out, node)
	}
	return out
}

// IsActive reports whether location selects the node at path: the root only
// on an exact match, any other path for itself and everything beneath it.
func IsActive(path, location string) bool {
	if path == "" {
		return false
	}
	if path == "/" {
		return location == "/"
	}
	path = strings.TrimSuffix(path, "/")
	return location == path || strings.HasPrefix(location, path+"/")
}
