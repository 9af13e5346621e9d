package ports

import (
	"context"

	"github.com/servicemarket/admin-console/internal/core/domain"
)

// NavigationService renders the role-filtered navigation tree and keeps its
// presentation state.
type NavigationService interface {
	Build(s domain.Session, location string) domain.NavigationView
	Toggle(path string) (bool, error)
	SetBadge(path string, count int) error
	SetCollapsed(ctx context.Context, collapsed bool) error
	Collapsed() bool
}
