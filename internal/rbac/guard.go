package rbac

import (
	"context"

	"github.com/examgate/examgate/internal/auth"
	"github.com/examgate/examgate/internal/exam"
)

// UserSource is the single lookup the guard needs.
type UserSource interface {
	GetUser(ctx context.Context, id string) (exam.User, error)
}

// Guard decides whether a resolved identity may perform an operation.
// It fetches the caller's stored record once and applies a role check
// with an optional subject override; ownership of specific exams is
// enforced downstream by ownership-scoped lookups.
type Guard struct {
	users UserSource
}

func NewGuard(users UserSource) *Guard { return &Guard{users: users} }

// Options scope one authorization decision.
type Options struct {
	// Role is the required role; zero value allows any authenticated
	// user.
	Role exam.Role
	// SelfID, when set, lets the caller through regardless of role if
	// they are that user (a student reading their own result).
	SelfID string
}

// Authorize returns the caller's stored user record, or one of
// ErrUnauthenticated, ErrUserNotFound, ErrForbidden.
func (g *Guard) Authorize(ctx context.Context, id auth.Identity, opts Options) (exam.User, error) {
	if id.UserID == "" {
		return exam.User{}, exam.ErrUnauthenticated
	}
	u, err := g.users.GetUser(ctx, id.UserID)
	if err != nil {
		return exam.User{}, err
	}
	if opts.Role != "" && u.Role != opts.Role {
		if opts.SelfID == "" || opts.SelfID != u.ID {
			return exam.User{}, exam.ErrForbidden
		}
	}
	return u, nil
}
