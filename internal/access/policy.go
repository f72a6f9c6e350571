// Package access turns an access scope into the row filter a query runs
// with. Handlers never build visibility or ownership predicates themselves;
// they ask this package for them.
package access

import (
	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/query"
)

// BuildFilter returns base unchanged under the full scope and the
// conjunction of base and restricted under any other scope, so an
// unrecognised scope fails closed. A base that already carries the
// restriction is returned as is.
func BuildFilter(base, restricted query.Filter, scope auth.Scope) query.Filter {
	if base == nil {
		base = query.All()
	}

	if scope == auth.ScopeFull {
		return base
	}

	if query.Contains(base, restricted) {
		return base
	}

	return query.And(base, restricted)
}

// VisiblePosts: everything for admins, otherwise posts that are public or
// written by the caller.
func VisiblePosts(ac auth.AuthContext) query.Filter {
	return BuildFilter(
		query.All(),
		query.Or(
			query.Eq(query.FieldHidden, false),
			query.Eq(query.FieldAuthorID, ac.User.ID),
		),
		ac.Scope,
	)
}

// OwnedPost selects one post by id, limited to the caller's own posts
// unless the scope is full.
func OwnedPost(ac auth.AuthContext, postID int64) query.Filter {
	return BuildFilter(
		query.Eq(query.FieldID, postID),
		query.Eq(query.FieldAuthorID, ac.User.ID),
		ac.Scope,
	)
}

// VisibleUsers hides administrators from restricted callers.
func VisibleUsers(ac auth.AuthContext) query.Filter {
	return BuildFilter(
		query.All(),
		query.Ne(query.FieldRole, user.RoleAdmin),
		ac.Scope,
	)
}

// PostAuthor is the author id a new post is stored with. Restricted callers
// always write as themselves whatever the request said.
func PostAuthor(ac auth.AuthContext, requested int64) int64 {
	if ac.Scope == auth.ScopeFull {
		return requested
	}

	return ac.User.ID
}
