// Package authz implements the authorization predicate gating every mutating
// operation: an action is allowed when the actor owns the resource (for
// ownable actions) or when the actor's role grants the named capability.
package authz

import (
	"plume/internal/models"
)

// Action is a named capability checked before a mutating or privileged
// operation.
type Action string

// Actions. Ownership satisfies the "own" form of ownable actions; the
// capability table grants the "others" form.
const (
	PostEdit         Action = "posts.edit"
	PostDelete       Action = "posts.delete"
	PostHide         Action = "posts.hide"
	PostClearReports Action = "posts.clear_reports"
	PostViewDetails  Action = "posts.view_details"
	CommentDelete    Action = "comments.delete"
	UserEdit         Action = "users.edit"
	UserManageRoles  Action = "users.manage_roles"
	ModViewStats     Action = "moderation.view_stats"
)

// Actor is the identity performing an operation. The zero Actor is the
// anonymous (unauthenticated) actor.
type Actor struct {
	ID   uint
	Role models.Role
}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool {
	return a.ID != 0
}

// ownable actions are satisfied by resource ownership without any capability.
var ownable = map[Action]bool{
	PostEdit:      true,
	PostDelete:    true,
	CommentDelete: true,
	UserEdit:      true,
}

// capabilities is the fixed role -> capability table. Moderators may hide and
// delete other users' content without seeing the author; only admins hold
// view-details, report clearing, role management and statistics.
var capabilities = map[models.Role]map[Action]bool{
	models.RoleModerator: {
		PostHide:      true,
		PostDelete:    true,
		CommentDelete: true,
	},
	models.RoleAdmin: {
		PostEdit:         true,
		PostDelete:       true,
		PostHide:         true,
		PostClearReports: true,
		PostViewDetails:  true,
		CommentDelete:    true,
		UserEdit:         true,
		UserManageRoles:  true,
		ModViewStats:     true,
	},
}

// Authorize is the single authorization predicate. ownerID is the resource
// owner, or zero for actions without an owned resource. It returns an
// AUTH_REQUIRED error for anonymous actors and a FORBIDDEN error when neither
// ownership nor the capability table allows the action.
func Authorize(actor Actor, ownerID uint, action Action) error {
	if !actor.Authenticated() {
		return models.NewAuthRequiredError("You must be logged in to perform this action")
	}
	if ownable[action] && ownerID != 0 && actor.ID == ownerID {
		return nil
	}
	if capabilities[actor.Role][action] {
		return nil
	}
	return models.NewForbiddenError("You do not have permission to perform this action")
}

// Can reports whether Authorize would allow the action, discarding the reason.
func Can(actor Actor, ownerID uint, action Action) bool {
	return Authorize(actor, ownerID, action) == nil
}
