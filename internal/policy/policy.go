// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package policy decides whether an actor may perform an action on a post.
// Decisions are pure functions of the actor's role set, the action, and the
// post's ownership; nothing here touches storage.
package policy

import (
	"blogapi/internal/apperr"
	"blogapi/internal/models"
)

// Action names an operation subject to authorization.
type Action string

const (
	ActionReadPost      Action = "read_post"
	ActionCreatePost    Action = "create_post"
	ActionUpdatePost    Action = "update_post"
	ActionDeletePost    Action = "delete_post"
	ActionCreateComment Action = "create_comment"
)

// Deny reasons surfaced to the caller.
const (
	ReasonCannotCreate    = "not allowed to create posts"
	ReasonNotOwner        = "only admin or owner"
	ReasonUnauthenticated = "authentication required"
	ReasonUnknownAction   = "action not permitted"
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Decide evaluates the rule table for (actor, action, post). The first
// matching rule wins. post is only consulted for update and delete; actor
// may be nil for an unauthenticated caller.
func Decide(actor *models.User, action Action, post *models.Post) Decision {
	if action == ActionReadPost {
		return allow()
	}
	if actor == nil {
		return deny(ReasonUnauthenticated)
	}

	switch action {
	case ActionCreatePost:
		if actor.Roles.HasAny(models.RoleAdmin, models.RoleAuthor) {
			return allow()
		}
		return deny(ReasonCannotCreate)

	case ActionUpdatePost, ActionDeletePost:
		// Admin is a universal override; ownership is the only other path.
		if actor.IsAdmin() {
			return allow()
		}
		if post != nil && post.IsOwnedBy(actor.ID) {
			return allow()
		}
		return deny(ReasonNotOwner)

	case ActionCreateComment:
		return allow()
	}

	return deny(ReasonUnknownAction)
}

// Authorize is Decide expressed as an error: nil when allowed,
// apperr.ErrUnauthenticated when a mutating action has no actor, and an
// *apperr.ForbiddenError carrying the reason otherwise.
func Authorize(actor *models.User, action Action, post *models.Post) error {
	d := Decide(actor, action, post)
	if d.Allowed {
		return nil
	}
	if actor == nil {
		return apperr.ErrUnauthenticated
	}
	return &apperr.ForbiddenError{Reason: d.Reason}
}
