// Package policy is the single place ownership rules live. Every mutating
// route consults Can instead of re-deriving the rule inline, so the same
// rule cannot drift between handlers.
//
// Handlers check resource existence first: a missing resource is a 404
// regardless of what Can would have said.
package policy

import (
	"meetbase/internal/models"
)

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID   uint
	Role string
}

type Action int

const (
	ListUsers Action = iota
	UpdateUser
	DeleteUser
	CreateMeeting
	UpdateMeeting
	DeleteMeeting
	AddParticipant
	UpdateParticipant
	DeleteParticipant
)

// UserRes identifies a target user record.
type UserRes struct {
	ID uint
}

// MeetingRes identifies a target meeting by its owner.
type MeetingRes struct {
	CreatedBy uint
}

// ParticipantRes identifies a target participant together with the owner
// of the meeting it belongs to.
type ParticipantRes struct {
	UserID           uint
	MeetingCreatedBy uint
}

// Can decides whether actor may perform action on resource. Unknown
// action/resource combinations deny.
func Can(actor Actor, action Action, resource interface{}) bool {
	admin := actor.Role == models.RoleAdmin

	switch action {
	case ListUsers:
		return admin
	case UpdateUser, DeleteUser:
		u, ok := resource.(UserRes)
		return ok && (admin || actor.ID == u.ID)
	case CreateMeeting:
		// any authenticated actor; the creator is forced to the actor
		// id at the call site, never taken from the client
		return actor.ID != 0
	case UpdateMeeting, DeleteMeeting, AddParticipant:
		m, ok := resource.(MeetingRes)
		return ok && (admin || actor.ID == m.CreatedBy)
	case UpdateParticipant, DeleteParticipant:
		p, ok := resource.(ParticipantRes)
		return ok && (admin || actor.ID == p.MeetingCreatedBy || actor.ID == p.UserID)
	}
	return false
}
