package models

// Actor is the identity a request runs as. It is resolved from the session
// by middleware and passed explicitly to every service call.
type Actor struct {
	UserID uint
	Role   Role
}

func ActorFor(u *User) Actor {
	return Actor{UserID: u.ID, Role: u.Role}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin || a.Role == RoleSuperAdmin
}

func (a Actor) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}
