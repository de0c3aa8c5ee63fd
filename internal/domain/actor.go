package domain

// Actor is the opaque acting user supplied by the auth collaborator.
// The core never authenticates; it only checks rights against this value.
type Actor struct {
	ID      string `json:"id"`
	IsAdmin bool   `json:"is_admin"`
}

// Anonymous reports whether the actor carries no identity.
func (a Actor) Anonymous() bool {
	return a.ID == ""
}

// AnonymousActor is the actor used for unauthenticated requests.
var AnonymousActor = Actor{}
