package event

import "time"

type Type string

const (
	TypeUserRegistered  Type = "auth.register"
	TypeLogin           Type = "auth.login"
	TypeRefresh         Type = "auth.refresh"
	TypeLogout          Type = "auth.logout"
	TypePasswordChanged Type = "auth.change_password"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

type Event struct {
	ID        string    `json:"id"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actor_id,omitempty"`
	ActorIP   string    `json:"actor_ip,omitempty"`
	Status    string    `json:"status"`
	// Resource names the account the event is about, usually a username.
	Resource string `json:"resource,omitempty"`
	Error    string `json:"error,omitempty"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
