package domain

import "github.com/google/uuid"

// Commands carry client intent into the session service. Identity
// fields are filled from the request's user header, never from the
// body. Validation tags mirror the legacy joi schemas.

type JoinCommand struct {
	Name string `validate:"required,min=1"`
}

type SendMessageCommand struct {
	From string
	To   string `validate:"required,min=1"`
	Kind Kind   `validate:"required,oneof=message private_message"`
	Text string `validate:"required,min=1"`
}

type ListMessagesCommand struct {
	User string
	// Limit trims the view to its last N messages. Nil means no trim.
	Limit *int
}

type EditMessageCommand struct {
	User string
	ID   uuid.UUID
	Text string `validate:"required,min=1"`
}

type DeleteMessageCommand struct {
	User string
	ID   uuid.UUID
}
