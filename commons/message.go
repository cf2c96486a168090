package commons

import (
	"github.com/burntcarrot/histdiff/history"
	"github.com/google/uuid"
)

// Message represents the message sent over the wire.
type Message struct {
	// Type represents the message type.
	Type MessageType `json:"type"`

	// ID represents the client's UUID, assigned by the server on join.
	ID uuid.UUID `json:"ID"`

	// Base and Head select the version window of a view.
	Base history.Version `json:"base"`
	Head history.Version `json:"head"`

	// Versions lists the versions in which the document changed, oldest first.
	Versions []history.Version `json:"versions,omitempty"`

	// Document represents the rendered view. It is only sent in reply to a view request, due to its size.
	Document []Line `json:"document,omitempty"`

	// Text carries the error for error messages.
	Text string `json:"text,omitempty"`
}

// MessageType represents the type of the message.
type MessageType string

// Currently, histdiff supports 6 message types:
// - join (sent by the server when a client connects)
// - versionsReq (for requesting the non-trivial versions)
// - versions (the reply to versionsReq)
// - viewReq (for requesting a rendered window)
// - view (the reply to viewReq)
// - error (for rejected requests)

const (
	JoinMessage        MessageType = "join"
	VersionsReqMessage MessageType = "versionsReq"
	VersionsMessage    MessageType = "versions"
	ViewReqMessage     MessageType = "viewReq"
	ViewMessage        MessageType = "view"
	ErrorMessage       MessageType = "error"
)
