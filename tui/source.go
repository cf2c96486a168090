package tui

import (
	"errors"
	"fmt"
	"sync"

	"github.com/burntcarrot/histdiff/annotator"
	"github.com/burntcarrot/histdiff/commons"
	"github.com/burntcarrot/histdiff/history"
	"github.com/burntcarrot/histdiff/render"
)

// ErrServer is returned when the server rejects a request.
var ErrServer = errors.New("server error")

// Source supplies the versions and views shown by the viewer.
type Source interface {
	// Versions returns the versions in which the document changed, oldest first.
	Versions() ([]history.Version, error)

	// View renders the document for the window w.
	View(w render.Window) ([]commons.Line, error)
}

// Local serves views from a history built in process.
type Local struct {
	Result *annotator.Result
}

func (l Local) Versions() ([]history.Version, error) {
	return l.Result.Versions, nil
}

func (l Local) View(w render.Window) ([]commons.Line, error) {
	return render.View(l.Result, w)
}

// Conn is the part of a websocket connection used by Remote.
type Conn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
}

// Remote requests views from a histdiff server.
type Remote struct {
	mu   sync.Mutex
	conn Conn

	// ID is the identifier the server assigned on join, if seen.
	ID string
}

// NewRemote returns a Source reading from conn.
func NewRemote(conn Conn) *Remote {
	return &Remote{conn: conn}
}

func (r *Remote) Versions() ([]history.Version, error) {
	msg, err := r.roundTrip(commons.Message{Type: commons.VersionsReqMessage}, commons.VersionsMessage)
	if err != nil {
		return nil, err
	}
	return msg.Versions, nil
}

func (r *Remote) View(w render.Window) ([]commons.Line, error) {
	msg, err := r.roundTrip(commons.Message{Type: commons.ViewReqMessage, Base: w.Base, Head: w.Head}, commons.ViewMessage)
	if err != nil {
		return nil, err
	}
	return msg.Document, nil
}

// roundTrip sends req and waits for a reply of type want, skipping join messages.
func (r *Remote) roundTrip(req commons.Message, want commons.MessageType) (commons.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.conn.WriteJSON(req); err != nil {
		return commons.Message{}, fmt.Errorf("sending %s: %w", req.Type, err)
	}

	for {
		var msg commons.Message
		if err := r.conn.ReadJSON(&msg); err != nil {
			return commons.Message{}, fmt.Errorf("waiting for %s: %w", want, err)
		}

		switch msg.Type {
		case commons.JoinMessage:
			r.ID = msg.ID.String()
		case commons.ErrorMessage:
			return commons.Message{}, fmt.Errorf("%w: %s", ErrServer, msg.Text)
		case want:
			return msg, nil
		default:
			return commons.Message{}, fmt.Errorf("%w: unexpected %s reply to %s", ErrServer, msg.Type, req.Type)
		}
	}
}
