package main

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/burntcarrot/histdiff/annotator"
	"github.com/burntcarrot/histdiff/commons"
	"github.com/burntcarrot/histdiff/render"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var errUnknownMessage = errors.New("unknown message type")

// server answers view requests on a history built once at startup.
type server struct {
	result  *annotator.Result
	log     logrus.FieldLogger
	metrics *metrics

	// Upgrader instance to upgrade all HTTP connections to a WebSocket.
	upgrader websocket.Upgrader

	// Currently active client connections.
	mu            sync.Mutex
	activeClients map[*websocket.Conn]uuid.UUID
}

func newServer(result *annotator.Result, log logrus.FieldLogger, reg prometheus.Registerer) *server {
	return &server{
		result:        result,
		log:           log,
		metrics:       newMetrics(reg),
		activeClients: make(map[*websocket.Conn]uuid.UUID),
	}
}

// routes serves websocket connections on / and metrics from gatherer on /metrics.
func (s *server) routes(gatherer prometheus.Gatherer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleConn)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

// handleConn upgrades the connection, sends the client its ID and answers its requests until it disconnects.
func (s *server) handleConn(w http.ResponseWriter, r *http.Request) {
	// Upgrade incoming HTTP connections to WebSocket connections
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorf("Error upgrading connection to websocket: %v", err)
		return
	}
	defer conn.Close()

	// Generate a UUID for the client.
	id := uuid.New()
	s.add(conn, id)
	defer s.remove(conn)

	color.Green("%s >> %s joined\n", time.Now().Format(time.ANSIC), id)
	if err := conn.WriteJSON(commons.Message{Type: commons.JoinMessage, ID: id}); err != nil {
		s.log.Errorf("Error sending join message to %s: %v", id, err)
		return
	}

	for {
		var msg commons.Message

		// Read message from the connection.
		if err := conn.ReadJSON(&msg); err != nil {
			s.log.Infof("Closing connection with ID: %v", id)
			color.Yellow("%s >> %s left\n", time.Now().Format(time.ANSIC), id)
			return
		}
		msg.ID = id

		if err := conn.WriteJSON(s.reply(msg)); err != nil {
			s.log.Errorf("Error sending message to client %s: %v", id, err)
			return
		}
	}
}

func (s *server) add(conn *websocket.Conn, id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeClients[conn] = id
	s.metrics.connections.Inc()
}

func (s *server) remove(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.activeClients, conn)
	s.metrics.connections.Dec()
}

// reply answers a single request. Failures are answered with an error message.
func (s *server) reply(msg commons.Message) commons.Message {
	log := s.log.WithFields(logrus.Fields{"client": msg.ID.String(), "type": string(msg.Type)})
	t := time.Now().Format(time.ANSIC)

	switch msg.Type {
	case commons.VersionsReqMessage:
		s.metrics.requests.WithLabelValues(string(msg.Type)).Inc()
		color.Cyan("%s >> %s requested versions\n", t, msg.ID)
		return commons.Message{Type: commons.VersionsMessage, ID: msg.ID, Versions: s.result.Versions}

	case commons.ViewReqMessage:
		s.metrics.requests.WithLabelValues(string(msg.Type)).Inc()
		w := render.Window{Base: msg.Base, Head: msg.Head}
		if w.Base.IsZero() && w.Head.IsZero() {
			w = render.DefaultWindow(s.result)
		}

		lines, err := render.View(s.result, w)
		if err != nil {
			return s.fail(log, msg, err)
		}
		s.metrics.lines.Observe(float64(len(lines)))
		color.Cyan("%s >> %s viewed %s..%s\n", t, msg.ID, w.Base, w.Head)
		return commons.Message{
			Type:     commons.ViewMessage,
			ID:       msg.ID,
			Base:     w.Base,
			Head:     w.Head,
			Versions: render.Versions(s.result, w),
			Document: lines,
		}

	default:
		s.metrics.requests.WithLabelValues("unknown").Inc()
		return s.fail(log, msg, fmt.Errorf("%w: %q", errUnknownMessage, msg.Type))
	}
}

func (s *server) fail(log logrus.FieldLogger, msg commons.Message, err error) commons.Message {
	s.metrics.errors.Inc()
	log.Warnf("rejected request: %v", err)
	color.Red("%s >> %s: %v\n", time.Now().Format(time.ANSIC), msg.ID, err)
	return commons.Message{Type: commons.ErrorMessage, ID: msg.ID, Text: err.Error()}
}
