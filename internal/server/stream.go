package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/roach88/crease/internal/api"
	"github.com/roach88/crease/internal/engine"
	"github.com/roach88/crease/internal/feed"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// handleStream upgrades to a websocket and pushes one feed.Event per
// committed mutation of the match, starting with the current snapshot.
// Clients only ever read; anything they send is discarded.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, http.StatusNotFound, api.ErrorBody{Code: string(engine.CodeNotFound), Message: "streaming is disabled"})
		return
	}
	matchID := mux.Vars(r)["id"]

	// Subscribe before reading the snapshot, so a mutation committed in
	// between is in the snapshot, on the subscription, or both.
	sub := s.hub.Subscribe(matchID)
	defer sub.Close()
	if s.subscribed != nil {
		s.subscribed(matchID)
	}

	snap, err := s.eng.LiveSnapshot(r.Context(), matchID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.logger.Warn("websocket upgrade failed", "match", matchID, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go s.readPump(conn, cancel)

	s.logger.Debug("stream opened", "match", matchID)
	if err := writeEvent(conn, feed.Event{MatchID: matchID, Version: snap.Version, Snapshot: snap}); err != nil {
		return
	}

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()
	events := make(chan feed.Event)
	go func() {
		defer close(events)
		for {
			ev, err := sub.Next(ctx)
			if err != nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				s.logger.Debug("stream write failed", "match", matchID, "error", err)
				return
			}
			if ev.Type == feed.EventMatchDeleted {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match deleted"),
					time.Now().Add(streamWriteWait))
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev feed.Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(streamWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(ev)
}

// readPump drains client frames so control messages are processed, and
// cancels the stream once the peer goes away.
func (s *Server) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !errors.Is(err, context.Canceled) && websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("stream closed by peer", "error", err)
			}
			return
		}
	}
}
