package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/climatechance/internal/climate"
	"github.com/playperu/climatechance/internal/engine"
)

const EventError = "error"

// WSMessage is what the feed sends back for a rejected action.
type WSMessage struct {
	Type  string `json:"type"`
	Error string `json:"error,omitempty"`
}

// handleWS upgrades to a live match feed. Every event is pushed as a text
// frame. Clients that connected with the host key may also send
// ActionRequest frames; the resulting state arrives through the feed.
func handleWS(logger *slog.Logger, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m := matchFrom(r)
		isHost := m.Authorize(hostKeyFromRequest(r)) == nil

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 4*time.Hour)
		defer cancel()

		ch := broker.Subscribe(m.ID)
		defer broker.Unsubscribe(m.ID, ch)

		snap := m.Snapshot()
		if err := wsjson.Write(ctx, conn, Event{Type: EventState, Match: &snap}); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}

		go readActions(ctx, cancel, conn, m, isHost, logger)

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case data := <-ch:
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					logger.Debug("websocket write failed", "error", err)
					return
				}
			}
		}
	}
}

// readActions dispatches incoming frames until the connection ends, then
// cancels ctx so the writer loop exits.
func readActions(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, m *Match, isHost bool, logger *slog.Logger) {
	defer cancel()

	for {
		var req ActionRequest
		err := wsjson.Read(ctx, conn, &req)
		if err != nil {
			var ce websocket.CloseError
			if !errors.As(err, &ce) {
				logger.Debug("websocket read ended", "error", err)
			}
			return
		}

		if !isHost {
			reply(ctx, conn, "invalid or missing host key", logger)
			continue
		}
		_, err = m.DispatchFunc(func(state climate.GameState) (engine.Action, error) {
			return req.toAction(state)
		})
		if err != nil {
			msg := err.Error()
			if statusFor(err) == http.StatusInternalServerError {
				logger.Error("dispatching action", "match_id", m.ID, "type", req.Type, "error", err)
				msg = "internal error"
			}
			reply(ctx, conn, msg, logger)
		}
	}
}

func reply(ctx context.Context, conn *websocket.Conn, msg string, logger *slog.Logger) {
	if err := wsjson.Write(ctx, conn, WSMessage{Type: EventError, Error: msg}); err != nil {
		logger.Debug("websocket write failed", "error", err)
	}
}
