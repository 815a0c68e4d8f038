package webd

import (
	"encoding/json"
	"log/slog"

	"github.com/motionlog/motiond/fixdb/cache"
	"github.com/motionlog/motiond/types/fix"
	"github.com/olahol/melody"
)

type websocketAction string

var websocketActionPopulate websocketAction = "populate"

type broadcast struct {
	Action   websocketAction `json:"action"`
	Features []*fix.Fix      `json:"features"`
}

// initMelody sets up the websocket handler.
func (s *WebDaemon) initMelody() {
	s.melodyInstance = melody.New()

	// A fresh client gets the recent pushes replayed so its map is not
	// empty while it waits for the next live one.
	s.melodyInstance.HandleConnect(func(sess *melody.Session) {
		s.logger.Info("[websocket] connected", "remote", sess.Request.RemoteAddr)
		for _, v := range cache.LastPushTTLCache.Items() {
			bc := broadcast{
				Action:   websocketActionPopulate,
				Features: v.Value(),
			}
			b, _ := json.Marshal(bc)
			sess.Write(b)
		}
	})

	// Right now don't care about incoming messages from clients. Log and drop.
	s.melodyInstance.HandleMessage(func(sess *melody.Session, msg []byte) {
		s.logger.Info("[websocket] message", "msg", string(msg))
	})

	s.melodyInstance.HandleDisconnect(func(sess *melody.Session) {
		s.logger.Info("[websocket] disconnected", "remote", sess.Request.RemoteAddr)
	})

	s.melodyInstance.HandleError(func(sess *melody.Session, e error) {
		s.logger.Warn("[websocket] error", "error", e, "remote", sess.Request.RemoteAddr)
	})

	// Broadcast fix push events - as received - to all connected clients.
	// Population WILL ENFORCE validation, deduplication, and
	// classification, but THIS DATA IS NOT THE ULTIMATELY STORED DATA.
	// It is the data the mover sent us.
	pushes := make(chan []*fix.Fix)
	pushSub := s.feedPopulated.Subscribe(pushes)
	go func() {
		for {
			select {
			case features := <-pushes:
				bc := broadcast{
					Action:   websocketActionPopulate,
					Features: features,
				}
				b, err := json.Marshal(bc)
				if err != nil {
					slog.Error("Failed to marshal populate event", "error", err)
					continue
				}
				if err := s.melodyInstance.Broadcast(b); err != nil {
					slog.Warn("Failed to broadcast populate event", "error", err)
				}
			case err := <-pushSub.Err():
				slog.Error("Failed to subscribe to populate feed", "error", err)
				return
			}
		}
	}()
}
