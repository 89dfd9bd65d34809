package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mockview/mockview/internal/logger"
	"github.com/mockview/mockview/internal/voice"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The API carries no credentials; origin policy is the deployment's
	// reverse proxy's job.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// voiceMessage is one inbound message of the streaming protocol. Audio
// payloads arrive base64-encoded in JSON.
type voiceMessage struct {
	Type string `json:"type"`
	Data []byte `json:"data,omitempty"`
}

// handleVoice runs the streaming answer protocol on one websocket: audio
// messages yield partial events, stop yields a final event followed by a done
// event carrying the transcript and voice metrics. Any failure surfaces as a
// typed error event; the answer pipeline is never entered with partial voice
// data.
func (s *Server) handleVoice(w http.ResponseWriter, r *http.Request) {
	if s.transcribers == nil {
		s.writeJSONError(w, http.StatusNotImplemented, "voice streaming is not configured")
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	log := logger.WithFields(s.logger, logger.SessionFields(sessionID, "")...)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	transcriber, err := s.transcribers()
	if err != nil {
		log.Warn("transcriber unavailable", zap.Error(err))
		s.sendVoiceEvent(conn, log, voice.Event{Type: voice.EventError, Error: "transcriber unavailable"})
		return
	}

	stream := voice.NewStream(transcriber, time.Now())
	defer stream.Close()

	for {
		var msg voiceMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("voice socket closed", zap.Error(err))
			}
			return
		}

		switch msg.Type {
		case "audio":
			partial, err := stream.PushAudio(msg.Data)
			if err != nil {
				log.Warn("transcription failed", zap.Error(err))
				s.sendVoiceEvent(conn, log, voice.Event{Type: voice.EventError, Error: "transcription failed"})
				return
			}
			if partial != "" {
				s.sendVoiceEvent(conn, log, voice.Event{Type: voice.EventPartial, Text: partial})
			}

		case "stop":
			transcript, metrics, err := stream.Stop()
			if err != nil {
				log.Warn("voice stream finalization failed", zap.Error(err))
				s.sendVoiceEvent(conn, log, voice.Event{Type: voice.EventError, Error: err.Error()})
				return
			}
			s.sendVoiceEvent(conn, log, voice.Event{Type: voice.EventFinal, Text: transcript})
			s.sendVoiceEvent(conn, log, voice.Event{Type: voice.EventDone, Text: transcript, Metrics: metrics})
			return

		default:
			s.sendVoiceEvent(conn, log, voice.Event{Type: voice.EventError, Error: "unknown message type"})
		}
	}
}

func (s *Server) sendVoiceEvent(conn *websocket.Conn, log *zap.Logger, event voice.Event) {
	if err := conn.WriteJSON(event); err != nil {
		log.Debug("voice event write failed", zap.Error(err))
	}
}
