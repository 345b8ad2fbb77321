package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prepworks/prepworks-backend/internal/engine"
	"github.com/prepworks/prepworks-backend/internal/middleware"
	"github.com/prepworks/prepworks-backend/internal/model"
	"github.com/prepworks/prepworks-backend/internal/service"
	ws "github.com/prepworks/prepworks-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// timeSyncInterval is how often the server pushes the authoritative
// remaining time to connected clients.
const timeSyncInterval = 10 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty origin list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams a live attempt over WebSocket: answers and navigation
// inbound, timer syncs and expiry pushes outbound.
type WSHandler struct {
	sessions *service.SessionService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/attempts/:attempt_id/stream
// Upgrades to WebSocket for real-time attempt interaction.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	attemptID, err := uuid.Parse(c.Param("attempt_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attempt ID"})
		return
	}

	// Verify the attempt is live and owned before upgrading.
	if _, err := h.sessions.State(claims.StudentID, attemptID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no live attempt"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	wsLog := h.log.With().
		Int("student_id", claims.StudentID).
		Str("attempt_id", attemptID.String()).
		Logger()

	events, cancel, err := h.sessions.Subscribe(claims.StudentID, attemptID)
	if err != nil {
		conn.WriteError("no live attempt")
		return
	}
	defer cancel()

	done := make(chan struct{})
	defer close(done)
	go h.pushLoop(conn, wsLog, claims.StudentID, attemptID, events, done)

	wsLog.Info().Msg("Student connected")

	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		h.dispatch(conn, wsLog, claims.StudentID, attemptID, &msg)
	}
}

// pushLoop forwards session events and periodic time syncs until the
// connection goes away.
func (h *WSHandler) pushLoop(conn *ws.Conn, wsLog zerolog.Logger, studentID int, attemptID uuid.UUID, events <-chan service.SessionEvent, done <-chan struct{}) {
	ticker := time.NewTicker(timeSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case service.EventExpired:
				conn.WriteTyped(ws.ExpiredResponse{Event: ws.EventExpired})
			case service.EventSubmitted:
				if ev.Result != nil {
					conn.WriteTyped(ws.SubmittedResponse{Event: ws.EventSubmitted, Result: *ev.Result})
				}
			}

		case <-ticker.C:
			snap, err := h.sessions.State(studentID, attemptID)
			if err != nil {
				return
			}
			if snap.TimerState != engine.TimerRunning {
				continue
			}
			if err := conn.WriteTyped(ws.TimeSyncResponse{
				Event:            ws.EventTimeSync,
				RemainingSeconds: snap.RemainingSeconds,
			}); err != nil {
				wsLog.Debug().Err(err).Msg("Time sync write failed")
				return
			}
		}
	}
}

func (h *WSHandler) dispatch(conn *ws.Conn, wsLog zerolog.Logger, studentID int, attemptID uuid.UUID, msg *ws.RequestPayload) {
	switch msg.Action {
	case ws.ActionAnswer:
		err := h.sessions.Answer(studentID, attemptID, model.AnswerRequest{
			QuestionID:  msg.QuestionID,
			Letter:      msg.Letter,
			OptionIndex: msg.OptionIndex,
			Confidence:  msg.Confidence,
		})
		if err != nil {
			conn.WriteError(err.Error())
			return
		}
		conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, QuestionID: msg.QuestionID})

	case ws.ActionNavigate:
		snap, err := h.sessions.Navigate(studentID, attemptID, msg.Index)
		if err != nil {
			conn.WriteError(err.Error())
			return
		}
		conn.WriteTyped(ws.StateResponse{Event: ws.EventState, Snapshot: snap})

	case ws.ActionRequestSubmit:
		if err := h.sessions.RequestSubmit(studentID, attemptID); err != nil {
			conn.WriteError(err.Error())
			return
		}
		h.writeState(conn, studentID, attemptID)

	case ws.ActionCancelSubmit:
		if err := h.sessions.CancelSubmit(studentID, attemptID); err != nil {
			conn.WriteError(err.Error())
			return
		}
		h.writeState(conn, studentID, attemptID)

	case ws.ActionSubmit:
		result, err := h.sessions.Submit(studentID, attemptID)
		if err != nil {
			conn.WriteError(err.Error())
			return
		}
		conn.WriteTyped(ws.SubmittedResponse{Event: ws.EventSubmitted, Result: result})

	case ws.ActionState:
		h.writeState(conn, studentID, attemptID)

	case ws.ActionPing:
		conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})

	default:
		wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		conn.WriteError("unknown action: " + string(msg.Action))
	}
}

func (h *WSHandler) writeState(conn *ws.Conn, studentID int, attemptID uuid.UUID) {
	snap, err := h.sessions.State(studentID, attemptID)
	if err != nil {
		conn.WriteError(err.Error())
		return
	}
	conn.WriteTyped(ws.StateResponse{Event: ws.EventState, Snapshot: snap})
}
