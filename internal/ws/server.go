package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/thanhkt275/RMS-BE-sub001/internal/broadcast"
	"github.com/thanhkt275/RMS-BE-sub001/internal/display"
	"github.com/thanhkt275/RMS-BE-sub001/internal/events"
	"github.com/thanhkt275/RMS-BE-sub001/internal/scores"
	"github.com/thanhkt275/RMS-BE-sub001/internal/timer"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // must be < pongWait
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auth and origin policy are handled upstream of this gateway.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ConnContext carries the per-connection identity through handler dispatch.
type ConnContext struct {
	UserID string
	conn   *clientConn
}

type Server struct {
	hub      *Hub
	router   *Router
	emit     broadcast.Broadcaster
	displays display.Store
	timers   *timer.Engine
	bridge   *scores.Bridge
}

func NewServer(
	hub *Hub,
	emit broadcast.Broadcaster,
	displays display.Store,
	timers *timer.Engine,
	bridge *scores.Bridge,
) *Server {
	srv := &Server{
		hub:      hub,
		router:   NewRouter(),
		emit:     emit,
		displays: displays,
		timers:   timers,
		bridge:   bridge,
	}
	srv.registerHandlers() // ← all WS endpoints configured here
	return srv
}

// ---------------------------------------------------------------------------
//  Public: Gin entry-point
// ---------------------------------------------------------------------------

func (s *Server) Handle(ginCtx *gin.Context) {
	userID := ginCtx.Query("user_id")

	rawConn, err := upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.accept", zap.Error(err))
		return
	}
	rawConn.SetReadLimit(maxMessageSize)
	_ = rawConn.SetReadDeadline(time.Now().Add(pongWait))
	rawConn.SetPongHandler(func(string) error {
		return rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	wsConn := &clientConn{rawConn: rawConn}
	s.hub.track(wsConn)

	go s.reader(userID, wsConn)
	go s.pinger(wsConn)
}

// ---------------------------------------------------------------------------
//  Private helpers
// ---------------------------------------------------------------------------

func (s *Server) registerHandlers() {
	// 🔹 room membership -----------------------------------------------------
	Register(s.router, events.JoinTournament,
		func(ctx context.Context, cc *ConnContext, req events.JoinTournamentRequest) (*Reply, error) {
			s.hub.join(req.TournamentID, cc.conn)
			s.replayDisplaySettings(ctx, req.TournamentID, cc.conn)
			return nil, nil
		})

	Register(s.router, events.LeaveTournament,
		func(ctx context.Context, cc *ConnContext, req events.JoinTournamentRequest) (*Reply, error) {
			s.hub.leave(req.TournamentID, cc.conn)
			return nil, nil
		})

	Register(s.router, events.JoinFieldRoom,
		func(ctx context.Context, cc *ConnContext, req events.FieldRoomRequest) (*Reply, error) {
			s.hub.join(broadcast.FieldRoom(req.FieldID), cc.conn)
			return nil, nil
		})

	Register(s.router, events.LeaveFieldRoom,
		func(ctx context.Context, cc *ConnContext, req events.FieldRoomRequest) (*Reply, error) {
			s.hub.leave(broadcast.FieldRoom(req.FieldID), cc.conn)
			return nil, nil
		})

	// 🔹 ranking subscriptions: plain tournament-room membership plus an ack;
	// no separate ranking-room kind exists.
	Register(s.router, events.SubscribeRankings,
		func(ctx context.Context, cc *ConnContext, req events.RankingSubscriptionRequest) (*Reply, error) {
			s.hub.join(req.TournamentID, cc.conn)
			return &Reply{Event: events.RankingSubscriptionConfirmed, Body: events.RankingSubscriptionAck{
				TournamentID: req.TournamentID,
				StageID:      req.StageID,
				Subscribed:   true,
			}}, nil
		})

	Register(s.router, events.UnsubscribeRankings,
		func(ctx context.Context, cc *ConnContext, req events.RankingSubscriptionRequest) (*Reply, error) {
			s.hub.leave(req.TournamentID, cc.conn)
			return &Reply{Event: events.RankingUnsubscriptionConfirmed, Body: events.RankingSubscriptionAck{
				TournamentID: req.TournamentID,
				StageID:      req.StageID,
				Subscribed:   false,
			}}, nil
		})

	// 🔹 relayed events: payload is forwarded untouched, only the routing
	// fields are read.
	for _, event := range []string{
		events.MatchUpdate,
		events.ScoreUpdate,
		events.MatchStateChange,
		events.TimerUpdate,
	} {
		s.registerRelay(event)
	}

	Register(s.router, events.Announcement,
		func(ctx context.Context, cc *ConnContext, req events.AnnouncementEvent) (*Reply, error) {
			s.emit.Emit(events.Announcement, events.Scope{TournamentID: req.TournamentID, FieldID: req.FieldID}, req)
			return nil, nil
		})

	Register(s.router, events.DisplayModeChange,
		func(ctx context.Context, cc *ConnContext, req events.DisplaySettings) (*Reply, error) {
			if req.UpdatedAt == 0 {
				req.UpdatedAt = time.Now().UnixMilli()
			}
			s.emit.Emit(events.DisplayModeChange, events.Scope{TournamentID: req.TournamentID, FieldID: req.FieldID}, req)
			return nil, nil
		})

	// 🔹 scores --------------------------------------------------------------
	Register(s.router, events.ScoreUpdateRealtime,
		func(ctx context.Context, cc *ConnContext, req events.RealtimeScoreUpdate) (*Reply, error) {
			return nil, s.bridge.StreamRealtime(req)
		})

	Register(s.router, events.PersistScores,
		func(ctx context.Context, cc *ConnContext, req events.PersistScoresRequest) (*Reply, error) {
			if req.SubmittedBy == "" {
				req.SubmittedBy = cc.UserID
			}
			res, err := s.bridge.Persist(ctx, req)
			if err != nil {
				return nil, err
			}
			return &Reply{Event: events.PersistenceResult, Body: res}, nil
		})

	// 🔹 timer ---------------------------------------------------------------
	Register(s.router, events.StartTimer,
		func(ctx context.Context, cc *ConnContext, req events.TimerStartRequest) (*Reply, error) {
			return nil, s.timers.Start(req.TournamentID, req.FieldID, req.DurationMs, req.RemainingMs)
		})

	Register(s.router, events.PauseTimer,
		func(ctx context.Context, cc *ConnContext, req events.TimerPauseRequest) (*Reply, error) {
			return nil, s.timers.Pause(req.TournamentID, req.FieldID, req.RemainingMs)
		})

	Register(s.router, events.ResetTimer,
		func(ctx context.Context, cc *ConnContext, req events.TimerResetRequest) (*Reply, error) {
			s.timers.Reset(req.TournamentID, req.FieldID, req.DurationMs)
			return nil, nil
		})
}

// registerRelay forwards the event's payload byte-for-byte to the room(s)
// named by its routing fields.
func (s *Server) registerRelay(event string) {
	Register(s.router, event,
		func(ctx context.Context, cc *ConnContext, body json.RawMessage) (*Reply, error) {
			var scope events.Scope
			if len(body) > 0 {
				if err := json.Unmarshal(body, &scope); err != nil {
					return nil, err
				}
			}
			s.emit.Emit(event, scope, body)
			return nil, nil
		})
}

// replayDisplaySettings pushes the tournament's last display settings to the
// joining connection only, so a late joiner sees current audience-display
// state without waiting for the next change event.
func (s *Server) replayDisplaySettings(ctx context.Context, tournamentID string, conn *clientConn) {
	settings, ok, err := s.displays.Get(ctx, tournamentID)
	if err != nil {
		zap.L().Warn("ws.display_replay", zap.String("tournament", tournamentID), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	_ = conn.writeJSON(Reply{Event: events.DisplayModeChange, Body: settings})
}

func (s *Server) reader(userID string, conn *clientConn) {
	defer func() {
		s.hub.untrack(conn)
		_ = conn.rawConn.Close()
	}()

	cc := &ConnContext{UserID: userID, conn: conn}

	for {
		_, data, err := conn.rawConn.ReadMessage()
		if err != nil {
			return // client closed or errored
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			_ = conn.writeJSON(Reply{Event: "error", Body: ErrorBody{Error: "bad json"}})
			continue
		}

		// No dispatch deadline: a hang in the persistence collaborator must
		// stall only this request/response pair, not other connections.
		reply, err := s.router.dispatch(context.Background(), cc, env)

		// ---- error -> {"event":"error", "body":{...}} ---------------
		if err != nil {
			_ = conn.writeJSON(Reply{Event: "error", Body: ErrorBody{Error: err.Error()}})
			continue
		}

		// ---- direct reply, sender only ------------------------------
		if reply != nil {
			_ = conn.writeJSON(reply)
		}
	}
}

func (s *Server) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.ping(); err != nil {
			_ = conn.rawConn.Close()
			return
		}
	}
}
