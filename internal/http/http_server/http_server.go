package http_server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/thanhkt275/RMS-BE-sub001/internal/http/rankinghandler"
	"github.com/thanhkt275/RMS-BE-sub001/internal/rankings"
	"github.com/thanhkt275/RMS-BE-sub001/internal/ws"
)

type httpServer struct {
	listenPort   uint16
	srv          http.Server
	ln           net.Listener
	wsSrv        *ws.Server
	rankingRelay *rankings.Relay
	ctx          context.Context
}

func NewHttpServer(ctx context.Context, listenPort uint16, wsSrv *ws.Server, rankingRelay *rankings.Relay) *httpServer {
	return &httpServer{
		listenPort:   listenPort,
		wsSrv:        wsSrv,
		rankingRelay: rankingRelay,
		ctx:          ctx,
	}
}

func (h *httpServer) Start() error {
	var err error
	listenAddr := fmt.Sprintf(":%d", h.listenPort)
	h.ln, err = net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	routerEngine := gin.New()
	routerEngine.Use(ginzap.RecoveryWithZap(zap.L(), true))

	// websocket endpoint
	routerEngine.GET("/ws", h.wsSrv.Handle)

	routerEngine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// inbound hook for the external ranking engine
	rh := rankinghandler.New(h.rankingRelay)
	rh.Register(routerEngine)

	h.srv = http.Server{
		Handler: routerEngine,
	}

	return h.srv.Serve(h.ln)
}

// Dispose gracefully shuts the HTTP server down.
// It waits up to 10 s for in-flight requests to finish.
func (h *httpServer) Dispose() error {
	ctx, cancel := context.WithTimeout(h.ctx, 10*time.Second)
	defer cancel()

	if err := h.srv.Shutdown(ctx); err != nil {
		zap.L().Error("http_dispose", zap.Error(err))
		return err // e.g. active conns didn't finish in time
	}

	if ctx.Err() == context.DeadlineExceeded {
		zap.L().Error("http_dispose", zap.Error(errors.New("shutdown timed out")))
		log.Println("shutdown timeout (10 s)")
	}

	return nil
}
