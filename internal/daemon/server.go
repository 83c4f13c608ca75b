package daemon

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"treesync/internal/logger"
	"treesync/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Controller interface {
	Status() Status
	Trigger(reason string) bool
}

type HistorySource interface {
	GetRecent(limit int) ([]model.History, error)
}

type Server struct {
	echo    *echo.Echo
	ctl     Controller
	history HistorySource
	port    int
	stopCh  chan struct{}
}

func NewServer(ctl Controller, history HistorySource, port int) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:    e,
		ctl:     ctl,
		history: history,
		port:    port,
		stopCh:  make(chan struct{}, 1),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/status", s.handleStatus)
	s.echo.GET("/history", s.handleHistory)
	s.echo.POST("/sync", s.handleSync)
	s.echo.POST("/stop", s.handleStop)
}

func (s *Server) Start() {
	go func() {
		addr := "127.0.0.1:" + strconv.Itoa(s.port)
		logger.Log.Info("daemon server started",
			zap.String("addr", addr))

		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("daemon server error", zap.Error(err))
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) StopCh() <-chan struct{} {
	return s.stopCh
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.ctl.Status())
}

func (s *Server) handleSync(c echo.Context) error {
	if !s.ctl.Trigger("requested") {
		return c.JSON(http.StatusOK, map[string]string{"status": "already queued"})
	}

	return c.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleStop(c echo.Context) error {
	select {
	case s.stopCh <- struct{}{}:
	default:
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "stopping"})
}

func (s *Server) handleHistory(c echo.Context) error {
	n := 20
	if nStr := c.QueryParam("n"); nStr != "" {
		parsed, err := strconv.Atoi(nStr)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "n must be a positive integer"})
		}
		n = parsed
	}

	histories, err := s.history.GetRecent(n)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, histories)
}
