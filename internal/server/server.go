// internal/server/server.go
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tamzrod/register-poller/internal/config"
	"github.com/tamzrod/register-poller/internal/status"
	"github.com/tamzrod/register-poller/internal/writer"
)

type Server struct {
	port    uint
	httpLog bool
	unitID  string
	tracker *status.Tracker
	latest  *writer.Latest
}

func NewServer(cfg config.Config, tracker *status.Tracker, latest *writer.Latest) *http.Server {
	s := &Server{
		port:    cfg.HTTP.Port,
		httpLog: cfg.HTTP.Log,
		unitID:  cfg.Device.ID,
		tracker: tracker,
		latest:  latest,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
