// Package httpapi exposes the mirror and the local actions over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"totalmixctl/internal/display"
	"totalmixctl/internal/logger"
	"totalmixctl/internal/mixer"
	"totalmixctl/internal/totalmix"
)

// Mixer is what the handlers need from mixer.Controller.
type Mixer interface {
	Do(a mixer.Action) error
	Snapshot() totalmix.Snapshot
}

type Server struct {
	log logger.Logger
	srv *http.Server
}

// New конструктор.
func New(log logger.Logger, listen string, m Mixer) *Server {
	gin.SetMode(gin.ReleaseMode)
	return &Server{
		log: log,
		srv: &http.Server{
			Addr:              listen,
			Handler:           NewRouter(log, m),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *Server) Start(_ context.Context) error {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Module("http").Errorf("listen %s: %v", s.srv.Addr, err)
		}
	}()
	s.log.Module("http").Infof("listening on %s", s.srv.Addr)
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// NewRouter builds the routes on top of m.
func NewRouter(log logger.Logger, m Mixer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLog(log))

	api := r.Group("/api")
	api.GET("/channels", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"channels": m.Snapshot().Channels})
	})
	api.GET("/channels/:name", func(c *gin.Context) {
		st, ok := m.Snapshot().Channel(c.Param("name"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
			return
		}
		c.JSON(http.StatusOK, st)
	})
	api.GET("/summary", func(c *gin.Context) {
		s := m.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"volume_db":      s.VolumeDB,
			"text":           display.Summary(s),
			"uniform_volume": s.UniformVolume,
			"mute_all_armed": s.MuteAllArmed,
			"solo_active":    s.SoloActive,
			"solo_target":    s.SoloTarget,
			"representative": s.Representative,
		})
	})

	for _, op := range []mixer.Op{mixer.OpMute, mixer.OpUnmute, mixer.OpToggleMute, mixer.OpSolo} {
		op := op
		api.POST("/channels/:name/"+op.String(), func(c *gin.Context) {
			run(c, m, mixer.Action{Op: op, Channel: c.Param("name")})
		})
	}
	api.POST("/channels/:name/volume", func(c *gin.Context) {
		var body struct {
			DB     *float64 `json:"db"`
			Volume *float64 `json:"volume"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		a := mixer.Action{Channel: c.Param("name")}
		switch {
		case body.DB != nil:
			a.Op, a.Value = mixer.OpSetVolumeDB, *body.DB
		case body.Volume != nil:
			if !(*body.Volume >= 0 && *body.Volume <= 1) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "volume must be within 0..1"})
				return
			}
			a.Op, a.Value = mixer.OpSetVolume, *body.Volume
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": `need {"db": x} or {"volume": 0..1}`})
			return
		}
		run(c, m, a)
	})
	api.POST("/group/:action", func(c *gin.Context) {
		op, err := mixer.ParseOp(c.Param("action"))
		if err != nil || op.PerChannel() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown group action"})
			return
		}
		a := mixer.Action{Op: op}
		if op == mixer.OpAdjustVolume {
			var body struct {
				DB *float64 `json:"db"`
			}
			if err := c.ShouldBindJSON(&body); err != nil || body.DB == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": `need {"db": x}`})
				return
			}
			a.Value = *body.DB
		}
		run(c, m, a)
	})

	return r
}

func run(c *gin.Context, m Mixer, a mixer.Action) {
	if err := a.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := m.Do(a); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, totalmix.ErrUnknownChannel):
			status = http.StatusNotFound
		case errors.Is(err, totalmix.ErrNotFinite):
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": a.String()})
}

func requestLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.With(logger.Fields{
			"module":  "http",
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Debug("request")
	}
}
