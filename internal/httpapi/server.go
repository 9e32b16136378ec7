// Package httpapi HTTP-JSON API движка бронирования.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server echo-сервер API
type Server struct {
	echo   *echo.Echo
	logger *zap.Logger
}

// Option настройка сервера
type Option func(*options)

type options struct {
	ratePerMinute int
	rateBurst     int
}

// WithRateLimit включает ограничение запросов на пользователя; perMinute <= 0 отключает его
func WithRateLimit(perMinute, burst int) Option {
	return func(o *options) {
		o.ratePerMinute = perMinute
		o.rateBurst = burst
	}
}

// NewServer регистрирует маршруты поверх движка
func NewServer(engine *service.BookingService, logger *zap.Logger, opts ...Option) *Server {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	e.GET("/healthz", Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	middlewares := []echo.MiddlewareFunc{RequireUser()}
	if o.ratePerMinute > 0 {
		burst := o.rateBurst
		if burst <= 0 {
			burst = 1
		}
		middlewares = append(middlewares, RateLimit(o.ratePerMinute, burst, logger))
	}

	h := &Handler{engine: engine, logger: logger}
	register(e.Group("/v1", middlewares...), h)

	return &Server{echo: e, logger: logger}
}

func register(g *echo.Group, h *Handler) {
	// ---- Slots ----
	g.POST("/slots", h.CreateSlot)
	g.DELETE("/slots/:id", h.DeleteSlot)
	g.POST("/slots/:id/book", h.BookDirect)
	g.GET("/teachers/:id/slots", h.ListSlots)
	g.GET("/availability", h.AvailableSlots)

	// ---- Booking requests ----
	g.POST("/requests", h.CreateRequest)
	g.GET("/requests/:id", h.GetRequest)
	g.POST("/requests/:id/accept", h.AcceptRequest)
	g.POST("/requests/:id/reject", h.RejectRequest)
	g.DELETE("/requests/:id", h.CancelRequest)

	// ---- Sessions ----
	g.GET("/sessions/:id", h.GetSession)
	g.POST("/sessions/:id/cancel", h.CancelSession)

	// ---- Caller views ----
	g.GET("/me/requests", h.ListMyRequests)
	g.GET("/me/requests/incoming", h.ListIncomingRequests)
	g.GET("/me/sessions", h.ListMySessions)
	g.GET("/me/lessons", h.UpcomingLessons)
	g.GET("/me/dashboard", h.Dashboard)
	g.GET("/me/calendar", h.Calendar)
	g.GET("/me/teachers", h.ListTeachers)
	g.POST("/me/teachers/:id", h.Subscribe)
	g.DELETE("/me/teachers/:id", h.Unsubscribe)
	g.GET("/me/students", h.ListStudents)
}

// Handler возвращает http.Handler (для тестов и встраивания)
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start слушает addr до Shutdown
func (s *Server) Start(addr string) error {
	s.logger.Info("HTTP API listening", zap.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Health проверка живости для балансировщика
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Debug("HTTP request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency.Round(time.Microsecond)),
			)
			return nil
		},
	})
}
