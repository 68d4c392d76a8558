package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"ytlearn/internal/domain"
	"ytlearn/internal/session"
)

// Engine is the transport-facing subset of the service engine.
type Engine interface {
	Ingest(ctx context.Context, ref string) (*session.Session, bool, error)
	Ask(ctx context.Context, id, question string) (string, error)
}

// New builds the HTTP API around the engine: POST /summary ingests a video
// and returns its summary, POST /ask answers a question against an ingested
// session.
func New(engine Engine, logger *log.Logger) *echo.Echo {
	if logger == nil {
		logger = log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
	}))

	h := &handler{engine: engine}
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.POST("/summary", h.summary)
	e.POST("/ask", h.ask)
	return e
}

type handler struct {
	engine Engine
}

type summaryRequest struct {
	URL string `json:"url"`
}

type summaryResponse struct {
	SessionID string `json:"session_id"`
	Summary   string `json:"summary"`
}

type askRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (h *handler) summary(c echo.Context) error {
	var req summaryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}
	sess, _, err := h.engine.Ingest(c.Request().Context(), req.URL)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, summaryResponse{SessionID: sess.ID, Summary: sess.Summary})
}

func (h *handler) ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.SessionID == "" || req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id and question are required")
	}
	answer, err := h.engine.Ask(c.Request().Context(), req.SessionID, req.Question)
	if err != nil {
		return echo.NewHTTPError(statusFor(err), err.Error())
	}
	return c.JSON(http.StatusOK, askResponse{Answer: answer})
}

// statusFor maps the engine's error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrInvalidReference):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrTranscriptUnavailable),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyTranscript):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrGenerationUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
