package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"WikiAnswers/internal/domain"
)

// QueryService is the pipeline surface the HTTP layer depends on.
type QueryService interface {
	Answer(ctx context.Context, query string) (domain.Answer, error)
}

// Server exposes the query pipeline over HTTP.
type Server struct {
	echo    *echo.Echo
	service QueryService
	logger  *slog.Logger
}

type queryRequest struct {
	Query string `json:"query"`
}

type imageResponse struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Caption     string `json:"caption"`
}

type queryResponse struct {
	Summary string          `json:"summary"`
	Images  []imageResponse `json:"images"`
}

// New builds the echo instance with routes registered.
func New(service QueryService, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, service: service, logger: logger}

	e.POST("/query", s.handleQuery)
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

func (s *Server) handleQuery(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	answer, err := s.service.Answer(c.Request().Context(), req.Query)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": domain.ErrEmptyQuery.Error()})
		}
		s.logger.Error("query failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": failureReason(err)})
	}

	images := make([]imageResponse, 0, len(answer.TopImages))
	for _, img := range answer.TopImages {
		images = append(images, imageResponse{
			Title:       img.Identifier,
			URL:         img.DisplayURL(),
			Description: img.Description,
			Caption:     img.Caption,
		})
	}

	return c.JSON(http.StatusOK, queryResponse{Summary: answer.Summary, Images: images})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	err := s.echo.Start(addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// failureReason maps a pipeline error to the stable reason surfaced to
// callers, keeping wrapped detail out of the response body.
func failureReason(err error) string {
	for _, kind := range []error{
		domain.ErrResolutionFailure,
		domain.ErrNotFound,
		domain.ErrFetchFailure,
		domain.ErrSummarization,
	} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return "internal error"
}
