package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/guiltyguilty/disturb/internal/domain"
	apperrors "github.com/guiltyguilty/disturb/internal/platform/errors"
	"github.com/labstack/echo/v4"
)

type disturbResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (s *Server) registerAPIRoutes() {
	api := s.echo.Group("/api")
	api.GET("/elements", s.handleListElements)
	api.GET("/elements/:id", s.handleGetElement)
	api.POST("/elements/:id/disturb", s.handleDisturbElement)
}

func (s *Server) handleListElements(c echo.Context) error {
	response := map[string]any{"elements": s.elements.Elements()}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write elements response: %w", err)
	}
	return nil
}

func (s *Server) handleGetElement(c echo.Context) error {
	id := c.Param("id")

	info, err := s.elements.Element(id)
	if errors.Is(err, domain.ErrElementNotFound) {
		return apperrors.NotFoundError("element not found").WithField("element_id", id)
	}
	if err != nil {
		return apperrors.InternalError("failed to load element", err).WithField("element_id", id)
	}

	if err := c.JSON(http.StatusOK, info); err != nil {
		return fmt.Errorf("failed to write element response: %w", err)
	}
	return nil
}

func (s *Server) handleDisturbElement(c echo.Context) error {
	id := c.Param("id")

	text, err := s.elements.DisturbElement(c.Request().Context(), id)
	switch {
	case errors.Is(err, domain.ErrElementNotFound):
		return apperrors.NotFoundError("element not found").WithField("element_id", id)
	case errors.Is(err, domain.ErrServiceStopped):
		return apperrors.ConflictError("disturb service stopped", err).WithField("element_id", id)
	case err != nil:
		return apperrors.InternalError("failed to disturb element", err).WithField("element_id", id)
	}

	if err := c.JSON(http.StatusOK, disturbResponse{ID: id, Text: text}); err != nil {
		return fmt.Errorf("failed to write disturb response: %w", err)
	}
	return nil
}
