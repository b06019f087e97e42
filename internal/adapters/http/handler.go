package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/randomtoy/memory-match/internal/app"
	"github.com/randomtoy/memory-match/internal/domain"
	"github.com/randomtoy/memory-match/internal/render"
)

const sessionsPath = "/v1/game/sessions"

type Handler struct {
	games *app.GameService
	home  *app.HomeService
}

func NewHandler(games *app.GameService, home *app.HomeService) *Handler {
	return &Handler{games: games, home: home}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)

	e.GET("/", h.Home)
	e.POST("/v1/home/entries/:id/select", h.SelectEntry)

	e.GET("/game", h.GameScreen)
	g := e.Group(sessionsPath)
	g.POST("", h.StartSession)
	g.GET("/:id", h.GetSession)
	g.POST("/:id/flip", h.Flip)
	g.POST("/:id/reset", h.Reset)
	g.DELETE("/:id", h.EndSession)

	e.GET("/v1/highscore", h.GetHighScore)
	e.DELETE("/v1/highscore", h.ClearHighScore)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) Home(c echo.Context) error {
	ctx := c.Request().Context()
	entries, err := h.home.Entries(ctx)
	if err != nil {
		return mapError(c, err)
	}
	best := h.games.HighScore(ctx)
	if c.QueryParam("format") == "text" {
		return c.String(http.StatusOK, render.Home(entries, best))
	}
	return c.JSON(http.StatusOK, HomeResponse{Entries: entries, HighScore: best})
}

func (h *Handler) SelectEntry(c echo.Context) error {
	sel, err := h.home.Select(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(c, err)
	}
	resp := SelectResponse{Navigate: sel.Navigate}
	if sel.Notice != nil {
		n := toToastResponse(*sel.Notice)
		resp.Notice = &n
	}
	return c.JSON(http.StatusOK, resp)
}

// GameScreen describes how to start a game. Sessions are only created by
// POST /v1/game/sessions.
func (h *Handler) GameScreen(c echo.Context) error {
	return c.JSON(http.StatusOK, GameScreenResponse{
		Start:     Link{Method: http.MethodPost, Href: sessionsPath},
		HighScore: h.games.HighScore(c.Request().Context()),
	})
}

func (h *Handler) StartSession(c echo.Context) error {
	snap, err := h.games.StartSession(c.Request().Context())
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusCreated, toSessionResponse(snap))
}

func (h *Handler) GetSession(c echo.Context) error {
	ctx := c.Request().Context()
	snap, err := h.games.Session(ctx, c.Param("id"))
	if err != nil {
		return mapError(c, err)
	}
	if c.QueryParam("format") == "text" {
		return c.String(http.StatusOK, render.Board(snap, h.games.HighScore(ctx)))
	}
	return c.JSON(http.StatusOK, toSessionResponse(snap))
}

func (h *Handler) Flip(c echo.Context) error {
	var req FlipRequest
	if err := c.Bind(&req); err != nil || req.Tile == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "body must be {\"tile\": <id>}"})
	}

	snap, err := h.games.Flip(c.Request().Context(), c.Param("id"), *req.Tile)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(snap))
}

func (h *Handler) Reset(c echo.Context) error {
	snap, err := h.games.Reset(c.Request().Context(), c.Param("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(snap))
}

func (h *Handler) EndSession(c echo.Context) error {
	if err := h.games.End(c.Request().Context(), c.Param("id")); err != nil {
		return mapError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetHighScore(c echo.Context) error {
	return c.JSON(http.StatusOK, HighScoreResponse{HighScore: h.games.HighScore(c.Request().Context())})
}

func (h *Handler) ClearHighScore(c echo.Context) error {
	if err := h.games.ClearHighScore(c.Request().Context()); err != nil {
		return mapError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func mapError(c echo.Context, err error) error {
	requestID, _ := c.Get("request_id").(string)

	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrTileNotFound),
		errors.Is(err, domain.ErrEntryNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrFlipRejected), errors.Is(err, domain.ErrSessionClosed):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		slog.Error("internal error", "request_id", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
