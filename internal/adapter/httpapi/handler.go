package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"news-engine/internal/domain"
	"news-engine/internal/usecase"
)

// Handler exposes the search, recommendation and indexing endpoints.
type Handler struct {
	searchUsecase    usecase.SearchArticlesUsecase
	recommendUsecase usecase.RecommendArticlesUsecase
	indexUsecase     usecase.IndexArticlesUsecase
}

func NewHandler(
	searchUsecase usecase.SearchArticlesUsecase,
	recommendUsecase usecase.RecommendArticlesUsecase,
	indexUsecase usecase.IndexArticlesUsecase,
) *Handler {
	return &Handler{
		searchUsecase:    searchUsecase,
		recommendUsecase: recommendUsecase,
		indexUsecase:     indexUsecase,
	}
}

// Register wires the routes onto the echo instance.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/v1/search", h.Search)
	e.GET("/v1/users/:id/recommendations", h.Recommendations)
	e.POST("/internal/index", h.Index)
}

// Search handles GET /v1/search. All parameters are optional; an empty query
// serves a plain filtered listing.
func (h *Handler) Search(c echo.Context) error {
	input := usecase.SearchInput{
		Query:  strings.TrimSpace(c.QueryParam("q")),
		Source: c.QueryParam("source"),
	}

	if raw := c.QueryParam("category"); raw != "" {
		cat := domain.Category(strings.ToLower(raw))
		if !domain.IsKnownCategory(cat) {
			return badRequest(c, "unknown category: "+raw)
		}
		input.Category = cat
	}
	if raw := c.QueryParam("topics"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			topic, ok := domain.ParseTopic(part)
			if !ok {
				return badRequest(c, "unknown topic: "+part)
			}
			input.Topics = append(input.Topics, topic)
		}
	}

	var err error
	if input.DateFrom, err = parseDate(c.QueryParam("from")); err != nil {
		return badRequest(c, "invalid from date")
	}
	if input.DateTo, err = parseDate(c.QueryParam("to")); err != nil {
		return badRequest(c, "invalid to date")
	}
	if input.Page, err = parseIntParam(c.QueryParam("page"), 1); err != nil {
		return badRequest(c, "invalid page")
	}
	if input.Limit, err = parseIntParam(c.QueryParam("limit"), 0); err != nil {
		return badRequest(c, "invalid limit")
	}

	out, err := h.searchUsecase.Execute(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidDateRange) {
			return badRequest(c, err.Error())
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"error":   "search failed",
		})
	}

	resp := echo.Map{
		"success": true,
		"engine":  out.Engine,
		"page":    out.Page,
		"limit":   out.Limit,
		"data":    articlesJSON(out.Articles),
	}
	if out.Engine == usecase.EngineVector {
		resp["count"] = len(out.Articles)
	} else {
		resp["total"] = out.Total
	}
	return c.JSON(http.StatusOK, resp)
}

// Recommendations handles GET /v1/users/:id/recommendations. An empty list is
// a normal response, never an error.
func (h *Handler) Recommendations(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return badRequest(c, "user id is required")
	}
	limit, err := parseIntParam(c.QueryParam("limit"), 10)
	if err != nil {
		return badRequest(c, "invalid limit")
	}

	out := h.recommendUsecase.Recommend(c.Request().Context(), userID, limit)
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"engine":  out.Engine,
		"count":   len(out.Articles),
		"data":    articlesJSON(out.Articles),
	})
}

type indexRequest struct {
	ArticleIDs []string `json:"articleIds"`
	All        bool     `json:"all"`
}

// Index handles POST /internal/index, mirroring the named articles (or the
// whole store) into the vector index.
func (h *Handler) Index(c echo.Context) error {
	var req indexRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if !req.All && len(req.ArticleIDs) == 0 {
		return badRequest(c, "articleIds or all is required")
	}

	var indexed int
	var err error
	if req.All {
		indexed, err = h.indexUsecase.IndexAll(c.Request().Context())
	} else {
		indexed, err = h.indexUsecase.IndexByIDs(c.Request().Context(), req.ArticleIDs)
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"indexed": indexed,
			"error":   err.Error(),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"indexed": indexed,
	})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"success": false,
		"error":   msg,
	})
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

func parseIntParam(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("not a positive integer")
	}
	return n, nil
}

type articleJSON struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Topics      []string `json:"topics"`
	Source      string   `json:"source"`
	URL         string   `json:"url"`
	PublishedAt string   `json:"publishedAt"`
}

func articlesJSON(articles []domain.Article) []articleJSON {
	out := make([]articleJSON, len(articles))
	for i, a := range articles {
		topics := make([]string, len(a.Topics))
		for j, t := range a.Topics {
			topics[j] = string(t)
		}
		out[i] = articleJSON{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			Category:    string(a.Category),
			Topics:      topics,
			Source:      a.Source,
			URL:         a.URL,
			PublishedAt: a.PublishedAt.UTC().Format(time.RFC3339),
		}
	}
	return out
}
