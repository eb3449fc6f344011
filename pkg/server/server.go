package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/shishobooks/catalog/pkg/binder"
	"github.com/shishobooks/catalog/pkg/books"
	"github.com/shishobooks/catalog/pkg/config"
	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/testutils"
	"github.com/shishobooks/catalog/pkg/version"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e, err := newEcho(cfg, db)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func newEcho(cfg *config.Config, db *bun.DB) (*echo.Echo, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	e.GET("/", root)

	booksGroup := e.Group("/api/books")
	books.RegisterRoutesWithGroup(booksGroup, db)

	if cfg.IsTest() {
		testutils.RegisterRoutes(e, db)
	}

	e.RouteNotFound("/*", notFoundHandler)
	e.HTTPErrorHandler = errcodes.NewHandler(cfg.IsDevelopment()).Handle

	return e, nil
}

type rootResponse struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func root(c echo.Context) error {
	return errors.WithStack(c.JSON(http.StatusOK, rootResponse{
		Message: "Smart Library System API",
		Status:  "running",
		Version: version.Version,
		Endpoints: map[string]string{
			"health":      "GET /health",
			"list_books":  "GET /api/books",
			"add_book":    "POST /api/books",
			"delete_book": "DELETE /api/books/:id",
		},
	}))
}

func notFoundHandler(c echo.Context) error {
	return errcodes.RouteNotFound(c.Request().URL.RequestURI())
}
