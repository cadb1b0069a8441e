package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (r *routes) search(c echo.Context) error {
	limit := 0
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return badRequest(c, "limit must be an integer")
	}

	result, err := r.h.Search.Handle(c.Request().Context(), c.QueryParam("q"), limit)
	if err != nil {
		return r.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
