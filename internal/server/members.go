package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ersonp/kin-core/internal/domain/entities"
	"github.com/ersonp/kin-core/internal/domain/services"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type batchBody struct {
	Intents []entities.Intent `json:"intents"`
}

func (r *routes) createMember(c echo.Context) error {
	body := new(services.MemberInput)
	if err := c.Bind(body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	result, err := r.h.Members.HandleAdd(c.Request().Context(), *body)
	if err != nil {
		return r.fail(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

func (r *routes) listMembers(c echo.Context) error {
	limit, offset := defaultListLimit, 0
	err := echo.QueryParamsBinder(c).
		Int("limit", &limit).
		Int("offset", &offset).
		BindError()
	if err != nil || limit < 1 || offset < 0 {
		return badRequest(c, "limit and offset must be non-negative integers")
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	people, err := r.h.Members.HandleList(c.Request().Context(), c.QueryParam("q"), limit, offset)
	if err != nil {
		return r.fail(c, err)
	}
	if people == nil {
		people = []*entities.Person{}
	}
	return c.JSON(http.StatusOK, people)
}

func (r *routes) getMember(c echo.Context) error {
	person, err := r.h.Members.HandleGet(c.Request().Context(), c.Param("id"))
	if err != nil {
		return r.fail(c, err)
	}
	return c.JSON(http.StatusOK, person)
}

func (r *routes) deleteMember(c echo.Context) error {
	if err := r.h.Members.HandleDelete(c.Request().Context(), c.Param("id")); err != nil {
		return r.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// materialize applies a batch of intents against the member in the path.
// Partial failures answer 207 with every per-intent outcome.
func (r *routes) materialize(c echo.Context) error {
	body := new(batchBody)
	if err := c.Bind(body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(body.Intents) == 0 {
		return badRequest(c, "intents is required")
	}

	result, err := r.h.Materialize.HandleBatch(c.Request().Context(), entities.BatchRequest{
		FocalID: c.Param("id"),
		Intents: body.Intents,
	})
	if err != nil {
		return r.fail(c, err)
	}

	status := http.StatusOK
	if result.PartialFailure() {
		status = http.StatusMultiStatus
	}
	return c.JSON(status, result)
}
