package credential

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/poorbengunn/nostr-dojo/core"
)

// EventResolver is the slice of the event store the handler needs to load
// a grant for verification. Satisfied by store.Service.
type EventResolver interface {
	GetByID(ctx context.Context, id string) (core.Event, error)
}

// Handler exposes the credential index and the verifier over HTTP for
// diagnostics. The relay wire protocol does not depend on these routes.
type Handler struct {
	service Service
	events  EventResolver
}

func NewHandler(service Service, events EventResolver) *Handler {
	return &Handler{service, events}
}

func (h Handler) Get(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Credential.Handler.Get")
	defer span.End()

	id := c.Param("id")
	credential, err := h.service.GetByEventID(ctx, id)
	if err != nil {
		if _, ok := err.(core.ErrorNotFound); ok {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "credential not found"})
		}
		span.RecordError(err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": credential})
}

func (h Handler) Verify(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Credential.Handler.Verify")
	defer span.End()

	id := c.Param("id")
	ev, err := h.events.GetByID(ctx, id)
	if err != nil {
		if _, ok := err.(core.ErrorNotFound); ok {
			return c.JSON(http.StatusNotFound, echo.Map{"status": "error", "message": "event not found"})
		}
		span.RecordError(err)
		return err
	}

	result, err := h.service.Verify(ctx, ev, time.Now())
	if err != nil {
		span.RecordError(err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": result})
}

func (h Handler) List(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Credential.Handler.List")
	defer span.End()

	var credentials []core.Credential
	var err error

	if recipient := c.QueryParam("recipient"); recipient != "" {
		credentials, err = h.service.GetByRecipient(ctx, recipient)
	} else if issuer := c.QueryParam("issuer"); issuer != "" {
		credentials, err = h.service.GetByIssuer(ctx, issuer)
	} else if schemaAddr := c.QueryParam("schema"); schemaAddr != "" {
		if class := c.QueryParam("class"); class != "" {
			credentials, err = h.service.GetByClass(ctx, schemaAddr, class)
		} else {
			credentials, err = h.service.GetBySchema(ctx, schemaAddr)
		}
	} else {
		return c.JSON(http.StatusBadRequest, echo.Map{"status": "error", "message": "missing query parameter"})
	}

	if err != nil {
		span.RecordError(err)
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "content": credentials})
}
