//go:generate go run go.uber.org/mock/mockgen -source=client.go -destination=mock/client.go
// Package client is a small relay client used by the diagnostic tooling
// and integration tests.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/poorbengunn/nostr-dojo/core"
)

const (
	defaultTimeout = 10 * time.Second
)

var tracer = otel.Tracer("client")

type Client interface {
	Publish(ctx context.Context, ev core.Event) (bool, string, error)
	Fetch(ctx context.Context, filters []core.Filter) ([]core.Event, error)
	VerifyCredential(ctx context.Context, domain, eventID string) (core.VerifyResult, error)
	Close() error
}

type client struct {
	ws *websocket.Conn
}

// Dial opens a websocket connection to a relay url (ws:// or wss://).
func Dial(ctx context.Context, url string) (Client, error) {
	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = defaultTimeout

	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial relay")
	}

	return &client{ws: ws}, nil
}

func (c *client) Close() error {
	return c.ws.Close()
}

// Publish sends one event and waits for its OK verdict.
func (c *client) Publish(ctx context.Context, ev core.Event) (bool, string, error) {
	ctx, span := tracer.Start(ctx, "Client.Publish")
	defer span.End()

	err := c.ws.WriteJSON([]any{"EVENT", ev})
	if err != nil {
		span.RecordError(err)
		return false, "", err
	}

	deadline := time.Now().Add(defaultTimeout)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	c.ws.SetReadDeadline(deadline)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			span.RecordError(err)
			return false, "", err
		}

		var frame []json.RawMessage
		if json.Unmarshal(data, &frame) != nil || len(frame) < 4 {
			continue
		}

		var label, id string
		if json.Unmarshal(frame[0], &label) != nil || label != "OK" {
			continue
		}
		if json.Unmarshal(frame[1], &id) != nil || id != ev.ID {
			continue
		}

		var accepted bool
		var reason string
		json.Unmarshal(frame[2], &accepted)
		json.Unmarshal(frame[3], &reason)
		return accepted, reason, nil
	}
}

// Fetch runs one subscription to end of stored events and closes it.
func (c *client) Fetch(ctx context.Context, filters []core.Filter) ([]core.Event, error) {
	ctx, span := tracer.Start(ctx, "Client.Fetch")
	defer span.End()

	subID := fmt.Sprintf("fetch-%d", time.Now().UnixNano())

	frame := []any{"REQ", subID}
	for _, f := range filters {
		frame = append(frame, f)
	}
	err := c.ws.WriteJSON(frame)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	deadline := time.Now().Add(defaultTimeout)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	c.ws.SetReadDeadline(deadline)

	var events []core.Event
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		var parts []json.RawMessage
		if json.Unmarshal(data, &parts) != nil || len(parts) < 2 {
			continue
		}

		var label, id string
		if json.Unmarshal(parts[0], &label) != nil {
			continue
		}
		if json.Unmarshal(parts[1], &id) != nil || id != subID {
			continue
		}

		switch label {
		case "EVENT":
			if len(parts) < 3 {
				continue
			}
			var ev core.Event
			if json.Unmarshal(parts[2], &ev) == nil {
				events = append(events, ev)
			}
		case "EOSE":
			c.ws.WriteJSON([]any{"CLOSE", subID})
			return events, nil
		case "CLOSED":
			return events, nil
		}
	}
}

// VerifyCredential asks a relay's diagnostic endpoint for the verification
// outcome of a stored grant.
func (c *client) VerifyCredential(ctx context.Context, domain, eventID string) (core.VerifyResult, error) {
	ctx, span := tracer.Start(ctx, "Client.VerifyCredential")
	defer span.End()

	req, err := http.NewRequest("GET", "https://"+domain+"/credential/"+eventID+"/verify", nil)
	if err != nil {
		span.RecordError(err)
		return core.VerifyResult{}, err
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	httpClient := new(http.Client)
	httpClient.Timeout = defaultTimeout
	resp, err := httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return core.VerifyResult{}, err
	}
	defer resp.Body.Close()

	var response struct {
		Status  string            `json:"status"`
		Content core.VerifyResult `json:"content"`
	}
	err = json.NewDecoder(resp.Body).Decode(&response)
	if err != nil {
		span.RecordError(err)
		return core.VerifyResult{}, err
	}
	if response.Status != "ok" {
		return core.VerifyResult{}, errors.New("verification request failed")
	}

	return response.Content, nil
}
