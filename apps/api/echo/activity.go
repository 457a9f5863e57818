package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core/activity"
)

type activityApi struct {
	emitter *activity.Emitter
}

func registerActivityAPI(g *echo.Group, jwt echo.MiddlewareFunc, emitter *activity.Emitter) {
	api := activityApi{emitter: emitter}

	ag := g.Group("/activity", jwt, adminMiddleware())
	ag.GET("/stream", api.stream)
}

// stream pushes activity events to the client as Server-Sent Events until
// the client disconnects.
func (api *activityApi) stream(ctx echo.Context) error {
	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	events, cancel := api.emitter.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Request().Context().Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				return errors.Wrap(err, "marshalling event")
			}
			if _, err = fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return nil // client gone
			}
			res.Flush()
		}
	}
}
