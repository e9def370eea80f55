package graph

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	Schema *graphql.Schema
}

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

func (h *Handler) Serve(c echo.Context) error {
	ctx := c.Request().Context()

	var req request
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		logging.FromContext(ctx).Warn("graphql_bad_request", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	l := logging.FromContext(ctx).With("handler", "graphql", "operation", req.OperationName)
	resp := h.Schema.Exec(logging.IntoContext(ctx, l), req.Query, req.OperationName, req.Variables)

	outcome := "ok"
	if len(resp.Errors) > 0 {
		outcome = "error"
		l.Debug("graphql_errors", "count", len(resp.Errors), "first", resp.Errors[0].Message)
	}
	metrics.GraphQLOperationsTotal.WithLabelValues(operationLabel(req.OperationName), outcome).Inc()

	return c.JSON(http.StatusOK, resp)
}

// rootFields lists the Query and Mutation field names declared in sdl.
func rootFields(sdl string) map[string]bool {
	out := map[string]bool{}
	inRoot := false
	for _, line := range strings.Split(sdl, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "type Query {" || line == "type Mutation {":
			inRoot = true
		case line == "}":
			inRoot = false
		case inRoot && line != "":
			if i := strings.IndexAny(line, "(:"); i > 0 {
				out[strings.TrimSpace(line[:i])] = true
			}
		}
	}
	return out
}

var knownOperations = rootFields(Schema)

// operationLabel keeps the metric's label set bounded: client-chosen names
// only pass through when they match a root field.
func operationLabel(name string) string {
	switch {
	case name == "":
		return "anonymous"
	case knownOperations[name]:
		return name
	default:
		return "other"
	}
}
