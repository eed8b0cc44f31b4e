package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/wami/decisionlog"
	"github.com/xraph/wami/id"
)

func (a *API) registerDecisionLogRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("decision-logs"))

	if err := g.GET("/decision-logs", a.listDecisionLogs,
		forge.WithSummary("Query decision logs"),
		forge.WithDescription("Returns authorization decision audit logs with optional filters."),
		forge.WithOperationID("listDecisionLogs"),
		forge.WithRequestSchema(ListDecisionLogsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Decision log list", ListResponse[*decisionlog.Entry]{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/decision-logs/:logId", a.getDecisionLog,
		forge.WithSummary("Get decision log entry"),
		forge.WithOperationID("getDecisionLog"),
		forge.WithResponseSchema(http.StatusOK, "Decision log entry", decisionlog.Entry{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/decision-logs/purge", a.purgeDecisionLogs,
		forge.WithSummary("Purge decision logs"),
		forge.WithDescription("Removes decision log entries created before the given timestamp."),
		forge.WithOperationID("purgeDecisionLogs"),
		forge.WithRequestSchema(PurgeDecisionLogsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Purge result", PurgeDecisionLogsResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) listDecisionLogs(ctx forge.Context, req *ListDecisionLogsRequest) (*ListResponse[*decisionlog.Entry], error) {
	filter := &decisionlog.QueryFilter{
		TenantID: req.TenantID,
		Caller:   req.Caller,
		Action:   req.Action,
		Resource: req.Resource,
		Decision: req.Decision,
		Limit:    defaultLimit(req.Limit),
		Offset:   req.Offset,
	}

	if req.After != "" {
		t, err := time.Parse(time.RFC3339, req.After)
		if err != nil {
			return nil, forge.BadRequest("invalid after timestamp")
		}
		filter.After = &t
	}
	if req.Before != "" {
		t, err := time.Parse(time.RFC3339, req.Before)
		if err != nil {
			return nil, forge.BadRequest("invalid before timestamp")
		}
		filter.Before = &t
	}

	logs, err := a.auth.Store().ListDecisionLogs(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.auth.Store().CountDecisionLogs(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*decisionlog.Entry]{Items: logs, Total: total, Limit: filter.Limit, Offset: filter.Offset}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) getDecisionLog(ctx forge.Context, _ *GetDecisionLogRequest) (*decisionlog.Entry, error) {
	logID, err := id.ParseDecisionLogID(ctx.Param("logId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid decision log ID: %v", err))
	}

	e, err := a.auth.Store().GetDecisionLog(ctx.Context(), logID)
	if err != nil {
		return nil, mapError(err)
	}

	return e, ctx.JSON(http.StatusOK, e)
}

func (a *API) purgeDecisionLogs(ctx forge.Context, req *PurgeDecisionLogsRequest) (*PurgeDecisionLogsResponse, error) {
	if req.Before == "" {
		return nil, forge.BadRequest("before is required")
	}

	before, err := time.Parse(time.RFC3339, req.Before)
	if err != nil {
		return nil, forge.BadRequest("invalid before timestamp")
	}

	purged, err := a.auth.Store().PurgeDecisionLogs(ctx.Context(), before)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &PurgeDecisionLogsResponse{Purged: purged}
	return resp, ctx.JSON(http.StatusOK, resp)
}
