package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/wami"
	"github.com/xraph/wami/arn"
)

func (a *API) registerAuthzRoutes(router forge.Router) error {
	g := router.Group("/v1/authz", forge.WithGroupTags("authorization"))

	if err := g.POST("/authorize", a.authorize,
		forge.WithSummary("Authorization check"),
		forge.WithDescription("Evaluates whether the caller can perform the action on the resource."),
		forge.WithOperationID("authzAuthorize"),
		forge.WithRequestSchema(AuthorizeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Authorization result", AuthorizeResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/enforce", a.enforce,
		forge.WithSummary("Enforce authorization"),
		forge.WithDescription("Returns 200 if allowed, 403 if denied."),
		forge.WithOperationID("authzEnforce"),
		forge.WithRequestSchema(AuthorizeRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Allowed", AuthorizeResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/simulate", a.simulate,
		forge.WithSummary("Simulate policies"),
		forge.WithDescription("Evaluates policy documents against every action and resource combination."),
		forge.WithOperationID("authzSimulate"),
		forge.WithRequestSchema(SimulateRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Simulation results", SimulateResponse{}),
		forge.WithErrorResponses(),
	)
}

// callerContext builds an authenticated caller context from the
// request fields.
func (a *API) callerContext(req *AuthorizeRequest) (*wami.Context, arn.ARN, error) {
	caller, err := arn.Parse(req.CallerARN)
	if err != nil {
		return nil, arn.ARN{}, forge.BadRequest("invalid caller_arn: " + err.Error())
	}
	resource, err := arn.Parse(req.Resource)
	if err != nil {
		return nil, arn.ARN{}, forge.BadRequest("invalid resource: " + err.Error())
	}

	wctx, err := wami.NewContextBuilder().
		TenantID(caller.TenantPath.String()).
		InstanceID(caller.InstanceID).
		CallerARN(caller).
		Root(req.IsRoot).
		Region(req.Region).
		Build()
	if err != nil {
		return nil, arn.ARN{}, mapError(err)
	}
	return wctx, resource, nil
}

func (a *API) authorize(ctx forge.Context, req *AuthorizeRequest) (*AuthorizeResponse, error) {
	if req.CallerARN == "" || req.Action == "" || req.Resource == "" {
		return nil, forge.BadRequest("caller_arn, action, and resource are required")
	}

	wctx, resource, err := a.callerContext(req)
	if err != nil {
		return nil, err
	}

	result, err := a.auth.Authorize(ctx.Context(), wctx, req.Action, resource)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toAuthorizeResponse(result)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) enforce(ctx forge.Context, req *AuthorizeRequest) (*AuthorizeResponse, error) {
	if req.CallerARN == "" || req.Action == "" || req.Resource == "" {
		return nil, forge.BadRequest("caller_arn, action, and resource are required")
	}

	wctx, resource, err := a.callerContext(req)
	if err != nil {
		return nil, err
	}

	result, err := a.auth.Authorize(ctx.Context(), wctx, req.Action, resource)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toAuthorizeResponse(result)
	if !result.Allowed {
		return resp, ctx.JSON(http.StatusForbidden, resp)
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) simulate(ctx forge.Context, req *SimulateRequest) (*SimulateResponse, error) {
	if len(req.PolicyDocuments) == 0 {
		return nil, forge.BadRequest("policy_documents cannot be empty")
	}
	if len(req.Actions) == 0 || len(req.Resources) == 0 {
		return nil, forge.BadRequest("actions and resources cannot be empty")
	}

	results, err := a.auth.Simulate(ctx.Context(), &wami.SimulationInput{
		PolicyDocuments: req.PolicyDocuments,
		Actions:         req.Actions,
		Resources:       req.Resources,
		ContextEntries:  req.ContextEntries,
	})
	if err != nil {
		return nil, mapError(err)
	}

	resp := toSimulateResponse(results)
	return resp, ctx.JSON(http.StatusOK, resp)
}
