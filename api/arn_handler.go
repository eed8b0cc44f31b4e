package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/wami/arn"
	"github.com/xraph/wami/tenant"
	"github.com/xraph/wami/transform"
)

func (a *API) registerARNRoutes(router forge.Router) error {
	g := router.Group("/v1/arns", forge.WithGroupTags("arns"))

	if err := g.POST("/parse", a.parseARN,
		forge.WithSummary("Parse ARN"),
		forge.WithDescription("Parses an ARN string into its components."),
		forge.WithOperationID("arnParse"),
		forge.WithRequestSchema(ParseARNRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Parsed ARN", ARNResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/build", a.buildARN,
		forge.WithSummary("Build ARN"),
		forge.WithDescription("Constructs and validates an ARN from its components."),
		forge.WithOperationID("arnBuild"),
		forge.WithRequestSchema(BuildARNRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Built ARN", ARNResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/transform", a.transformARN,
		forge.WithSummary("Transform ARN"),
		forge.WithDescription("Converts a cloud-synced ARN to the provider's native identifier."),
		forge.WithOperationID("arnTransform"),
		forge.WithRequestSchema(TransformARNRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Provider identifier", TransformARNResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/reverse", a.reverseARN,
		forge.WithSummary("Reverse-transform provider identifier"),
		forge.WithDescription("Parses a provider-native identifier back into ARN components."),
		forge.WithOperationID("arnReverse"),
		forge.WithRequestSchema(ReverseARNRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Parsed components", ReverseARNResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/providers", a.listProviders,
		forge.WithSummary("List providers"),
		forge.WithDescription("Lists the registered provider transformers."),
		forge.WithOperationID("arnListProviders"),
		forge.WithResponseSchema(http.StatusOK, "Providers", ProvidersResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) parseARN(ctx forge.Context, req *ParseARNRequest) (*ARNResponse, error) {
	if req.ARN == "" {
		return nil, forge.BadRequest("arn is required")
	}

	parsed, err := arn.Parse(req.ARN)
	if err != nil {
		return nil, mapError(err)
	}

	resp := toARNResponse(parsed)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) buildARN(ctx forge.Context, req *BuildARNRequest) (*ARNResponse, error) {
	if req.Service == "" || req.TenantID == "" || req.ResourceType == "" || req.ResourceID == "" {
		return nil, forge.BadRequest("service, tenant_id, resource_type, and resource_id are required")
	}

	path, err := tenant.ParsePath(req.TenantID)
	if err != nil {
		return nil, mapError(err)
	}

	instanceID := req.InstanceID
	if instanceID == "" {
		instanceID = a.instanceID
	}

	b := arn.NewBuilder().
		Service(arn.ParseService(req.Service)).
		TenantPath(path).
		InstanceID(instanceID).
		Resource(req.ResourceType, req.ResourceID)
	if req.Provider != "" {
		if req.Region != "" {
			b.CloudMappingWithRegion(req.Provider, req.AccountID, req.Region)
		} else {
			b.CloudMapping(req.Provider, req.AccountID)
		}
	}

	built, err := b.Build()
	if err != nil {
		return nil, mapError(err)
	}

	resp := toARNResponse(built)
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) transformARN(ctx forge.Context, req *TransformARNRequest) (*TransformARNResponse, error) {
	if req.ARN == "" || req.Provider == "" {
		return nil, forge.BadRequest("arn and provider are required")
	}

	parsed, err := arn.Parse(req.ARN)
	if err != nil {
		return nil, mapError(err)
	}

	tr, ok := transform.ForProvider(req.Provider)
	if !ok {
		return nil, forge.BadRequest("unknown provider: " + req.Provider)
	}

	providerARN, err := tr.ToProviderARN(parsed)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &TransformARNResponse{Provider: tr.Provider(), ProviderARN: providerARN}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) reverseARN(ctx forge.Context, req *ReverseARNRequest) (*ReverseARNResponse, error) {
	if req.ProviderARN == "" || req.Provider == "" {
		return nil, forge.BadRequest("provider_arn and provider are required")
	}

	tr, ok := transform.ForProvider(req.Provider)
	if !ok {
		return nil, forge.BadRequest("unknown provider: " + req.Provider)
	}

	info, err := tr.FromProviderARN(req.ProviderARN)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ReverseARNResponse{
		Provider:     info.Provider,
		AccountID:    info.AccountID,
		Service:      info.Service.String(),
		ResourceType: info.ResourceType,
		ResourceID:   info.ResourceID,
		Region:       info.Region,
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) listProviders(ctx forge.Context, _ *struct{}) (*ProvidersResponse, error) {
	resp := &ProvidersResponse{Providers: transform.Providers()}
	return resp, ctx.JSON(http.StatusOK, resp)
}
