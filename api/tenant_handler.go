package api

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/wami/tenant"
)

func (a *API) registerTenantRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("tenants"))

	if err := g.POST("/tenants", a.createTenant,
		forge.WithSummary("Create tenant"),
		forge.WithDescription("Creates a tenant. Non-root tenants require an existing, active parent that allows sub-tenants."),
		forge.WithOperationID("createTenant"),
		forge.WithRequestSchema(CreateTenantRequest{}),
		forge.WithCreatedResponse(&tenant.Tenant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/tenants/:tenantId", a.getTenant,
		forge.WithSummary("Get tenant"),
		forge.WithDescription("Retrieves a tenant. The path parameter is the base64url-encoded tenant ID."),
		forge.WithOperationID("getTenant"),
		forge.WithResponseSchema(http.StatusOK, "Tenant", tenant.Tenant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/tenants/:tenantId", a.updateTenant,
		forge.WithSummary("Update tenant"),
		forge.WithOperationID("updateTenant"),
		forge.WithRequestSchema(UpdateTenantRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated tenant", tenant.Tenant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/tenants/:tenantId", a.deleteTenant,
		forge.WithSummary("Delete tenant"),
		forge.WithDescription("Deletes a tenant and all of its IAM resources. Fails while child tenants exist."),
		forge.WithOperationID("deleteTenant"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/tenants", a.listTenants,
		forge.WithSummary("List tenants"),
		forge.WithOperationID("listTenants"),
		forge.WithRequestSchema(ListTenantsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Tenant list", ListResponse[*tenant.Tenant]{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/tenants/:tenantId/children", a.listChildTenants,
		forge.WithSummary("List child tenants"),
		forge.WithOperationID("listChildTenants"),
		forge.WithResponseSchema(http.StatusOK, "Child tenants", []*tenant.Tenant{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/tenants/:tenantId/quotas", a.resolveTenantQuotas,
		forge.WithSummary("Resolve tenant quotas"),
		forge.WithDescription("Returns the effective quotas after walking the inheritance chain."),
		forge.WithOperationID("resolveTenantQuotas"),
		forge.WithResponseSchema(http.StatusOK, "Effective quotas", ResolvedQuotasResponse{}),
		forge.WithErrorResponses(),
	)
}

// tenantIDParam decodes the base64url-encoded tenant ID path parameter.
// Tenant IDs contain slashes and cannot appear raw in a URL path.
func tenantIDParam(ctx forge.Context) (tenant.ID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(ctx.Param("tenantId"))
	if err != nil {
		return "", forge.BadRequest(fmt.Sprintf("invalid tenant ID encoding: %v", err))
	}
	tid, err := tenant.ParseID(string(raw))
	if err != nil {
		return "", mapError(err)
	}
	return tid, nil
}

func (a *API) createTenant(ctx forge.Context, req *CreateTenantRequest) (*tenant.Tenant, error) {
	if req.ID == "" || req.Name == "" {
		return nil, forge.BadRequest("id and name are required")
	}

	tid, err := tenant.ParseID(req.ID)
	if err != nil {
		return nil, mapError(err)
	}

	t := &tenant.Tenant{
		ID:   tid,
		Name: req.Name,
		Quotas: tenant.Quotas{
			MaxUsers:             req.MaxUsers,
			MaxPolicies:          req.MaxPolicies,
			MaxAccessKeysPerUser: req.MaxAccessKeys,
			MaxSubTenants:        req.MaxSubTenants,
		},
		QuotaMode:           tenant.QuotaInherited,
		MaxChildDepth:       req.MaxChildDepth,
		CanCreateSubTenants: req.CanCreateSubTenants,
		AdminPrincipals:     req.AdminPrincipals,
		Status:              tenant.StatusActive,
		Metadata:            req.Metadata,
		CreatedAt:           time.Now().UTC(),
		UpdatedAt:           time.Now().UTC(),
	}
	if req.QuotaMode != "" {
		t.QuotaMode = tenant.QuotaMode(req.QuotaMode)
		if t.QuotaMode != tenant.QuotaInherited && t.QuotaMode != tenant.QuotaOverride {
			return nil, forge.BadRequest("quota_mode must be inherited or override")
		}
	}

	if parentID, ok := tid.Parent(); ok {
		parent, err := a.auth.Store().GetTenant(ctx.Context(), parentID)
		if err != nil {
			return nil, mapError(err)
		}
		if !parent.CanCreateChild() {
			return nil, forge.Forbidden(fmt.Sprintf("tenant %s does not allow sub-tenants", parentID))
		}
		if parent.MaxChildDepth > 0 && !tid.IsValidDepth(parentID.Depth()+parent.MaxChildDepth) {
			return nil, forge.Forbidden(fmt.Sprintf("tenant %s exceeds the maximum hierarchy depth below %s", tid, parentID))
		}
		if err := a.checkSubTenantQuota(ctx, parentID); err != nil {
			return nil, err
		}
		t.ParentID = &parentID
	}

	if err := a.auth.Store().CreateTenant(ctx.Context(), t); err != nil {
		return nil, mapError(err)
	}

	if a.auth.Plugins() != nil {
		a.auth.Plugins().EmitTenantCreated(ctx.Context(), t)
	}

	return t, ctx.JSON(http.StatusCreated, t)
}

func (a *API) checkSubTenantQuota(ctx forge.Context, parentID tenant.ID) error {
	quotas, err := tenant.ResolveQuotas(ctx.Context(), a.auth.Store(), parentID)
	if err != nil {
		return mapError(err)
	}
	if quotas.MaxSubTenants <= 0 {
		return nil
	}

	children, err := a.auth.Store().ListChildTenants(ctx.Context(), parentID)
	if err != nil {
		return mapError(err)
	}
	if len(children) >= quotas.MaxSubTenants {
		return forge.Forbidden(fmt.Sprintf("sub-tenant quota exceeded for %s (max %d)", parentID, quotas.MaxSubTenants))
	}
	return nil
}

func (a *API) getTenant(ctx forge.Context, _ *GetTenantRequest) (*tenant.Tenant, error) {
	tid, err := tenantIDParam(ctx)
	if err != nil {
		return nil, err
	}

	t, err := a.auth.Store().GetTenant(ctx.Context(), tid)
	if err != nil {
		return nil, mapError(err)
	}

	return t, ctx.JSON(http.StatusOK, t)
}

func (a *API) updateTenant(ctx forge.Context, req *UpdateTenantRequest) (*tenant.Tenant, error) {
	tid, err := tenantIDParam(ctx)
	if err != nil {
		return nil, err
	}

	t, err := a.auth.Store().GetTenant(ctx.Context(), tid)
	if err != nil {
		return nil, mapError(err)
	}

	if req.Name != "" {
		t.Name = req.Name
	}
	if req.Status != "" {
		status := tenant.Status(req.Status)
		if status != tenant.StatusActive && status != tenant.StatusSuspended {
			return nil, forge.BadRequest("status must be active or suspended")
		}
		t.Status = status
	}
	if req.QuotaMode != "" {
		mode := tenant.QuotaMode(req.QuotaMode)
		if mode != tenant.QuotaInherited && mode != tenant.QuotaOverride {
			return nil, forge.BadRequest("quota_mode must be inherited or override")
		}
		t.QuotaMode = mode
	}
	if req.MaxUsers != nil {
		t.Quotas.MaxUsers = *req.MaxUsers
	}
	if req.MaxPolicies != nil {
		t.Quotas.MaxPolicies = *req.MaxPolicies
	}
	if req.MaxAccessKeys != nil {
		t.Quotas.MaxAccessKeysPerUser = *req.MaxAccessKeys
	}
	if req.MaxSubTenants != nil {
		t.Quotas.MaxSubTenants = *req.MaxSubTenants
	}
	if req.CanCreateSubTenants != nil {
		t.CanCreateSubTenants = *req.CanCreateSubTenants
	}
	if req.AdminPrincipals != nil {
		t.AdminPrincipals = req.AdminPrincipals
	}
	if req.Metadata != nil {
		t.Metadata = req.Metadata
	}
	t.UpdatedAt = time.Now().UTC()

	if err := a.auth.Store().UpdateTenant(ctx.Context(), t); err != nil {
		return nil, mapError(err)
	}

	if a.auth.Plugins() != nil {
		a.auth.Plugins().EmitTenantUpdated(ctx.Context(), t)
	}

	return t, ctx.JSON(http.StatusOK, t)
}

func (a *API) deleteTenant(ctx forge.Context, _ *GetTenantRequest) (*struct{}, error) {
	tid, err := tenantIDParam(ctx)
	if err != nil {
		return nil, err
	}

	children, err := a.auth.Store().ListChildTenants(ctx.Context(), tid)
	if err != nil {
		return nil, mapError(err)
	}
	if len(children) > 0 {
		return nil, forge.BadRequest(fmt.Sprintf("tenant %s has %d child tenants; delete them first", tid, len(children)))
	}

	// Remove the tenant's IAM resources before the tenant itself.
	if err := a.auth.Store().DeleteUsersByTenant(ctx.Context(), tid.String()); err != nil {
		return nil, mapError(err)
	}
	if err := a.auth.Store().DeletePoliciesByTenant(ctx.Context(), tid.String()); err != nil {
		return nil, mapError(err)
	}
	if err := a.auth.Store().DeleteDecisionLogsByTenant(ctx.Context(), tid.String()); err != nil {
		return nil, mapError(err)
	}
	if err := a.auth.Store().DeleteTenant(ctx.Context(), tid); err != nil {
		return nil, mapError(err)
	}

	if a.auth.Plugins() != nil {
		a.auth.Plugins().EmitTenantDeleted(ctx.Context(), tid)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listTenants(ctx forge.Context, req *ListTenantsRequest) (*ListResponse[*tenant.Tenant], error) {
	filter := &tenant.ListFilter{
		Search: req.Search,
		Limit:  defaultLimit(req.Limit),
		Offset: req.Offset,
	}
	if req.ParentID != "" {
		pid, err := tenant.ParseID(req.ParentID)
		if err != nil {
			return nil, mapError(err)
		}
		filter.ParentID = &pid
	}
	if req.Status != "" {
		filter.Status = tenant.Status(req.Status)
	}

	tenants, err := a.auth.Store().ListTenants(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.auth.Store().CountTenants(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*tenant.Tenant]{Items: tenants, Total: total, Limit: filter.Limit, Offset: filter.Offset}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) listChildTenants(ctx forge.Context, _ *GetTenantRequest) ([]*tenant.Tenant, error) {
	tid, err := tenantIDParam(ctx)
	if err != nil {
		return nil, err
	}

	children, err := a.auth.Store().ListChildTenants(ctx.Context(), tid)
	if err != nil {
		return nil, mapError(err)
	}

	return children, ctx.JSON(http.StatusOK, children)
}

func (a *API) resolveTenantQuotas(ctx forge.Context, _ *GetTenantRequest) (*ResolvedQuotasResponse, error) {
	tid, err := tenantIDParam(ctx)
	if err != nil {
		return nil, err
	}

	quotas, err := tenant.ResolveQuotas(ctx.Context(), a.auth.Store(), tid)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ResolvedQuotasResponse{
		TenantID:             tid.String(),
		MaxUsers:             quotas.MaxUsers,
		MaxPolicies:          quotas.MaxPolicies,
		MaxAccessKeysPerUser: quotas.MaxAccessKeysPerUser,
		MaxSubTenants:        quotas.MaxSubTenants,
	}
	return resp, ctx.JSON(http.StatusOK, resp)
}
