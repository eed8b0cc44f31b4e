package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/wami/arn"
	"github.com/xraph/wami/id"
	"github.com/xraph/wami/policy"
	"github.com/xraph/wami/tenant"
)

func (a *API) registerPolicyRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("policies"))

	if err := g.POST("/policies", a.createPolicy,
		forge.WithSummary("Create managed policy"),
		forge.WithDescription("Creates a managed policy; the document is validated before storage."),
		forge.WithOperationID("createPolicy"),
		forge.WithRequestSchema(CreatePolicyRequest{}),
		forge.WithCreatedResponse(&policy.Policy{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/policies/:policyId", a.getPolicy,
		forge.WithSummary("Get managed policy"),
		forge.WithOperationID("getPolicy"),
		forge.WithResponseSchema(http.StatusOK, "Policy", policy.Policy{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/policies/:policyId", a.updatePolicy,
		forge.WithSummary("Update managed policy"),
		forge.WithOperationID("updatePolicy"),
		forge.WithRequestSchema(UpdatePolicyRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated policy", policy.Policy{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/policies/:policyId", a.deletePolicy,
		forge.WithSummary("Delete managed policy"),
		forge.WithDescription("Deletes a managed policy; fails while attachments remain."),
		forge.WithOperationID("deletePolicy"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/policies", a.listPolicies,
		forge.WithSummary("List managed policies"),
		forge.WithOperationID("listPolicies"),
		forge.WithRequestSchema(ListPoliciesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Policy list", ListResponse[*policy.Policy]{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/attachments", a.attachPolicy,
		forge.WithSummary("Attach policy to user"),
		forge.WithDescription("Attaches a managed policy to a user. Re-attaching is a no-op."),
		forge.WithOperationID("attachUserPolicy"),
		forge.WithRequestSchema(AttachPolicyRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/attachments", a.detachPolicy,
		forge.WithSummary("Detach policy from user"),
		forge.WithOperationID("detachUserPolicy"),
		forge.WithRequestSchema(AttachPolicyRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/attachments", a.listAttachedPolicies,
		forge.WithSummary("List attached policies"),
		forge.WithDescription("Lists managed policy ARNs attached to a user, oldest first."),
		forge.WithOperationID("listAttachedUserPolicies"),
		forge.WithRequestSchema(ListPrincipalPoliciesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Attached policy ARNs", AttachedPoliciesResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/inline-policies", a.putInlinePolicy,
		forge.WithSummary("Put inline policy"),
		forge.WithDescription("Creates or replaces an inline policy embedded in a user."),
		forge.WithOperationID("putUserPolicy"),
		forge.WithRequestSchema(PutInlinePolicyRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/inline-policies/document", a.getInlinePolicy,
		forge.WithSummary("Get inline policy"),
		forge.WithOperationID("getUserPolicy"),
		forge.WithRequestSchema(InlinePolicyRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Inline policy document", InlinePolicyResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/inline-policies", a.deleteInlinePolicy,
		forge.WithSummary("Delete inline policy"),
		forge.WithOperationID("deleteUserPolicy"),
		forge.WithRequestSchema(InlinePolicyRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/inline-policies", a.listInlinePolicies,
		forge.WithSummary("List inline policies"),
		forge.WithOperationID("listUserPolicies"),
		forge.WithRequestSchema(ListPrincipalPoliciesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Inline policy names", InlinePoliciesResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createPolicy(ctx forge.Context, req *CreatePolicyRequest) (*policy.Policy, error) {
	if req.TenantID == "" || req.Name == "" || req.Document == "" {
		return nil, forge.BadRequest("tenant_id, name, and document are required")
	}

	if _, err := policy.ParseDocument([]byte(req.Document)); err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid policy document: %v", err))
	}

	path, err := tenant.ParsePath(req.TenantID)
	if err != nil {
		return nil, mapError(err)
	}

	if err := a.checkPolicyQuota(ctx, req.TenantID); err != nil {
		return nil, err
	}

	policyARN, err := arn.NewBuilder().
		Service(arn.ServiceIAM).
		TenantPath(path).
		InstanceID(a.instanceID).
		Resource("policy", req.Name).
		Build()
	if err != nil {
		return nil, mapError(err)
	}

	now := time.Now().UTC()
	p := &policy.Policy{
		ID:           id.NewPolicyID(),
		TenantID:     req.TenantID,
		Name:         req.Name,
		Path:         orDefault(req.Path, "/"),
		ARN:          policyARN.String(),
		Description:  req.Description,
		Document:     req.Document,
		IsAttachable: true,
		Metadata:     req.Metadata,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := a.auth.Store().CreatePolicy(ctx.Context(), p); err != nil {
		return nil, mapError(err)
	}

	if a.auth.Plugins() != nil {
		a.auth.Plugins().EmitPolicyCreated(ctx.Context(), p)
	}

	return p, ctx.JSON(http.StatusCreated, p)
}

func (a *API) checkPolicyQuota(ctx forge.Context, tenantID string) error {
	tid, err := tenant.ParseID(tenantID)
	if err != nil {
		return mapError(err)
	}

	quotas, err := tenant.ResolveQuotas(ctx.Context(), a.auth.Store(), tid)
	if err != nil {
		return mapError(err)
	}
	if quotas.MaxPolicies <= 0 {
		return nil
	}

	count, err := a.auth.Store().CountPolicies(ctx.Context(), &policy.ListFilter{TenantID: tenantID})
	if err != nil {
		return mapError(err)
	}
	if count >= int64(quotas.MaxPolicies) {
		return forge.Forbidden(fmt.Sprintf("policy quota exceeded for tenant %s (max %d)", tenantID, quotas.MaxPolicies))
	}
	return nil
}

func (a *API) getPolicy(ctx forge.Context, _ *GetPolicyRequest) (*policy.Policy, error) {
	polID, err := id.ParsePolicyID(ctx.Param("policyId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid policy ID: %v", err))
	}

	p, err := a.auth.Store().GetPolicy(ctx.Context(), polID)
	if err != nil {
		return nil, mapError(err)
	}

	return p, ctx.JSON(http.StatusOK, p)
}

func (a *API) updatePolicy(ctx forge.Context, req *UpdatePolicyRequest) (*policy.Policy, error) {
	polID, err := id.ParsePolicyID(ctx.Param("policyId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid policy ID: %v", err))
	}

	p, err := a.auth.Store().GetPolicy(ctx.Context(), polID)
	if err != nil {
		return nil, mapError(err)
	}

	if req.Document != "" {
		if _, err := policy.ParseDocument([]byte(req.Document)); err != nil {
			return nil, forge.BadRequest(fmt.Sprintf("invalid policy document: %v", err))
		}
		p.Document = req.Document
	}
	if req.Description != "" {
		p.Description = req.Description
	}
	if req.Metadata != nil {
		p.Metadata = req.Metadata
	}
	p.UpdatedAt = time.Now().UTC()

	if err := a.auth.Store().UpdatePolicy(ctx.Context(), p); err != nil {
		return nil, mapError(err)
	}

	if a.auth.Plugins() != nil {
		a.auth.Plugins().EmitPolicyUpdated(ctx.Context(), p)
	}

	return p, ctx.JSON(http.StatusOK, p)
}

func (a *API) deletePolicy(ctx forge.Context, _ *GetPolicyRequest) (*struct{}, error) {
	polID, err := id.ParsePolicyID(ctx.Param("policyId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid policy ID: %v", err))
	}

	p, err := a.auth.Store().GetPolicy(ctx.Context(), polID)
	if err != nil {
		return nil, mapError(err)
	}
	if p.AttachmentCount > 0 {
		return nil, forge.BadRequest(fmt.Sprintf("policy %s has %d attachments; detach before deleting", p.Name, p.AttachmentCount))
	}

	if err := a.auth.Store().DeletePolicy(ctx.Context(), polID); err != nil {
		return nil, mapError(err)
	}

	if a.auth.Plugins() != nil {
		a.auth.Plugins().EmitPolicyDeleted(ctx.Context(), polID)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listPolicies(ctx forge.Context, req *ListPoliciesRequest) (*ListResponse[*policy.Policy], error) {
	filter := &policy.ListFilter{
		TenantID:     req.TenantID,
		PathPrefix:   req.PathPrefix,
		OnlyAttached: req.OnlyAttached,
		Search:       req.Search,
		Limit:        defaultLimit(req.Limit),
		Offset:       req.Offset,
	}

	policies, err := a.auth.Store().ListPolicies(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.auth.Store().CountPolicies(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*policy.Policy]{Items: policies, Total: total, Limit: filter.Limit, Offset: filter.Offset}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) attachPolicy(ctx forge.Context, req *AttachPolicyRequest) (*struct{}, error) {
	if req.TenantID == "" || req.UserName == "" || req.PolicyARN == "" {
		return nil, forge.BadRequest("tenant_id, user_name, and policy_arn are required")
	}

	// Both ends of the attachment must exist.
	if _, err := a.auth.Store().GetUserByName(ctx.Context(), req.TenantID, req.UserName); err != nil {
		return nil, mapError(err)
	}
	p, err := a.auth.Store().GetPolicyByARN(ctx.Context(), req.PolicyARN)
	if err != nil {
		return nil, mapError(err)
	}
	if !p.IsAttachable {
		return nil, forge.BadRequest(fmt.Sprintf("policy %s is not attachable", p.Name))
	}

	if err := a.auth.Store().AttachUserPolicy(ctx.Context(), req.TenantID, req.UserName, req.PolicyARN); err != nil {
		return nil, mapError(err)
	}

	if a.auth.Plugins() != nil {
		a.auth.Plugins().EmitPolicyAttached(ctx.Context(), req.TenantID, req.UserName, req.PolicyARN)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) detachPolicy(ctx forge.Context, req *AttachPolicyRequest) (*struct{}, error) {
	if req.TenantID == "" || req.UserName == "" || req.PolicyARN == "" {
		return nil, forge.BadRequest("tenant_id, user_name, and policy_arn are required")
	}

	if err := a.auth.Store().DetachUserPolicy(ctx.Context(), req.TenantID, req.UserName, req.PolicyARN); err != nil {
		return nil, mapError(err)
	}

	if a.auth.Plugins() != nil {
		a.auth.Plugins().EmitPolicyDetached(ctx.Context(), req.TenantID, req.UserName, req.PolicyARN)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listAttachedPolicies(ctx forge.Context, req *ListPrincipalPoliciesRequest) (*AttachedPoliciesResponse, error) {
	if req.TenantID == "" || req.UserName == "" {
		return nil, forge.BadRequest("tenant_id and user_name are required")
	}

	arns, err := a.auth.Store().ListAttachedUserPolicies(ctx.Context(), req.TenantID, req.UserName)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &AttachedPoliciesResponse{PolicyARNs: arns}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) putInlinePolicy(ctx forge.Context, req *PutInlinePolicyRequest) (*struct{}, error) {
	if req.TenantID == "" || req.UserName == "" || req.PolicyName == "" || req.Document == "" {
		return nil, forge.BadRequest("tenant_id, user_name, policy_name, and document are required")
	}

	if _, err := policy.ParseDocument([]byte(req.Document)); err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid policy document: %v", err))
	}

	if _, err := a.auth.Store().GetUserByName(ctx.Context(), req.TenantID, req.UserName); err != nil {
		return nil, mapError(err)
	}

	if err := a.auth.Store().PutUserPolicy(ctx.Context(), req.TenantID, req.UserName, req.PolicyName, req.Document); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) getInlinePolicy(ctx forge.Context, req *InlinePolicyRequest) (*InlinePolicyResponse, error) {
	if req.TenantID == "" || req.UserName == "" || req.PolicyName == "" {
		return nil, forge.BadRequest("tenant_id, user_name, and policy_name are required")
	}

	doc, err := a.auth.Store().GetUserPolicy(ctx.Context(), req.TenantID, req.UserName, req.PolicyName)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &InlinePolicyResponse{PolicyName: req.PolicyName, Document: doc}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) deleteInlinePolicy(ctx forge.Context, req *InlinePolicyRequest) (*struct{}, error) {
	if req.TenantID == "" || req.UserName == "" || req.PolicyName == "" {
		return nil, forge.BadRequest("tenant_id, user_name, and policy_name are required")
	}

	if err := a.auth.Store().DeleteUserPolicy(ctx.Context(), req.TenantID, req.UserName, req.PolicyName); err != nil {
		return nil, mapError(err)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listInlinePolicies(ctx forge.Context, req *ListPrincipalPoliciesRequest) (*InlinePoliciesResponse, error) {
	if req.TenantID == "" || req.UserName == "" {
		return nil, forge.BadRequest("tenant_id and user_name are required")
	}

	names, err := a.auth.Store().ListUserPolicies(ctx.Context(), req.TenantID, req.UserName)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &InlinePoliciesResponse{PolicyNames: names}
	return resp, ctx.JSON(http.StatusOK, resp)
}
