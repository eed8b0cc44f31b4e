package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xraph/forge"

	"github.com/xraph/wami/arn"
	"github.com/xraph/wami/id"
	"github.com/xraph/wami/tenant"
	"github.com/xraph/wami/user"
)

func (a *API) registerUserRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("users"))

	if err := g.POST("/users", a.createUser,
		forge.WithSummary("Create user"),
		forge.WithDescription("Creates a user and mints its ARN."),
		forge.WithOperationID("createUser"),
		forge.WithRequestSchema(CreateUserRequest{}),
		forge.WithCreatedResponse(&user.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/users/:userId", a.getUser,
		forge.WithSummary("Get user"),
		forge.WithOperationID("getUser"),
		forge.WithResponseSchema(http.StatusOK, "User", user.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/users/:userId", a.updateUser,
		forge.WithSummary("Update user"),
		forge.WithOperationID("updateUser"),
		forge.WithRequestSchema(UpdateUserRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated user", user.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/users/:userId", a.deleteUser,
		forge.WithSummary("Delete user"),
		forge.WithDescription("Deletes a user together with its access keys, attachments, and inline policies."),
		forge.WithOperationID("deleteUser"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/users", a.listUsers,
		forge.WithSummary("List users"),
		forge.WithOperationID("listUsers"),
		forge.WithRequestSchema(ListUsersRequest{}),
		forge.WithResponseSchema(http.StatusOK, "User list", ListResponse[*user.User]{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/access-keys", a.createAccessKey,
		forge.WithSummary("Create access key"),
		forge.WithDescription("Mints an access key for a user. The secret is returned only once."),
		forge.WithOperationID("createAccessKey"),
		forge.WithRequestSchema(CreateAccessKeyRequest{}),
		forge.WithCreatedResponse(&CreateAccessKeyResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/access-keys/:keyId", a.updateAccessKey,
		forge.WithSummary("Update access key status"),
		forge.WithOperationID("updateAccessKey"),
		forge.WithRequestSchema(UpdateAccessKeyRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated access key", user.AccessKey{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/access-keys/:keyId", a.deleteAccessKey,
		forge.WithSummary("Delete access key"),
		forge.WithOperationID("deleteAccessKey"),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/access-keys", a.listAccessKeys,
		forge.WithSummary("List access keys"),
		forge.WithOperationID("listAccessKeys"),
		forge.WithRequestSchema(ListAccessKeysRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Access key list", []*user.AccessKey{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createUser(ctx forge.Context, req *CreateUserRequest) (*user.User, error) {
	if req.TenantID == "" || req.Name == "" {
		return nil, forge.BadRequest("tenant_id and name are required")
	}

	path, err := tenant.ParsePath(req.TenantID)
	if err != nil {
		return nil, mapError(err)
	}

	if err := a.checkUserQuota(ctx, req.TenantID); err != nil {
		return nil, err
	}

	userARN, err := arn.NewBuilder().
		Service(arn.ServiceIAM).
		TenantPath(path).
		InstanceID(a.instanceID).
		Resource("user", req.Name).
		Build()
	if err != nil {
		return nil, mapError(err)
	}

	now := time.Now().UTC()
	u := &user.User{
		ID:        id.NewUserID(),
		TenantID:  req.TenantID,
		Name:      req.Name,
		Path:      orDefault(req.Path, "/"),
		ARN:       userARN.String(),
		Metadata:  req.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := a.auth.Store().CreateUser(ctx.Context(), u); err != nil {
		return nil, mapError(err)
	}

	if a.auth.Plugins() != nil {
		a.auth.Plugins().EmitUserCreated(ctx.Context(), u)
	}

	return u, ctx.JSON(http.StatusCreated, u)
}

// checkUserQuota rejects creation when the tenant's effective user
// quota is exhausted. A quota of zero means unlimited.
func (a *API) checkUserQuota(ctx forge.Context, tenantID string) error {
	tid, err := tenant.ParseID(tenantID)
	if err != nil {
		return mapError(err)
	}

	quotas, err := tenant.ResolveQuotas(ctx.Context(), a.auth.Store(), tid)
	if err != nil {
		return mapError(err)
	}
	if quotas.MaxUsers <= 0 {
		return nil
	}

	count, err := a.auth.Store().CountUsers(ctx.Context(), &user.ListFilter{TenantID: tenantID})
	if err != nil {
		return mapError(err)
	}
	if count >= int64(quotas.MaxUsers) {
		return forge.Forbidden(fmt.Sprintf("user quota exceeded for tenant %s (max %d)", tenantID, quotas.MaxUsers))
	}
	return nil
}

func (a *API) getUser(ctx forge.Context, _ *GetUserRequest) (*user.User, error) {
	userID, err := id.ParseUserID(ctx.Param("userId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid user ID: %v", err))
	}

	u, err := a.auth.Store().GetUser(ctx.Context(), userID)
	if err != nil {
		return nil, mapError(err)
	}

	return u, ctx.JSON(http.StatusOK, u)
}

func (a *API) updateUser(ctx forge.Context, req *UpdateUserRequest) (*user.User, error) {
	userID, err := id.ParseUserID(ctx.Param("userId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid user ID: %v", err))
	}

	u, err := a.auth.Store().GetUser(ctx.Context(), userID)
	if err != nil {
		return nil, mapError(err)
	}

	if req.Path != "" {
		u.Path = req.Path
	}
	if req.Metadata != nil {
		u.Metadata = req.Metadata
	}
	u.UpdatedAt = time.Now().UTC()

	if err := a.auth.Store().UpdateUser(ctx.Context(), u); err != nil {
		return nil, mapError(err)
	}

	return u, ctx.JSON(http.StatusOK, u)
}

func (a *API) deleteUser(ctx forge.Context, _ *GetUserRequest) (*struct{}, error) {
	userID, err := id.ParseUserID(ctx.Param("userId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid user ID: %v", err))
	}

	if err := a.auth.Store().DeleteUser(ctx.Context(), userID); err != nil {
		return nil, mapError(err)
	}

	if a.auth.Plugins() != nil {
		a.auth.Plugins().EmitUserDeleted(ctx.Context(), userID)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listUsers(ctx forge.Context, req *ListUsersRequest) (*ListResponse[*user.User], error) {
	filter := &user.ListFilter{
		TenantID:   req.TenantID,
		PathPrefix: req.PathPrefix,
		Search:     req.Search,
		Limit:      defaultLimit(req.Limit),
		Offset:     req.Offset,
	}

	users, err := a.auth.Store().ListUsers(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}
	total, err := a.auth.Store().CountUsers(ctx.Context(), filter)
	if err != nil {
		return nil, mapError(err)
	}

	resp := &ListResponse[*user.User]{Items: users, Total: total, Limit: filter.Limit, Offset: filter.Offset}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) createAccessKey(ctx forge.Context, req *CreateAccessKeyRequest) (*CreateAccessKeyResponse, error) {
	if req.TenantID == "" || req.UserName == "" {
		return nil, forge.BadRequest("tenant_id and user_name are required")
	}

	// The owner must exist.
	if _, err := a.auth.Store().GetUserByName(ctx.Context(), req.TenantID, req.UserName); err != nil {
		return nil, mapError(err)
	}

	if err := a.checkAccessKeyQuota(ctx, req.TenantID, req.UserName); err != nil {
		return nil, err
	}

	secret, err := newSecret()
	if err != nil {
		return nil, mapError(err)
	}

	k := &user.AccessKey{
		ID:        id.NewAccessKeyID(),
		TenantID:  req.TenantID,
		UserName:  req.UserName,
		Secret:    secret,
		Status:    user.KeyActive,
		CreatedAt: time.Now().UTC(),
	}

	if err := a.auth.Store().CreateAccessKey(ctx.Context(), k); err != nil {
		return nil, mapError(err)
	}

	if a.auth.Plugins() != nil {
		a.auth.Plugins().EmitAccessKeyCreated(ctx.Context(), k)
	}

	resp := &CreateAccessKeyResponse{
		ID:        k.ID.String(),
		TenantID:  k.TenantID,
		UserName:  k.UserName,
		Secret:    k.Secret,
		Status:    string(k.Status),
		CreatedAt: k.CreatedAt,
	}
	return resp, ctx.JSON(http.StatusCreated, resp)
}

func (a *API) checkAccessKeyQuota(ctx forge.Context, tenantID, userName string) error {
	tid, err := tenant.ParseID(tenantID)
	if err != nil {
		return mapError(err)
	}

	quotas, err := tenant.ResolveQuotas(ctx.Context(), a.auth.Store(), tid)
	if err != nil {
		return mapError(err)
	}
	if quotas.MaxAccessKeysPerUser <= 0 {
		return nil
	}

	keys, err := a.auth.Store().ListAccessKeys(ctx.Context(), tenantID, userName)
	if err != nil {
		return mapError(err)
	}
	if len(keys) >= quotas.MaxAccessKeysPerUser {
		return forge.Forbidden(fmt.Sprintf("access key quota exceeded for %s (max %d)", userName, quotas.MaxAccessKeysPerUser))
	}
	return nil
}

func (a *API) updateAccessKey(ctx forge.Context, req *UpdateAccessKeyRequest) (*user.AccessKey, error) {
	keyID, err := id.ParseAccessKeyID(ctx.Param("keyId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid access key ID: %v", err))
	}

	status := user.KeyStatus(req.Status)
	if status != user.KeyActive && status != user.KeyInactive {
		return nil, forge.BadRequest("status must be Active or Inactive")
	}

	if err := a.auth.Store().UpdateAccessKeyStatus(ctx.Context(), keyID, status); err != nil {
		return nil, mapError(err)
	}

	k, err := a.auth.Store().GetAccessKey(ctx.Context(), keyID)
	if err != nil {
		return nil, mapError(err)
	}

	return k, ctx.JSON(http.StatusOK, k)
}

func (a *API) deleteAccessKey(ctx forge.Context, _ *GetAccessKeyRequest) (*struct{}, error) {
	keyID, err := id.ParseAccessKeyID(ctx.Param("keyId"))
	if err != nil {
		return nil, forge.BadRequest(fmt.Sprintf("invalid access key ID: %v", err))
	}

	if err := a.auth.Store().DeleteAccessKey(ctx.Context(), keyID); err != nil {
		return nil, mapError(err)
	}

	if a.auth.Plugins() != nil {
		a.auth.Plugins().EmitAccessKeyDeleted(ctx.Context(), keyID)
	}

	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) listAccessKeys(ctx forge.Context, req *ListAccessKeysRequest) ([]*user.AccessKey, error) {
	if req.TenantID == "" || req.UserName == "" {
		return nil, forge.BadRequest("tenant_id and user_name are required")
	}

	keys, err := a.auth.Store().ListAccessKeys(ctx.Context(), req.TenantID, req.UserName)
	if err != nil {
		return nil, mapError(err)
	}

	return keys, ctx.JSON(http.StatusOK, keys)
}
