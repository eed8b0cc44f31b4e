// Package api provides HTTP handlers for the WAMI identity and
// access management core.
package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/wami"
)

// API wires all WAMI HTTP handlers together.
type API struct {
	auth       *wami.Authorizer
	router     forge.Router
	instanceID string
}

// New creates an API from an Authorizer and a Forge router. The
// instance ID anchors the ARNs minted for created entities.
func New(auth *wami.Authorizer, router forge.Router, instanceID string) *API {
	return &API{auth: auth, router: router, instanceID: instanceID}
}

// Handler returns the fully assembled http.Handler with all routes.
func (a *API) Handler() http.Handler {
	if a.router == nil {
		a.router = forge.NewRouter()
	}
	if err := a.RegisterRoutes(a.router); err != nil {
		panic("wami: register routes: " + err.Error())
	}
	return a.router.Handler()
}

// RegisterRoutes registers all API routes into the given Forge router.
func (a *API) RegisterRoutes(router forge.Router) error {
	registerers := []func(forge.Router) error{
		a.registerAuthzRoutes,
		a.registerARNRoutes,
		a.registerUserRoutes,
		a.registerPolicyRoutes,
		a.registerTenantRoutes,
		a.registerDecisionLogRoutes,
	}
	for _, fn := range registerers {
		if err := fn(router); err != nil {
			return err
		}
	}
	return nil
}
