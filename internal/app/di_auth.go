package app

import (
	authService "github.com/allisson/entitygate/internal/auth/service"
	authUseCase "github.com/allisson/entitygate/internal/auth/usecase"
	"github.com/allisson/entitygate/internal/metrics"
)

// Verifier returns the identity assertion verifier.
func (c *Container) Verifier() (authService.Verifier, error) {
	var err error
	c.verifierInit.Do(func() {
		c.verifier, err = authService.NewJWTVerifier(c.config)
		if err != nil {
			c.initErrors["verifier"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["verifier"]; exists {
		return nil, storedErr
	}
	return c.verifier, nil
}

// Resolver returns the claims-to-entitlements resolver.
func (c *Container) Resolver() authService.Resolver {
	c.resolverInit.Do(func() {
		c.resolver = authService.NewClaimsResolver(nil, c.config.SessionEntitlementMaxAge)
	})
	return c.resolver
}

// SessionStore returns the session entitlement store.
func (c *Container) SessionStore() *authService.SessionStore {
	c.sessionStoreInit.Do(func() {
		c.sessionStore = authService.NewSessionStore(c.config.SessionSweepInterval, c.Logger())
	})
	return c.sessionStore
}

// AuthUseCase returns the authentication use case with metrics instrumentation.
func (c *Container) AuthUseCase() (authUseCase.AuthUseCase, error) {
	var err error
	c.authUseCaseInit.Do(func() {
		var verifier authService.Verifier
		verifier, err = c.Verifier()
		if err != nil {
			c.initErrors["authUseCase"] = err
			return
		}

		var business metrics.BusinessMetrics
		business, err = c.BusinessMetrics()
		if err != nil {
			c.initErrors["authUseCase"] = err
			return
		}

		useCase := authUseCase.NewAuthUseCase(
			verifier,
			c.Resolver(),
			c.SessionStore(),
			c.Logger(),
		)
		c.authUseCase = authUseCase.NewAuthUseCaseWithMetrics(useCase, business)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authUseCase"]; exists {
		return nil, storedErr
	}
	return c.authUseCase, nil
}
