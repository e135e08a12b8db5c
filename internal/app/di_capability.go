package app

import (
	cacheHTTP "github.com/allisson/entitygate/internal/cache/http"
	cacheUC "github.com/allisson/entitygate/internal/cache/usecase"
	capabilityHTTP "github.com/allisson/entitygate/internal/capability/http"
	capabilityService "github.com/allisson/entitygate/internal/capability/service"
	capabilityUseCase "github.com/allisson/entitygate/internal/capability/usecase"
	"github.com/allisson/entitygate/internal/http"
	"github.com/allisson/entitygate/internal/metrics"
	"go.opentelemetry.io/otel/metric"
)

// Registry returns the capability registry with the built-in capabilities
// registered.
func (c *Container) Registry() (*capabilityService.Registry, error) {
	var err error
	c.registryInit.Do(func() {
		var cache cacheUC.UseCase
		cache, err = c.CacheUseCase()
		if err != nil {
			c.initErrors["registry"] = err
			return
		}

		registry := capabilityService.NewRegistry()
		if err = capabilityUseCase.NewBuiltins(cache).Register(registry); err != nil {
			c.initErrors["registry"] = err
			return
		}
		c.registry = registry
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["registry"]; exists {
		return nil, storedErr
	}
	return c.registry, nil
}

// Gate returns the layered authorization gate.
func (c *Container) Gate() (*capabilityService.Gate, error) {
	var err error
	c.gateInit.Do(func() {
		var business metrics.BusinessMetrics
		business, err = c.BusinessMetrics()
		if err != nil {
			c.initErrors["gate"] = err
			return
		}
		c.gate = capabilityService.NewGate(c.config.MinimumGlobalRoles, business, c.Logger())
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["gate"]; exists {
		return nil, storedErr
	}
	return c.gate, nil
}

// CapabilityUseCase returns the capability use case with metrics instrumentation.
func (c *Container) CapabilityUseCase() (capabilityUseCase.CapabilityUseCase, error) {
	var err error
	c.capabilityUseCaseInit.Do(func() {
		var registry *capabilityService.Registry
		registry, err = c.Registry()
		if err != nil {
			c.initErrors["capabilityUseCase"] = err
			return
		}

		var gate *capabilityService.Gate
		gate, err = c.Gate()
		if err != nil {
			c.initErrors["capabilityUseCase"] = err
			return
		}

		var business metrics.BusinessMetrics
		business, err = c.BusinessMetrics()
		if err != nil {
			c.initErrors["capabilityUseCase"] = err
			return
		}

		useCase := capabilityUseCase.NewCapabilityUseCase(registry, gate, c.Logger())
		c.capabilityUseCase = capabilityUseCase.NewCapabilityUseCaseWithMetrics(useCase, business)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["capabilityUseCase"]; exists {
		return nil, storedErr
	}
	return c.capabilityUseCase, nil
}

// initHTTPServer assembles the router and wraps it in the HTTP server.
func (c *Container) initHTTPServer() (*http.Server, error) {
	auth, err := c.AuthUseCase()
	if err != nil {
		return nil, err
	}

	capability, err := c.CapabilityUseCase()
	if err != nil {
		return nil, err
	}

	cache, err := c.CacheUseCase()
	if err != nil {
		return nil, err
	}

	gate, err := c.Gate()
	if err != nil {
		return nil, err
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}

	var meterProvider metric.MeterProvider
	if provider != nil {
		meterProvider = provider.MeterProvider()
	}

	router := http.SetupRouter(c.config, c.Logger(), http.RouterDeps{
		AuthUseCase:       auth,
		CapabilityHandler: capabilityHTTP.NewCapabilityHandler(capability, c.Logger()),
		CacheHandler:      cacheHTTP.NewCacheHandler(cache, gate, c.Logger()),
		CacheUseCase:      cache,
		MeterProvider:     meterProvider,
	})

	return http.NewServer(c.config.ServerHost, c.config.ServerPort, router, c.Logger()), nil
}
