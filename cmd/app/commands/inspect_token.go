package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/allisson/entitygate/internal/app"
	authService "github.com/allisson/entitygate/internal/auth/service"
	"github.com/allisson/entitygate/internal/config"
)

// RunInspectToken verifies a bearer token and prints the entitlements that
// would be resolved for it, without touching the session store. Useful for
// debugging why a caller is denied access.
func RunInspectToken(ctx context.Context, token string, format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	// Load configuration
	cfg := config.Load()

	// Create DI container
	container := app.NewContainer(cfg)
	logger := container.Logger()

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	verifier, err := container.Verifier()
	if err != nil {
		return fmt.Errorf("failed to initialize verifier: %w", err)
	}

	return inspectToken(ctx, verifier, container.Resolver(), os.Stdout, token, format)
}

// inspectToken verifies and resolves the token, then writes the result.
func inspectToken(
	ctx context.Context,
	verifier authService.Verifier,
	resolver authService.Resolver,
	out io.Writer,
	token string,
	format string,
) error {
	if token == "" {
		return fmt.Errorf("token must not be empty")
	}

	assertion, err := verifier.Verify(ctx, token)
	if err != nil {
		return fmt.Errorf("token verification failed: %w", err)
	}

	entitlements, err := resolver.Resolve(assertion)
	if err != nil {
		return fmt.Errorf("entitlement resolution failed: %w", err)
	}

	if format == "json" {
		return outputInspectJSON(out, assertion.Issuer, entitlements.SubjectID,
			entitlements.GlobalRoles, entitlements.ResourcePermissions, entitlements.ExpiresAt)
	}

	outputInspectText(out, assertion.Issuer, entitlements.SubjectID,
		entitlements.GlobalRoles, entitlements.ResourcePermissions, entitlements.ExpiresAt)
	return nil
}

// outputInspectText writes the resolved entitlements in human-readable form.
func outputInspectText(
	out io.Writer,
	issuer string,
	subject string,
	roles []string,
	permissions map[string][]string,
	expiresAt time.Time,
) {
	fmt.Fprintf(out, "Subject:    %s\n", subject)
	if issuer != "" {
		fmt.Fprintf(out, "Issuer:     %s\n", issuer)
	}
	fmt.Fprintf(out, "Expires at: %s\n", expiresAt.Format(time.RFC3339))

	fmt.Fprintln(out, "Roles:")
	if len(roles) == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	for _, role := range roles {
		fmt.Fprintf(out, "  - %s\n", role)
	}

	fmt.Fprintln(out, "Resource permissions:")
	if len(permissions) == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	for pattern, actions := range permissions {
		fmt.Fprintf(out, "  %s: %v\n", pattern, actions)
	}
}

// outputInspectJSON writes the resolved entitlements as JSON.
func outputInspectJSON(
	out io.Writer,
	issuer string,
	subject string,
	roles []string,
	permissions map[string][]string,
	expiresAt time.Time,
) error {
	result := map[string]any{
		"subject":              subject,
		"issuer":               issuer,
		"roles":                roles,
		"resource_permissions": permissions,
		"expires_at":           expiresAt.Format(time.RFC3339),
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(out, string(jsonBytes))
	return nil
}
