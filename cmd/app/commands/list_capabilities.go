package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/allisson/entitygate/internal/app"
	capabilityService "github.com/allisson/entitygate/internal/capability/service"
	"github.com/allisson/entitygate/internal/config"
)

// RunListCapabilities prints every registered capability with its visibility
// tags and required permissions, ignoring any caller entitlements.
func RunListCapabilities(ctx context.Context, format string) error {
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}

	// Create DI container
	container := app.NewContainer(config.Load())
	logger := container.Logger()

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	registry, err := container.Registry()
	if err != nil {
		return fmt.Errorf("failed to initialize registry: %w", err)
	}

	return listCapabilities(registry, os.Stdout, format)
}

// listCapabilities writes the registry contents in the requested format.
func listCapabilities(registry *capabilityService.Registry, out io.Writer, format string) error {
	descriptors := registry.List()

	if format == "json" {
		type entry struct {
			Name                string   `json:"name"`
			Description         string   `json:"description"`
			VisibilityTags      []string `json:"visibility_tags"`
			RequiredPermissions []string `json:"required_permissions"`
		}

		entries := make([]entry, 0, len(descriptors))
		for _, descriptor := range descriptors {
			entries = append(entries, entry{
				Name:                descriptor.Name,
				Description:         descriptor.Description,
				VisibilityTags:      descriptor.VisibilityTags,
				RequiredPermissions: descriptor.RequiredPermissions,
			})
		}

		jsonBytes, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}

		fmt.Fprintln(out, string(jsonBytes))
		return nil
	}

	for _, descriptor := range descriptors {
		fmt.Fprintf(out, "%s\n", descriptor.Name)
		fmt.Fprintf(out, "  Description: %s\n", descriptor.Description)
		if len(descriptor.VisibilityTags) > 0 {
			fmt.Fprintf(out, "  Visibility tags: %s\n", strings.Join(descriptor.VisibilityTags, ", "))
		}
		if len(descriptor.RequiredPermissions) > 0 {
			fmt.Fprintf(out, "  Required permissions: %s\n", strings.Join(descriptor.RequiredPermissions, ", "))
		}
	}

	return nil
}
