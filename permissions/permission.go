package permissions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission is the access rule of one route. Skip marks it public; an empty
// Permissions list admits any authenticated role.
type Permission struct {
	Permissions []string `json:"permissions"`
	Path        string   `json:"path"`
	Method      string   `json:"method"`
	Skip        bool     `json:"skip"`
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`
}

// FindPermissions returns the rule for a route pattern. Routes without a rule
// get the zero Permission, which requires authentication.
func (r *PermissionData) FindPermissions(path, method string) Permission {
	idx := slices.IndexFunc(r.Endpoints, func(rp Permission) bool {
		return rp.Path == path && rp.Method == method
	})

	if idx == -1 {
		return Permission{}
	}

	return r.Endpoints[idx]
}

// Parse decodes a permissions document and rejects duplicate rules.
func Parse(data []byte) (*PermissionData, error) {
	var permissions PermissionData

	if err := json.Unmarshal(data, &permissions); err != nil {
		return nil, fmt.Errorf("failed to decode permissions: %w", err)
	}

	seen := make(map[string]struct{}, len(permissions.Endpoints))

	for _, endpoint := range permissions.Endpoints {
		key := endpoint.Method + " " + endpoint.Path
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate permission for %s", key)
		}

		seen[key] = struct{}{}
	}

	return &permissions, nil
}

func Get() *PermissionData {
	permissions, err := Parse(permissionsData)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to decode embedded permissions")
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Successfully loaded embedded permissions")

	return permissions
}
