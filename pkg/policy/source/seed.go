package source

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"atlashq/meridian/pkg/policy"
	"atlashq/meridian/pkg/policy/store"
)

// DefaultActor is the actor recorded when the seed file names none.
const DefaultActor = "seed-file"

// SeedFile is the on-disk shape of a policy seed.
type SeedFile struct {
	// Actor is recorded on drafts created from this file.
	Actor string `yaml:"actor"`

	// Note annotates drafts created from this file.
	Note string `yaml:"note"`

	// Config is the policy configuration to load.
	Config policy.Config `yaml:"config"`
}

// Load reads and validates a seed file.
func Load(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	if seed.Actor == "" {
		seed.Actor = DefaultActor
	}

	if err := policy.Validate(seed.Config); err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}

	return &seed, nil
}

// SeedIfEmpty loads the seed file and, when the store holds no versions,
// creates and immediately activates the seeded configuration. A non-empty
// store is left untouched so a restart never clobbers operator changes.
func SeedIfEmpty(ctx context.Context, st store.Store, path string) (*store.VersionRecord, error) {
	seed, err := Load(path)
	if err != nil {
		return nil, err
	}

	versions, err := st.ListVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	if len(versions) > 0 {
		return nil, nil
	}

	draft, err := st.CreateDraft(ctx, seed.Actor, seed.Config, seed.Note)
	if err != nil {
		return nil, fmt.Errorf("failed to create seed draft: %w", err)
	}
	active, err := st.ActivateVersion(ctx, draft.VersionID, seed.Actor, nil, seed.Note)
	if err != nil {
		return nil, fmt.Errorf("failed to activate seed draft: %w", err)
	}
	return active, nil
}

// ImportDraft loads the seed file and records its configuration as a new
// draft. Used by the file watcher: edits never activate themselves.
func ImportDraft(ctx context.Context, st store.Store, path string) (*store.VersionRecord, error) {
	seed, err := Load(path)
	if err != nil {
		return nil, err
	}
	return st.CreateDraft(ctx, seed.Actor, seed.Config, seed.Note)
}
