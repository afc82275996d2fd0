package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/paperpress/paperpress/internal/config"
	"github.com/paperpress/paperpress/internal/ctxlog"
	"github.com/paperpress/paperpress/internal/hash"
	"github.com/paperpress/paperpress/internal/ledger"
	"github.com/paperpress/paperpress/internal/tool"
)

// StageProvision is the stage ID of the dependency provisioner.
const StageProvision = "provision"

// Provisioner ensures the Python environment satisfies the requirements
// manifest. Provisioning is memoized in the ledger by the manifest's content
// hash: rerunning with an unchanged manifest invokes the installer zero
// times, while any edit to the manifest triggers a fresh install.
type Provisioner struct {
	Project *config.Project
	Ledger  *ledger.Ledger
	Invoker tool.Invoker
	// Force bypasses the memo and always reinstalls.
	Force bool
}

// ID implements Stage.
func (p *Provisioner) ID() string { return StageProvision }

// Run implements Stage.
func (p *Provisioner) Run(ctx context.Context) StageResult {
	logger := ctxlog.FromContext(ctx)
	prov := p.Project.Provision

	manifest := filepath.Join(p.Project.Root, prov.Manifest)
	manifestHash, err := hash.File(manifest)
	if err != nil {
		return failResult(StageProvision, "installer", 0,
			fmt.Errorf("reading requirements manifest %s: %w", manifest, err))
	}

	if !p.Force {
		done, err := p.Ledger.Provisioned(ctx, manifestHash)
		if err != nil {
			return failResult(StageProvision, "installer", 0, err)
		}
		if done {
			logger.Info("Environment already provisioned for this manifest, skipping install.",
				"manifest", prov.Manifest)
			return skipResult(StageProvision, "installer", "manifest hash already provisioned")
		}
	}

	logger.Info("Provisioning Python environment.", "manifest", prov.Manifest)
	result, err := p.Invoker.Invoke(ctx, tool.Spec{
		Tool:    "installer",
		Command: prov.Installer[0],
		Args:    append(append([]string{}, prov.Installer[1:]...), manifest),
		Dir:     p.Project.Root,
	})
	if err != nil {
		return failResult(StageProvision, "installer", result.Duration, err)
	}

	if err := p.Ledger.RecordProvision(ctx, manifestHash, time.Now()); err != nil {
		return failResult(StageProvision, "installer", result.Duration, err)
	}
	return okResult(StageProvision, "installer", result.Duration)
}
