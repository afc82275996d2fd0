package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperpress/paperpress/internal/testutil"
)

func TestProvisioner_RunsInstallerOnce(t *testing.T) {
	ctx := context.Background()
	fx := testutil.NewProjectFixture(t)
	p := &Provisioner{Project: fx.Project, Ledger: fx.Ledger, Invoker: fx.Invoker}

	first := p.Run(ctx)
	assert.Equal(t, StatusOK, first.Status)
	require.Len(t, fx.Invoker.CallsFor("installer"), 1)

	call := fx.Invoker.CallsFor("installer")[0]
	assert.Equal(t, "pip", call.Command)
	assert.Equal(t, "install", call.Args[0])
	assert.Equal(t, filepath.Join(fx.Project.Root, "binder", "requirements.txt"), call.Args[len(call.Args)-1])

	// An unchanged manifest performs zero additional installer invocations.
	second := p.Run(ctx)
	assert.Equal(t, StatusSkipped, second.Status)
	assert.Len(t, fx.Invoker.CallsFor("installer"), 1)
}

func TestProvisioner_EditedManifestReinstalls(t *testing.T) {
	ctx := context.Background()
	fx := testutil.NewProjectFixture(t)
	p := &Provisioner{Project: fx.Project, Ledger: fx.Ledger, Invoker: fx.Invoker}

	require.Equal(t, StatusOK, p.Run(ctx).Status)

	testutil.WriteFile(t, fx.Project.Root, fx.Project.Provision.Manifest, "numpy\nscipy\npandas\n")

	result := p.Run(ctx)
	assert.Equal(t, StatusOK, result.Status, "a changed manifest is not memoized")
	assert.Len(t, fx.Invoker.CallsFor("installer"), 2)
}

func TestProvisioner_ForceBypassesMemo(t *testing.T) {
	ctx := context.Background()
	fx := testutil.NewProjectFixture(t)

	p := &Provisioner{Project: fx.Project, Ledger: fx.Ledger, Invoker: fx.Invoker}
	require.Equal(t, StatusOK, p.Run(ctx).Status)

	forced := &Provisioner{Project: fx.Project, Ledger: fx.Ledger, Invoker: fx.Invoker, Force: true}
	assert.Equal(t, StatusOK, forced.Run(ctx).Status)
	assert.Len(t, fx.Invoker.CallsFor("installer"), 2)
}

func TestProvisioner_MissingManifest(t *testing.T) {
	fx := testutil.NewProjectFixture(t)
	fx.Project.Provision.Manifest = "binder/absent.txt"
	p := &Provisioner{Project: fx.Project, Ledger: fx.Ledger, Invoker: fx.Invoker}

	result := p.Run(context.Background())
	assert.Equal(t, StatusFailed, result.Status)
	assert.ErrorContains(t, result.Err, "requirements manifest")
	assert.Empty(t, fx.Invoker.CallsFor("installer"))
}

func TestProvisioner_InstallerFailureNotMemoized(t *testing.T) {
	ctx := context.Background()
	fx := testutil.NewProjectFixture(t)
	fx.Invoker.Fail("installer", 1, "No matching distribution found")

	p := &Provisioner{Project: fx.Project, Ledger: fx.Ledger, Invoker: fx.Invoker}
	result := p.Run(ctx)
	assert.Equal(t, StatusFailed, result.Status)

	// The failure must not count as a successful provision: a retry invokes
	// the installer again rather than skipping.
	result = p.Run(ctx)
	assert.Equal(t, StatusFailed, result.Status)
	assert.Len(t, fx.Invoker.CallsFor("installer"), 2)
}
