package main

import (
	"bytes"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

var onboarding = filepath.Join("testdata", "onboarding.yaml")

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "stepwise version ")
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate", onboarding)
	require.NoError(t, err)
	assert.Equal(t, "onboarding: 2 steps, 1 recipes\n", out)

	_, err = execute(t, "validate", filepath.Join("testdata", "unsound.yaml"))
	assert.ErrorIs(t, err, domain.ErrAmbiguousDeclaration)

	_, err = execute(t, "validate", filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)
}

func TestRecipes(t *testing.T) {
	out, err := execute(t, "recipes", onboarding)
	require.NoError(t, err)
	assert.Contains(t, out, "input name: string")
	assert.Contains(t, out, "recipe 0: Register -> Greet")

	out, err = execute(t, "recipes", "--json", onboarding)
	require.NoError(t, err)
	assert.JSONEq(t, `{"inputs":{"name":"string"},"recipes":[["Register","Greet"]]}`, out)
}

func TestGraph(t *testing.T) {
	out, err := execute(t, "graph", onboarding)
	require.NoError(t, err)
	assert.Contains(t, out, `Register -- "User" --> Greet`)

	out, err = execute(t, "graph", "--recipe", "0", onboarding)
	require.NoError(t, err)
	assert.Contains(t, out, "class Greet recipe;")

	_, err = execute(t, "graph", "--recipe", "3", onboarding)
	assert.ErrorContains(t, err, "out of range")
}

func TestRun(t *testing.T) {
	out, err := execute(t, "run", "--json", onboarding)
	require.NoError(t, err)
	assert.Contains(t, out, `"run_id"`)
	assert.Contains(t, out, `"hello"`)

	out, err = execute(t, "run", onboarding)
	require.NoError(t, err)
	assert.Contains(t, out, "## Recipe 0: Register → Greet")
	assert.Contains(t, out, "status: ")
}

func TestRun_InputsOverrideDefaults(t *testing.T) {
	out, err := execute(t, "run", "--json", "--inputs", filepath.Join("testdata", "inputs.json"), onboarding)
	assert.ErrorIs(t, err, domain.ErrDeclarationViolated)
	assert.Contains(t, out, "declaration violated")
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "chatty", "version")
	assert.Error(t, err)
}

func TestRun_WithCommands(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	out, err := execute(t, "run", "--json", "--commands", filepath.Join("testdata", "commands.yaml"), onboarding)
	require.NoError(t, err)
	assert.Contains(t, out, `"from shell"`)
}

func TestStoreMiddlewares(t *testing.T) {
	t.Setenv("STEPWISE_ENCRYPTION_KEY", "")

	cmd := newServeCmd(&app{})
	require.NoError(t, cmd.Flags().Set("redact", "Token"))
	require.NoError(t, cmd.Flags().Set("encryption-key", strings.Repeat("ab", 32)))
	mws, err := storeMiddlewares(cmd)
	require.NoError(t, err)
	assert.Len(t, mws, 2)

	bad := newServeCmd(&app{})
	require.NoError(t, bad.Flags().Set("encryption-key", "abcd"))
	_, err = storeMiddlewares(bad)
	assert.ErrorContains(t, err, "32 bytes")
}
