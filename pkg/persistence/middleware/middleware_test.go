package middleware_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/aretw0/stepwise/pkg/adapters/memory"
	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/aretw0/stepwise/pkg/persistence/middleware"
	"github.com/aretw0/stepwise/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(id string) *domain.Report {
	return &domain.Report{
		RunID:     id,
		StartedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Recipes: []domain.RecipeResult{{
			Index: 0,
			Steps: []string{"Login", "Charge"},
			Results: []domain.StepResult{
				{Step: "Login", Type: "Token", Value: "secret-token"},
				{Step: "Charge", Type: "Receipt", Value: "r-1"},
			},
		}},
	}
}

func key(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func TestEncryption_Contract(t *testing.T) {
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(1)})
	require.NoError(t, err)
	ports.RunReportStoreContract(t, mw(memory.NewStore()))
}

func TestEncryption_SealsAtRest(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(1)})
	require.NoError(t, err)
	store := mw(inner)

	require.NoError(t, store.Save(ctx, report("r1")))

	raw, err := inner.Load(ctx, "r1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)
	assert.Empty(t, raw.Recipes)
	assert.NotContains(t, string(raw.Sealed), "secret-token")

	got, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "secret-token", got.Recipes[0].Results[0].Value)
}

func TestEncryption_KeyRotation(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()

	oldMW, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(1)})
	require.NoError(t, err)
	require.NoError(t, oldMW(inner).Save(ctx, report("r1")))

	rotated, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(2), FallbackKeys: [][]byte{key(1)}})
	require.NoError(t, err)
	_, err = rotated(inner).Load(ctx, "r1")
	assert.NoError(t, err)

	wrong, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(3)})
	require.NoError(t, err)
	_, err = wrong(inner).Load(ctx, "r1")
	assert.ErrorContains(t, err, "decrypt")
}

func TestEncryption_RejectsShortKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)
}

func TestEncryption_PlainReportRejected(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	require.NoError(t, inner.Save(ctx, report("plain")))

	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(1)})
	require.NoError(t, err)
	_, err = mw(inner).Load(ctx, "plain")
	assert.ErrorContains(t, err, "envelope")
}

func TestRedaction(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	mw, err := middleware.NewRedactionMiddleware([]string{"^Token$"})
	require.NoError(t, err)
	store := mw(inner)

	original := report("r1")
	require.NoError(t, store.Save(ctx, original))

	got, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, got.Recipes[0].Results[0].Value)
	assert.Equal(t, "r-1", got.Recipes[0].Results[1].Value)
	assert.Equal(t, "secret-token", original.Recipes[0].Results[0].Value, "caller's report is not modified")

	_, err = middleware.NewRedactionMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	redact, err := middleware.NewRedactionMiddleware([]string{"Login"})
	require.NoError(t, err)
	encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(1)})
	require.NoError(t, err)

	store := middleware.Chain(inner, redact, encrypt)
	require.NoError(t, store.Save(ctx, report("r1")))

	raw, err := inner.Load(ctx, "r1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)

	got, err := store.Load(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, middleware.Mask, got.Recipes[0].Results[0].Value)
}
