package application

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Fingerprint_Deterministic(t *testing.T) {
	t.Parallel()
	first := Fingerprint("US", "site-1")
	for i := 0; i < 100; i++ {
		require.Equal(t, first, Fingerprint("US", "site-1"))
	}
}

// The digests are pinned so a refactor of the canonical form cannot silently
// orphan every stored quote.
func Test_Fingerprint_KnownVectors(t *testing.T) {
	t.Parallel()
	require.Equal(t, "4accc9fe23971f12c41bf44c6494ae7c4af08704", Fingerprint("US", ""))
	require.Equal(t, "665c2346828bacd5a09808301fa7b32a8b993e79", Fingerprint("US", "site-1"))
	require.Equal(t, "59b2d6989526d52aa366ac6400d8a1bfe52ab9ef", Fingerprint("GB", ""))
}

func Test_Fingerprint_VariesWithInputs(t *testing.T) {
	t.Parallel()
	require.NotEqual(t, Fingerprint("US", ""), Fingerprint("GB", ""))
	require.NotEqual(t, Fingerprint("US", ""), Fingerprint("US", "site-1"))
	require.NotEqual(t, Fingerprint("US", "site-1"), Fingerprint("US", "site-2"))
}

func Test_Fingerprint_EmptyTenantIsNullNotMissing(t *testing.T) {
	t.Parallel()
	// An absent tenant is encoded as JSON null, not an omitted key, so it can
	// never collide with a tenant literally named "null".
	require.NotEqual(t, Fingerprint("US", "null"), Fingerprint("US", ""))
}
