package memory_test

import (
	"context"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/custodia-api/internal/domain/permission"
	"github.com/jhoicas/custodia-api/internal/infrastructure/memory"
)

// Fiber entrega los params como strings sobre el buffer de la petición; el store no debe
// quedarse con esa memoria como key.
func TestPermissionReplace_KeyNoDependeDelBufferDeLaPeticion(t *testing.T) {
	store := memory.New()
	repo := store.Permissions()
	ctx := context.Background()

	buf := []byte("2f1c7a52-0a57-4d8e-9f3a-7d5c1b7c2e10")
	userID := string(buf)
	aliased := unsafe.String(&buf[0], len(buf))

	require.NoError(t, repo.Replace(ctx, aliased, permission.Set{permission.CrearEntrada: true}))
	copy(buf, "ffffffff-ffff-ffff-ffff-ffffffffffff")

	set, err := repo.Get(ctx, userID)
	require.NoError(t, err)
	assert.True(t, set[permission.CrearEntrada])
}
