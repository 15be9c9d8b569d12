//go:build unix

package clip

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelperWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("FeedsStdin", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "selection")
		h := helper{name: "sh", args: []string{"-c", `cat > "$0"`, out}}
		require.NoError(t, h.write(ctx, []byte("kept after exit")))

		b, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "kept after exit", string(b))
	})

	t.Run("ReturnsWithoutWaitingForChild", func(t *testing.T) {
		// Like xclip, leave a background child holding the selection.
		h := helper{name: "sh", args: []string{"-c", "cat >/dev/null; sleep 5 &"}}
		require.NoError(t, h.write(ctx, []byte("x")))
	})

	t.Run("Failure", func(t *testing.T) {
		h := helper{name: "sh", args: []string{"-c", "exit 3"}}
		err := h.write(ctx, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sh:")
	})
}
