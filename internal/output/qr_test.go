package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"rsc.io/qr"
)

func TestDefaultQRConfig(t *testing.T) {
	cfg := DefaultQRConfig()

	assert.Equal(t, qr.L, cfg.Level, "default level should be L (low)")
	assert.Equal(t, 1, cfg.QuietZone, "default quiet zone should be 1")
	assert.True(t, cfg.HalfBlocks, "half blocks should be enabled by default")
}

func TestCanRenderQR_Buffer(t *testing.T) {
	var buf bytes.Buffer
	assert.False(t, CanRenderQR(&buf), "bytes.Buffer should not be a terminal")
}

func TestCanRenderQR_Nil(t *testing.T) {
	assert.False(t, CanRenderQR(nil), "nil writer should not be a terminal")
}

func TestRenderQR_NonTerminal(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultQRConfig()

	err := RenderQR(&buf, "bitcoin:bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", cfg)

	require.NoError(t, err, "RenderQR should not error for non-terminal")
	assert.Empty(t, buf.String(), "no output should be produced for non-terminal")
}

func TestRenderPaymentURI(t *testing.T) {
	t.Run("prints address below QR", func(t *testing.T) {
		var buf bytes.Buffer
		err := RenderPaymentURI(&buf,
			"bitcoin:bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq",
			"bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq")

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Deposit address: bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq")
	})

	t.Run("falls back to bare address without uri", func(t *testing.T) {
		var buf bytes.Buffer
		err := RenderPaymentURI(&buf, "", "0x742d35Cc6634C0532925a3b844Bc454e4438f44e")

		require.NoError(t, err)
		assert.Contains(t, buf.String(), "Deposit address: 0x742d35Cc6634C0532925a3b844Bc454e4438f44e")
	})

	t.Run("empty input produces no output", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, RenderPaymentURI(&buf, "", ""))
		assert.Empty(t, buf.String())
	})
}
