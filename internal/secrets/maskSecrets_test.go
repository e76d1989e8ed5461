package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskerReplacesKey(t *testing.T) {
	mask := Masker("sk-bayen-live-8f2c1d9e")

	masked := mask(`request failed: key sk-bayen-live-8f2c1d9e rejected`)
	assert.Equal(t, "request failed: key <masked> rejected", masked)
	assert.NotContains(t, masked, "sk-bayen-live-8f2c1d9e")
}

func TestMaskerScrubsHeaderEchoes(t *testing.T) {
	mask := Masker("sk-bayen-live-8f2c1d9e")

	// servers sometimes echo the offending header back with a different key
	masked := mask("unauthorized: X-API-Key: sk-other-key-0000")
	assert.Equal(t, "unauthorized: X-API-Key: <masked>", masked)

	masked = mask("x-api-key=sk-other-key-0000 invalid")
	assert.Equal(t, "x-api-key=<masked> invalid", masked)
}

func TestMaskerEmptyKey(t *testing.T) {
	mask := Masker("")
	assert.Equal(t, "plain body", mask("plain body"))
}
