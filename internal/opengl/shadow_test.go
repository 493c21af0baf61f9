package opengl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShadowSettingsNormalized(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   ShadowSettings
		want ShadowSettings
	}{
		{"zero takes defaults", ShadowSettings{}, ShadowSettings{Size: 2048, Bias: 0.002, Kernel: 0}},
		{"defaults unchanged", DefaultShadowSettings(), DefaultShadowSettings()},
		{"tiny size raised", ShadowSettings{Size: 16, Bias: 0.01, Kernel: 2}, ShadowSettings{Size: 256, Bias: 0.01, Kernel: 2}},
		{"huge size and kernel capped", ShadowSettings{Size: 1 << 16, Bias: 0.001, Kernel: 9}, ShadowSettings{Size: 8192, Bias: 0.001, Kernel: 3}},
		{"negative kernel means one tap", ShadowSettings{Size: 1024, Bias: 0.001, Kernel: -1}, ShadowSettings{Size: 1024, Bias: 0.001, Kernel: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalized())
		})
	}
}

func TestShadowSettingsTexelSize(t *testing.T) {
	t.Parallel()
	s := DefaultShadowSettings()
	assert.InDelta(t, 300.0/2048, s.TexelSize(300), 1e-6)
	assert.InDelta(t, 300.0/2048, ShadowSettings{}.TexelSize(300), 1e-6)
	assert.Equal(t, "2048x2048, PCF 3x3, bias 0.0020", s.String())
}
