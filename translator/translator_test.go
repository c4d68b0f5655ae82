package translator

import (
	"testing"

	"github.com/richinsley/gogradient/gpu"
	"github.com/richinsley/gogradient/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireTranslator(t *testing.T) {
	t.Helper()
	if _, err := Get(); err != nil {
		t.Skipf("shader translator unavailable: %v", err)
	}
}

func TestTranslateFieldProgram(t *testing.T) {
	requireTranslator(t)

	vs, err := Translate(shader.VertexSource(), gpu.VertexStage, false)
	require.NoError(t, err)
	assert.NotEmpty(t, vs.Code)

	fs, err := Translate(shader.FieldFragmentSource(), gpu.FragmentStage, false)
	require.NoError(t, err)
	assert.NotEmpty(t, fs.Code)
	for _, name := range shader.ActiveUniforms() {
		assert.Contains(t, fs.Names, name)
	}
}

func TestValidateRejectsUnterminatedStatement(t *testing.T) {
	requireTranslator(t)

	bad := "#version 300 es\nprecision highp float;\nout vec4 c;\nvoid main() { c = vec4(1.0)\n"
	assert.Error(t, Validate(bad, gpu.FragmentStage))
}
