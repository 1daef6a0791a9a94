package blobfield

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFragmentShaderSource(t *testing.T) {
	src := fragmentShaderSource

	// the output is bound in the source, so nothing has to be set before linking
	assert.Contains(t, src, "layout(location = 0) out vec4 frag_color;")
	assert.Contains(t, src, fmt.Sprintf("#define MAX_BLOBS %d", MaxBlobs))
	assert.NotContains(t, src, "%!", "format verbs left unfilled")

	for _, name := range []string{uTime, uResolution, uBlobCount, uTightness, uSharpness, uWarp1, uWarp2, uWarp3} {
		assert.True(t, strings.Contains(src, " "+name+";"), "uniform %s not declared", name)
	}
	assert.Contains(t, src, uColors+"[MAX_BLOBS];")
	assert.Contains(t, vertexShaderSource, "in vec2 "+aVertPos+";")
}
