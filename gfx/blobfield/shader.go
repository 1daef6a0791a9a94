package blobfield

import "fmt"

// uniform names shared by the shader source and the pipeline
const (
	uTime       = "time"
	uResolution = "resolution"
	uBlobCount  = "blobCount"
	uTightness  = "tightness"
	uSharpness  = "sharpness"
	uWarp1      = "warp1"
	uWarp2      = "warp2"
	uWarp3      = "warp3"
	uColors     = "colors"

	aVertPos = "vertPos"
)

const vertexShaderSource = `
	#version 410
	in vec2 vertPos;
	out vec2 fragUV;

	void main() {
		fragUV = vertPos * 0.5 + 0.5;
		gl_Position = vec4(vertPos, 0.0, 1.0);
	}`

// resolution is declared for hosts that extend the shader; the field itself
// is resolution independent.
var fragmentShaderSource = fmt.Sprintf(`
	#version 410
	precision highp float;

	#define MAX_BLOBS %d

	uniform float time;
	uniform vec2 resolution;
	uniform uint blobCount;
	uniform float tightness;
	uniform float sharpness;
	uniform float warp1;
	uniform float warp2;
	uniform float warp3;
	uniform vec3 colors[MAX_BLOBS];

	in vec2 fragUV;
	layout(location = 0) out vec4 frag_color;

	vec2 hash22(vec2 p) {
		p = fract(p * vec2(5.3983, 5.4427));
		p += dot(p, p.yx + 19.19);
		return fract(vec2(p.x * p.y, p.x + p.y));
	}

	vec2 blobCenter(int i, float t) {
		if (i < 4) {
			return vec2((i & 1) == 0 ? -0.9 : 0.9, (i & 2) == 0 ? 0.9 : -0.9);
		}
		vec2 h = hash22(vec2(float(i), 42.0));
		float a = 6.2831 * h.x;
		return h * 1.8 - 0.9 + 0.12 * vec2(sin(t * 0.55 + a), cos(t * 0.44 + a * 1.3));
	}

	void main() {
		float t = time;
		vec2 p = fragUV * 2.0 - 1.0;
		vec2 warped = p
			+ warp1 * vec2(sin(p.y * 2.0 + t * 0.65), cos(p.x * 2.0 - t * 0.48))
			+ warp2 * vec2(cos(p.y * 3.3 - t * 0.45), sin(p.x * 3.3 + t * 0.38))
			+ warp3 * vec2(sin((p.x + p.y) * 2.4 + t * 0.55), cos((p.x - p.y) * 2.4 - t * 0.43));

		float weightSum = 0.0;
		vec3 colorSum = vec3(0.0);
		int n = min(int(blobCount), MAX_BLOBS);
		for (int i = 0; i < n; i++) {
			vec2 d = warped - blobCenter(i, t);
			float w = exp(-dot(d, d) * tightness);
			w = pow(w, sharpness);
			weightSum += w;
			colorSum += w * colors[i];
		}

		vec3 rgb = colorSum / max(weightSum, %g);
		rgb = mix(rgb, vec3(1.0), %g);
		frag_color = vec4(rgb, 1.0);
	}`, MaxBlobs, minWeight, whiteMix)
