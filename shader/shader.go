package shader

// Sources are written in ESSL 3.00 (the WebGL2 dialect). The GL device runs
// them through the translator to get desktop GLSL; the software device only
// validates them.

// Attribute and uniform names shared by the sources and the renderer.
const (
	AttribPosition = "aPosition"

	UniformResolution = "iResolution"
	UniformTime       = "iTime"
	UniformFrame      = "iFrame"
	UniformMouse      = "iMouse"

	UniformScale          = "uScale"
	UniformPhaseX         = "uPhaseX"
	UniformVelocity       = "uVelocity"
	UniformFieldDetail    = "uMode1Detail"
	UniformFieldTwist     = "uMode1Twist"
	UniformSecondarySpeed = "uMode2Speed"
	UniformBrightness     = "uBrightness"
	UniformHue            = "uHue"
	UniformSaturation     = "uSaturation"
	UniformVibrance       = "uVibrance"
	UniformContrast       = "uContrast"
	UniformRGBMultiplierR = "uRgbMultiplierR"
	UniformRGBMultiplierG = "uRgbMultiplierG"
	UniformRGBMultiplierB = "uRgbMultiplierB"
	UniformColorOffset    = "uColorOffset"
	UniformGrainAmount    = "uGrainAmount"
	UniformGrainSize      = "uGrainSize"
	UniformPosterize      = "uPosterize"
	UniformScanlines      = "uScanlines"
	UniformScanlineWidth  = "uScanlineWidth"
)

// QuadVertices is the full-viewport triangle strip in clip space.
var QuadVertices = []float32{
	-1, -1,
	1, -1,
	-1, 1,
	1, 1,
}

const vertexShaderSource = `#version 300 es
in vec2 aPosition;
void main() {
    gl_Position = vec4(aPosition, 0.0, 1.0);
}
`

// iFrame, iMouse, uVibrance, uColorOffset, the grain, posterize and scanline
// uniforms are declared for the uniform contract but not read; compilers drop
// them and their locations resolve to -1.
const fieldFragmentSource = `#version 300 es
precision highp float;
precision highp int;

uniform vec2  iResolution;
uniform float iTime;
uniform int   iFrame;
uniform vec4  iMouse;

uniform float uScale;
uniform float uPhaseX;
uniform float uVelocity;
uniform float uMode1Detail;
uniform float uMode1Twist;
uniform float uMode2Speed;
uniform float uBrightness;
uniform float uHue;
uniform float uSaturation;
uniform float uVibrance;
uniform float uContrast;
uniform float uRgbMultiplierR;
uniform float uRgbMultiplierG;
uniform float uRgbMultiplierB;
uniform float uColorOffset;
uniform float uGrainAmount;
uniform float uGrainSize;
uniform float uPosterize;
uniform float uScanlines;
uniform float uScanlineWidth;

out vec4 fragColor;

#define time iTime

const int warpIterations = 20;
const int couplingIterations = 20;

float f(in vec2 p) {
    return sin(p.x + sin(p.y + time * uPhaseX)) * sin(p.y * p.x * 0.1 + time * uVelocity);
}

struct Field {
    vec2 vel;
    vec2 pos;
};

Field field(in vec2 p) {
    Field fld;
    vec2 ep = vec2(0.05, 0.0);
    vec2 rz = vec2(0.0);

    for (int i = 0; i < warpIterations; i++) {
        float t0 = f(p);
        float t1 = f(p + ep.xy);
        float t2 = f(p + ep.yx);
        vec2 g = vec2((t1 - t0), (t2 - t0)) / ep.xx;
        vec2 t = vec2(-g.y, g.x);

        p += (uMode1Twist * 0.01) * t + g * (1.0 / uMode1Detail);
        p.x = p.x + sin(time * uMode2Speed / 10.0) / 10.0;
        p.y = p.y + cos(time * uMode2Speed / 10.0) / 10.0;
        rz = g;
    }

    for (int i = 1; i < couplingIterations; i++) {
        p.x += 0.3 / float(i) * sin(float(i) * 3.0 * p.y + time * uMode2Speed) + 0.5;
        p.y += 0.3 / float(i) * cos(float(i) * 3.0 * p.x + time * uMode2Speed) + 0.5;
    }

    fld.vel = rz;
    fld.pos = p;
    return fld;
}

vec3 getRGB(in Field fld) {
    vec2 p = fld.pos;
    float r = cos(p.x + p.y + 1.0) * 0.5 + 0.5;
    float g = sin(p.x + p.y + 1.0) * 0.5 + 0.5;
    float b = (sin(p.x + p.y) + cos(p.x + p.y)) * 0.3 + 0.5;
    return vec3(r, g, b);
}

vec3 hueShift(vec3 color, float hue) {
    const vec3 k = vec3(0.57735, 0.57735, 0.57735);
    float cosAngle = cos(hue);
    return vec3(color * cosAngle + cross(k, color) * sin(hue) + k * dot(k, color) * (1.0 - cosAngle));
}

vec3 adjustSaturation(vec3 color, float saturation) {
    float gray = dot(color, vec3(0.299, 0.587, 0.114));
    return mix(vec3(gray), color, saturation);
}

vec3 adjustContrast(vec3 color, float contrast) {
    return (color - 0.5) * contrast + 0.5;
}

void main() {
    vec2 p = gl_FragCoord.xy / iResolution.xy - 0.5;
    p.x *= iResolution.x / iResolution.y;
    p *= uScale;

    Field fld = field(p);
    vec3 col = getRGB(fld) * 0.85;

    col = hueShift(col, uHue * 0.01745329);
    col = adjustSaturation(col, uSaturation);
    col = adjustContrast(col, uContrast);
    col *= vec3(uRgbMultiplierR, uRgbMultiplierG, uRgbMultiplierB);
    col *= uBrightness;

    fragColor = vec4(col, 1.0);
}
`

// ─────────────────────────── visible surface presenter ──────────────────────────

const presentVertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
out vec2 frag_uv;
void main() {
    frag_uv = in_vert * 0.5 + 0.5;
    gl_Position = vec4(in_vert, 0.0, 1.0);
}
`

// The visible surface is uploaded top row first, so v is flipped when sampling.
const presentFragmentShaderSourceGL = `#version 410 core
in vec2 frag_uv;
out vec4 fragColor;
uniform sampler2D u_texture;
uniform float u_opacity;
void main() {
    vec4 c = texture(u_texture, vec2(frag_uv.x, 1.0 - frag_uv.y));
    fragColor = vec4(c.rgb * u_opacity, 1.0);
}
`

// ────────────────────────────────── Public API ─────────────────────────────────

// VertexSource returns the quad vertex stage.
func VertexSource() string {
	return vertexShaderSource
}

// FieldFragmentSource returns the gradient field fragment stage.
func FieldFragmentSource() string {
	return fieldFragmentSource
}

// PresentSources returns the desktop GL program that draws the visible
// surface into a window.
func PresentSources() (vertex, fragment string) {
	return presentVertexShaderSourceGL, presentFragmentShaderSourceGL
}

// ParameterUniforms lists every uniform fed from the parameter record.
func ParameterUniforms() []string {
	return []string{
		UniformScale, UniformPhaseX, UniformVelocity,
		UniformFieldDetail, UniformFieldTwist, UniformSecondarySpeed,
		UniformBrightness, UniformHue, UniformSaturation, UniformVibrance, UniformContrast,
		UniformRGBMultiplierR, UniformRGBMultiplierG, UniformRGBMultiplierB,
		UniformColorOffset, UniformGrainAmount, UniformGrainSize,
		UniformPosterize, UniformScanlines, UniformScanlineWidth,
	}
}

// ActiveUniforms lists the uniforms the field program actually reads. These
// are the names a compiler keeps after dead-code elimination.
func ActiveUniforms() []string {
	return []string{
		UniformResolution, UniformTime,
		UniformScale, UniformPhaseX, UniformVelocity,
		UniformFieldDetail, UniformFieldTwist, UniformSecondarySpeed,
		UniformBrightness, UniformHue, UniformSaturation, UniformContrast,
		UniformRGBMultiplierR, UniformRGBMultiplierG, UniformRGBMultiplierB,
	}
}
