package envprobe

import (
	"fmt"
	"sort"
	"strings"
)

// ConstraintBlock renders one line per detected or missing capability,
// phrasing negative findings as prohibitions (spec.md §4.5). This is the
// text injected into the Planner's prompt as environment_constraints.
func ConstraintBlock(c Capabilities) string {
	var lines []string

	if c.Docker.Available {
		extras := []string{}
		if c.Docker.Compose {
			extras = append(extras, "compose")
		}
		if c.Docker.Buildx {
			extras = append(extras, "buildx")
		}
		detail := ""
		if len(extras) > 0 {
			detail = " (" + strings.Join(extras, ", ") + ")"
		}
		lines = append(lines, fmt.Sprintf("✓ Docker available%s%s: container-based steps and DockerBuild tests are allowed.", versionSuffix(c.Docker.Version), detail))
	} else {
		lines = append(lines, "⚠ Docker NOT available: do not propose Docker builds or container-based tests.")
	}

	switch {
	case c.GPU.NVIDIA:
		cudaNote := ""
		if c.GPU.CUDAVersion != "" {
			cudaNote = " (CUDA " + c.GPU.CUDAVersion + ")"
		}
		lines = append(lines, fmt.Sprintf("✓ NVIDIA GPU present%s: CUDA/TensorFlow/PyTorch GPU tests are allowed.", cudaNote))
	case c.GPU.AMD:
		lines = append(lines, "✓ AMD GPU present: ROCm-based GPU tests are allowed.")
	case c.GPU.Apple:
		lines = append(lines, "✓ Apple GPU present: Metal-backed GPU tests are allowed; CUDA tests are not.")
	default:
		lines = append(lines, "⚠ No GPU detected: do not propose CUDA, TensorFlow-GPU, or PyTorch-CUDA tests.")
	}

	langNames := make([]string, 0, len(c.Languages))
	for name := range c.Languages {
		langNames = append(langNames, name)
	}
	sort.Strings(langNames)
	for _, name := range langNames {
		lang := c.Languages[name]
		if lang.Available {
			lines = append(lines, fmt.Sprintf("✓ %s available%s.", strings.ToUpper(name[:1])+name[1:], versionSuffix(lang.Version)))
		} else {
			lines = append(lines, fmt.Sprintf("⚠ %s NOT available: do not propose %s-specific steps.", strings.ToUpper(name[:1])+name[1:], name))
		}
	}

	if c.Security.Trivy || c.Security.Grype || c.Security.Syft || c.Security.PipAudit {
		var have []string
		for _, pair := range []struct {
			name string
			ok   bool
		}{{"trivy", c.Security.Trivy}, {"grype", c.Security.Grype}, {"syft", c.Security.Syft}, {"pip-audit", c.Security.PipAudit}} {
			if pair.ok {
				have = append(have, pair.name)
			}
		}
		lines = append(lines, "✓ Security scanners available ("+strings.Join(have, ", ")+"): vulnerability and SBOM checks will use them.")
	} else {
		lines = append(lines, "⚠ No dedicated security scanner available: SecurityScan will fall back to a degraded SBOM and secrets-only checks.")
	}

	if c.Network.Internet {
		lines = append(lines, "✓ Outbound network reachable: steps that fetch packages or images are allowed.")
	} else {
		lines = append(lines, "⚠ No outbound network reachable: do not propose steps that fetch external packages or images.")
	}

	if c.Multimedia.FFmpeg || c.Multimedia.ImageMagick || c.Multimedia.OpenCV {
		lines = append(lines, "✓ Media tooling available: image/video processing steps are allowed.")
	} else {
		lines = append(lines, "⚠ No media tooling (ffmpeg/imagemagick/opencv) available: do not propose media-processing steps.")
	}

	return strings.Join(lines, "\n")
}

func versionSuffix(version string) string {
	if version == "" {
		return ""
	}
	return " (" + version + ")"
}
