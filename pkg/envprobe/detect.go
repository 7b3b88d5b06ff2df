package envprobe

import (
	"context"
	"runtime"
	"strings"
)

// detect runs the fixed set of detection commands and assembles a
// Capabilities record. It never returns an error: every sub-detection is
// individually fail-soft (spec.md §4.5).
func detect(ctx context.Context) Capabilities {
	return Capabilities{
		Docker:     detectDocker(ctx),
		GPU:        detectGPU(ctx),
		Languages:  detectLanguages(ctx),
		Security:   detectSecurity(),
		Network:    detectNetwork(),
		Multimedia: detectMultimedia(ctx),
	}
}

func detectDocker(ctx context.Context) Docker {
	d := Docker{Available: available("docker")}
	if !d.Available {
		return d
	}
	if v, ok := output(ctx, "docker", "version", "--format", "{{.Server.Version}}"); ok {
		d.Version = v
	}
	if _, ok := output(ctx, "docker", "compose", "version"); ok {
		d.Compose = true
	}
	if _, ok := output(ctx, "docker", "buildx", "version"); ok {
		d.Buildx = true
	}
	return d
}

func detectGPU(ctx context.Context) GPU {
	g := GPU{
		Apple:  runtime.GOOS == "darwin" && runtime.GOARCH == "arm64",
		NVIDIA: available("nvidia-smi"),
		AMD:    available("rocm-smi"),
	}
	if g.NVIDIA {
		if list, ok := output(ctx, "nvidia-smi", "--query-gpu=name", "--format=csv,noheader"); ok {
			for _, line := range strings.Split(list, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					g.Devices = append(g.Devices, line)
				}
			}
		}
		if v, ok := output(ctx, "nvcc", "--version"); ok {
			g.CUDAVersion = extractCUDAVersion(v)
		}
	}
	return g
}

// extractCUDAVersion pulls "release X.Y" out of nvcc's verbose banner.
func extractCUDAVersion(nvccOutput string) string {
	const marker = "release "
	idx := strings.LastIndex(nvccOutput, marker)
	if idx < 0 {
		return ""
	}
	rest := nvccOutput[idx+len(marker):]
	if comma := strings.IndexAny(rest, ",\n"); comma >= 0 {
		rest = rest[:comma]
	}
	return strings.TrimSpace(rest)
}

func detectLanguages(ctx context.Context) map[string]Language {
	probes := map[string][2]string{
		"python": {"python3", "--version"},
		"node":   {"node", "--version"},
		"rust":   {"rustc", "--version"},
		"go":     {"go", "version"},
		"java":   {"java", "-version"},
	}
	out := make(map[string]Language, len(probes))
	for lang, cmd := range probes {
		if !available(cmd[0]) {
			out[lang] = Language{}
			continue
		}
		version, ok := output(ctx, cmd[0], cmd[1])
		out[lang] = Language{Available: ok, Version: firstLine(version)}
	}
	return out
}

func detectSecurity() Security {
	return Security{
		Git:      available("git"),
		Grep:     available("grep"),
		Trivy:    available("trivy"),
		Syft:     available("syft"),
		Grype:    available("grype"),
		PipAudit: available("pip-audit"),
	}
}

func detectNetwork() Network {
	return Network{
		Internet: reachable("8.8.8.8:53"),
		GitHub:   reachable("github.com:443"),
		PyPI:     reachable("pypi.org:443"),
		NPM:      reachable("registry.npmjs.org:443"),
	}
}

func detectMultimedia(ctx context.Context) Multimedia {
	m := Multimedia{
		FFmpeg:      available("ffmpeg"),
		ImageMagick: available("magick") || available("convert"),
	}
	if available("python3") {
		if _, ok := output(ctx, "python3", "-c", "import cv2"); ok {
			m.OpenCV = true
		}
	}
	return m
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
