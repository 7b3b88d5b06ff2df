// Package envprobe implements the preflight EnvironmentProbe (spec.md
// §4.5): a fixed set of short, fail-soft host-capability detections whose
// result seeds both environment.json and the constraint paragraph injected
// into the Planner's prompt.
package envprobe

// Docker describes the host's container tooling (spec.md §3).
type Docker struct {
	Available bool   `json:"available"`
	Compose   bool   `json:"compose"`
	Buildx    bool   `json:"buildx"`
	Version   string `json:"version,omitempty"`
}

// GPU describes detected accelerator hardware.
type GPU struct {
	NVIDIA      bool     `json:"nvidia"`
	AMD         bool     `json:"amd"`
	Apple       bool     `json:"apple"`
	CUDAVersion string   `json:"cuda_version,omitempty"`
	Devices     []string `json:"devices,omitempty"`
}

// Language describes one language toolchain's presence.
type Language struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
}

// Security describes presence of security/SBOM tooling.
type Security struct {
	Git      bool `json:"git"`
	Grep     bool `json:"grep"`
	Trivy    bool `json:"trivy"`
	Syft     bool `json:"syft"`
	Grype    bool `json:"grype"`
	PipAudit bool `json:"pip_audit"`
}

// Network describes outbound reachability to common package registries.
type Network struct {
	Internet bool `json:"internet"`
	GitHub   bool `json:"github"`
	PyPI     bool `json:"pypi"`
	NPM      bool `json:"npm"`
}

// Multimedia describes presence of media-processing tooling.
type Multimedia struct {
	FFmpeg      bool `json:"ffmpeg"`
	ImageMagick bool `json:"imagemagick"`
	OpenCV      bool `json:"opencv"`
}

// Capabilities is the full EnvironmentCapabilities record (spec.md §3),
// persisted verbatim as environment.json (spec.md §4.8).
type Capabilities struct {
	Docker     Docker              `json:"docker"`
	GPU        GPU                 `json:"gpu"`
	Languages  map[string]Language `json:"languages"`
	Security   Security            `json:"security"`
	Network    Network             `json:"network"`
	Multimedia Multimedia          `json:"multimedia"`
}
