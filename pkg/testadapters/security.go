package testadapters

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/codeready-toolchain/aav3/pkg/envprobe"
	"github.com/codeready-toolchain/aav3/pkg/session"
)

// secretPattern mirrors the masking package's compiled-pattern-table style
// (name + compiled regex + description), reused here for the SecurityScan
// secrets sub-suite (spec.md §4.6 adapter 6).
type secretPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Description string
}

var secretPatterns = []secretPattern{
	{"aws_access_key_id", regexp.MustCompile(`AKIA[0-9A-Z]{16}`), "AWS access key ID"},
	{"github_token", regexp.MustCompile(`gh[pousr]_[0-9A-Za-z]{36}`), "GitHub personal access token"},
	{"pem_private_key", regexp.MustCompile(`-----BEGIN (RSA |EC |OPENSSH |)PRIVATE KEY-----`), "PEM-encoded private key"},
	{"generic_password_assignment", regexp.MustCompile(`(?i)password\s*=\s*['"][^'"\s]{4,}['"]`), "hardcoded password assignment"},
}

// maxScannedFileSize bounds the secrets sub-suite to text-sized files;
// larger files (likely binaries or vendored archives) are skipped, not
// scanned.
const maxScannedFileSize = 1 << 20

const sbomTimeout = 60 * time.Second
const vulnScanTimeout = 120 * time.Second

var severityRank = map[string]int{"low": 1, "medium": 2, "moderate": 2, "high": 3, "critical": 4}

// SecurityScan runs the three independently-reported sub-suites (spec.md
// §4.6 adapter 6): secrets, SBOM, vulnerabilities.
func SecurityScan(ctx context.Context, workspaceDir string, caps envprobe.Capabilities, failSeverity string) []session.TestRecord {
	var records []session.TestRecord
	records = append(records, secretsScan(workspaceDir)...)
	records = append(records, sbomScan(ctx, workspaceDir, caps))
	records = append(records, vulnerabilityScan(ctx, workspaceDir, caps, failSeverity))
	return records
}

// secretsScan never fails on the secret value itself — only the pattern
// name and file path are recorded (spec.md §4.6).
func secretsScan(workspaceDir string) []session.TestRecord {
	var records []session.TestRecord
	_ = filepath.Walk(workspaceDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil || info.IsDir() || info.Size() > maxScannedFileSize {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(workspaceDir, path)
		if err != nil {
			rel = path
		}
		for _, p := range secretPatterns {
			if p.Regex.Match(data) {
				records = append(records, session.TestRecord{
					TestName: fmt.Sprintf("secret: %s", p.Name),
					Suite:    "security_secrets",
					Result:   session.TestFail,
					Reason:   fmt.Sprintf("%s detected in %s", p.Description, rel),
				})
			}
		}
		return nil
	})
	if len(records) == 0 {
		records = append(records, session.TestRecord{TestName: "secrets scan", Suite: "security_secrets", Result: session.TestPass})
	}
	return records
}

// sbomScan uses syft when present; otherwise it derives a minimal SBOM from
// whichever ecosystem manifest exists. A degraded SBOM is never a failure
// (spec.md §4.6).
func sbomScan(ctx context.Context, workspaceDir string, caps envprobe.Capabilities) session.TestRecord {
	if caps.Security.Syft {
		return runRecord(ctx, workspaceDir, "sbom (syft)", "security_sbom", sbomTimeout, "syft", ".", "-o", "json")
	}

	var sources []string
	for _, name := range []string{"requirements.txt", "package.json", "Cargo.lock"} {
		if _, err := os.Stat(filepath.Join(workspaceDir, name)); err == nil {
			sources = append(sources, name)
		}
	}
	reason := "no ecosystem manifest found"
	if len(sources) > 0 {
		reason = "derived from: " + strings.Join(sources, ", ")
	}
	return session.TestRecord{TestName: "sbom (degraded)", Suite: "security_sbom", Result: session.TestPass, Reason: reason}
}

// vulnerabilityScan runs grype or pip-audit if available and fails only
// when a reported severity meets or exceeds failSeverity (spec.md §4.6;
// default threshold "high" — SPEC_FULL supplement: configurable via
// security_fail_severity).
func vulnerabilityScan(ctx context.Context, workspaceDir string, caps envprobe.Capabilities, failSeverity string) session.TestRecord {
	if failSeverity == "" {
		failSeverity = "high"
	}
	threshold, ok := severityRank[strings.ToLower(failSeverity)]
	if !ok {
		threshold = severityRank["high"]
	}

	var rec session.TestRecord
	switch {
	case caps.Security.Grype:
		rec = runRecord(ctx, workspaceDir, "vulnerabilities (grype)", "security_vulnerabilities", vulnScanTimeout, "grype", ".", "-o", "json")
	case caps.Security.PipAudit:
		if _, err := os.Stat(filepath.Join(workspaceDir, "requirements.txt")); err != nil {
			return skipRecord("vulnerabilities (pip-audit)", "security_vulnerabilities", "no requirements.txt to audit")
		}
		rec = runRecord(ctx, workspaceDir, "vulnerabilities (pip-audit)", "security_vulnerabilities", vulnScanTimeout, "pip-audit", "-r", "requirements.txt")
	default:
		return skipRecord("vulnerability scan", "security_vulnerabilities", "neither grype nor pip-audit available")
	}

	if highestSeverity(rec.StdoutExcerpt) >= threshold {
		rec.Result = session.TestFail
		if rec.Reason == "" {
			rec.Reason = fmt.Sprintf("reported vulnerability severity >= %s", failSeverity)
		}
	} else if rec.Reason != "timeout" && rec.ExitCode == 0 {
		// No severity at/above threshold found, and the scanner actually ran
		// to completion. A nonzero exit with no severity match (crashed or
		// misconfigured binary) must not be reinterpreted as a clean scan.
		rec.Result = session.TestPass
	}
	return rec
}

func highestSeverity(output string) int {
	best := 0
	lower := strings.ToLower(output)
	for sev, rank := range severityRank {
		if rank > best && strings.Contains(lower, sev) {
			best = rank
		}
	}
	return best
}
