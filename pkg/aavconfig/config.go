// Package aavconfig implements the ConfigResolver (spec.md §4.9): strict
// CLI-flag > environment-variable > hardcoded-default precedence, per
// option, with no config file in between.
package aavconfig

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the fully resolved set of options the Orchestrator and its
// collaborators read from (spec.md §4.9 plus the SPEC_FULL additions
// session_index_dsn and security_fail_severity).
type Config struct {
	ConsensusThreshold     float64
	MaxRounds              int
	Model                  string
	LLMTimeoutSec          int
	PythonSyntaxTimeoutSec int
	DockerBuildTimeoutSec  int
	UnitTestTimeoutSec     int

	// SPEC_FULL additions.
	SessionIndexDSN      string
	SecurityFailSeverity string

	// Exposed for cmd/aav3, not part of the documented option table.
	TaskPath  string
	SessionID string
}

// defaults mirrors the hardcoded-default column of spec.md §4.9's table.
var defaults = Config{
	ConsensusThreshold:     0.67,
	MaxRounds:              50,
	Model:                  "gpt-4",
	LLMTimeoutSec:          900,
	PythonSyntaxTimeoutSec: 30,
	DockerBuildTimeoutSec:  600,
	UnitTestTimeoutSec:     120,
	SecurityFailSeverity:   "high",
}

// LLMTimeout, PythonSyntaxTimeout, DockerBuildTimeout, UnitTestTimeout
// return the respective *_sec fields as time.Duration for callers that want
// it pre-converted.
func (c Config) LLMTimeout() time.Duration          { return time.Duration(c.LLMTimeoutSec) * time.Second }
func (c Config) PythonSyntaxTimeout() time.Duration { return time.Duration(c.PythonSyntaxTimeoutSec) * time.Second }
func (c Config) DockerBuildTimeout() time.Duration  { return time.Duration(c.DockerBuildTimeoutSec) * time.Second }
func (c Config) UnitTestTimeout() time.Duration     { return time.Duration(c.UnitTestTimeoutSec) * time.Second }

// Validate performs the ordered fail-fast checks ConfigError covers
// (spec.md §7: "ConfigError ... detected at session start").
func (c Config) Validate() error {
	if c.ConsensusThreshold < 0 || c.ConsensusThreshold > 1 {
		return fmt.Errorf("consensus_threshold must be in [0,1], got %v", c.ConsensusThreshold)
	}
	if c.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be positive, got %d", c.MaxRounds)
	}
	if c.LLMTimeoutSec < 1 {
		return fmt.Errorf("llm_timeout_sec must be positive, got %d", c.LLMTimeoutSec)
	}
	if c.PythonSyntaxTimeoutSec < 1 {
		return fmt.Errorf("python_syntax_timeout_sec must be positive, got %d", c.PythonSyntaxTimeoutSec)
	}
	if c.DockerBuildTimeoutSec < 1 {
		return fmt.Errorf("docker_build_timeout_sec must be positive, got %d", c.DockerBuildTimeoutSec)
	}
	if c.UnitTestTimeoutSec < 1 {
		return fmt.Errorf("unit_test_timeout_sec must be positive, got %d", c.UnitTestTimeoutSec)
	}
	switch c.SecurityFailSeverity {
	case "low", "medium", "moderate", "high", "critical":
	default:
		return fmt.Errorf("security_fail_severity must be one of low|medium|high|critical, got %q", c.SecurityFailSeverity)
	}
	return nil
}

// Resolve applies CLI flag > environment variable > hardcoded default
// precedence, in that order, for every option (spec.md §4.9). args is
// typically os.Args[1:].
func Resolve(args []string) (Config, error) {
	// .env values seed os.Environ() before resolution runs, so they
	// participate at the environment-variable tier, not a tier of their
	// own. A missing .env file is not an error.
	_ = godotenv.Load()

	cfg := defaults

	fs := flag.NewFlagSet("aav3", flag.ContinueOnError)
	taskPath := fs.String("task", "", "path to the task brief (markdown)")
	sessionID := fs.String("session-id", "", "override the generated session id")
	consensusThreshold := fs.Float64("consensus-threshold", -1, "approval share required for approved=true")
	maxRounds := fs.Int("max-rounds", -1, "upper bound on test/fix iterations")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	cfg.TaskPath = *taskPath
	cfg.SessionID = *sessionID

	cfg.ConsensusThreshold = resolveFloat(*consensusThreshold >= 0, *consensusThreshold, "AAV3_CONSENSUS_THRESHOLD", defaults.ConsensusThreshold)
	cfg.MaxRounds = resolveInt(*maxRounds >= 0, *maxRounds, "AAV3_MAX_ROUNDS", defaults.MaxRounds)
	cfg.Model = resolveString("", "AAV3_MODEL", defaults.Model)
	cfg.LLMTimeoutSec = resolveIntEnv("AAV3_LLM_TIMEOUT_SEC", defaults.LLMTimeoutSec)
	cfg.PythonSyntaxTimeoutSec = resolveIntEnv("AAV3_PYTHON_SYNTAX_TIMEOUT_SEC", defaults.PythonSyntaxTimeoutSec)
	cfg.DockerBuildTimeoutSec = resolveIntEnv("AAV3_DOCKER_BUILD_TIMEOUT_SEC", defaults.DockerBuildTimeoutSec)
	cfg.UnitTestTimeoutSec = resolveIntEnv("AAV3_UNIT_TEST_TIMEOUT_SEC", defaults.UnitTestTimeoutSec)
	cfg.SessionIndexDSN = resolveString("", "AAV3_SESSION_INDEX_DSN", "")
	cfg.SecurityFailSeverity = resolveString("", "AAV3_SECURITY_FAIL_SEVERITY", defaults.SecurityFailSeverity)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func resolveString(flagVal, envKey, def string) string {
	if flagVal != "" {
		return flagVal
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return def
}

func resolveIntEnv(envKey string, def int) int {
	if v := os.Getenv(envKey); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func resolveInt(flagSet bool, flagVal int, envKey string, def int) int {
	if flagSet {
		return flagVal
	}
	return resolveIntEnv(envKey, def)
}

func resolveFloat(flagSet bool, flagVal float64, envKey string, def float64) float64 {
	if flagSet {
		return flagVal
	}
	if v := os.Getenv(envKey); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}
