// aav3 drives one task brief through the six-phase deliberation engine to a
// final verdict. It is the thin boundary named in spec.md §1: flag parsing,
// task-file reading, and wiring, nothing more.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/codeready-toolchain/aav3/pkg/aavconfig"
	"github.com/codeready-toolchain/aav3/pkg/envprobe"
	"github.com/codeready-toolchain/aav3/pkg/llmtransport"
	"github.com/codeready-toolchain/aav3/pkg/orchestrator"
	"github.com/codeready-toolchain/aav3/pkg/session"
	"github.com/codeready-toolchain/aav3/pkg/sessionindex"
	"github.com/codeready-toolchain/aav3/pkg/sessionstore"
	"github.com/codeready-toolchain/aav3/pkg/statusapi"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg, err := aavconfig.Resolve(os.Args[1:])
	if err != nil {
		log.Fatalf("Failed to resolve configuration: %v", err)
	}

	if cfg.TaskPath == "" {
		log.Fatalf("--task is required")
	}
	taskBytes, err := os.ReadFile(cfg.TaskPath)
	if err != nil {
		log.Fatalf("Failed to read task file %s: %v", cfg.TaskPath, err)
	}

	artifactsRoot := getEnv("AAV3_ARTIFACTS_DIR", "./artifacts")

	log.Printf("Starting aav3")
	log.Printf("Task: %s", cfg.TaskPath)
	log.Printf("Artifacts dir: %s", artifactsRoot)
	log.Printf("Model: %s, max_rounds: %d, consensus_threshold: %v", cfg.Model, cfg.MaxRounds, cfg.ConsensusThreshold)

	sess, err := session.New(artifactsRoot, cfg.SessionID, string(taskBytes), cfg.ConsensusThreshold, cfg.MaxRounds)
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	log.Printf("Session ID: %s", sess.ID)

	store, err := sessionstore.Open(artifactsRoot, sess.ID)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}

	llmAddr := getEnv("AAV3_LLM_SERVICE_ADDR", "localhost:50051")
	llmClient, err := llmtransport.NewGRPCLLMClient(llmAddr, cfg.Model, 0)
	if err != nil {
		log.Fatalf("Failed to connect to LLM service at %s: %v", llmAddr, err)
	}
	defer func() {
		if err := llmClient.Close(); err != nil {
			log.Printf("Error closing LLM client: %v", err)
		}
	}()
	log.Printf("Connected to LLM service at %s", llmAddr)

	orch := orchestrator.New(
		llmClient,
		envprobe.NewProber(),
		cfg.PythonSyntaxTimeout(),
		cfg.UnitTestTimeout(),
		cfg.DockerBuildTimeout(),
		cfg.SecurityFailSeverity,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if addr := os.Getenv("AAV3_STATUS_API_ADDR"); addr != "" {
		srv := statusapi.NewServer(artifactsRoot, statusapi.SessionVerdictReader(artifactsRoot))
		go func() {
			log.Printf("Status API listening on %s", addr)
			if err := srv.Run(addr); err != nil {
				log.Printf("Status API stopped: %v", err)
			}
		}()
	}

	verdict := orch.Run(ctx, sess, store)

	if err := store.WriteVerdict(verdict); err != nil {
		log.Printf("Failed to persist verdict.json: %v", err)
	}

	if cfg.SessionIndexDSN != "" {
		if err := recordToSessionIndex(context.Background(), cfg.SessionIndexDSN, verdict); err != nil {
			log.Printf("Failed to record session summary to session index: %v", err)
		}
	}

	log.Printf("Session %s finished: status=%s approved=%v approval_rate=%v rounds_used=%d",
		verdict.SessionID, verdict.Status, verdict.Approved, verdict.ApprovalRate, verdict.RoundsUsed)

	if verdict.Status == "error" {
		os.Exit(1)
	}
}

// recordToSessionIndex upserts the completed session's summary into the
// optional Postgres audit index (SPEC_FULL DOMAIN STACK). Any failure here
// is logged and swallowed: the filesystem SessionStore remains the sole
// authoritative record of the session.
func recordToSessionIndex(ctx context.Context, dsn string, verdict sessionstore.Verdict) error {
	store, err := sessionindex.Open(ctx, sessionindex.Config{DSN: dsn, MaxOpenConns: 5})
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Record(ctx, verdict)
}
