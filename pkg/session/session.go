// Package session holds the per-run Session entity and the append-only
// SharedMemory conversation log that the Orchestrator and Agent role
// functions read and write.
package session

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// AgentName identifies one of the five role agents, or the orchestrator
// itself, as a message's author.
type AgentName string

const (
	AgentPlanner      AgentName = "planner"
	AgentResearcher   AgentName = "researcher"
	AgentCoder        AgentName = "coder"
	AgentReviewer     AgentName = "reviewer"
	AgentTester       AgentName = "tester"
	AgentOrchestrator AgentName = "orchestrator"
)

// Role identifies the shape of a Message's Content.
type Role string

const (
	RolePlan           Role = "plan"
	RoleResearch       Role = "research"
	RoleImplementation Role = "implementation"
	RoleReview         Role = "review"
	RoleTestResult     Role = "test_result"
	RoleConsensus      Role = "consensus"
	RoleSystem         Role = "system"
)

// Session is one end-to-end AAv3 run: a task brief driven through the
// six-phase state machine to a final verdict. The Session exclusively owns
// WorkspaceDir, ArtifactsDir, and its SharedMemory; nothing outside the
// Orchestrator writes to either directory.
type Session struct {
	ID                  string
	TaskText            string
	WorkspaceDir        string
	ArtifactsDir        string
	CreatedAt           time.Time
	ConsensusThreshold  float64
	MaxRounds           int
	SecurityFailSeverity string

	Memory *SharedMemory
}

// New creates a Session rooted at artifactsRoot/aav3_<id>/. id, if empty,
// is generated as a random hex string (spec.md §3: "opaque hex string").
func New(artifactsRoot, id, taskText string, consensusThreshold float64, maxRounds int) (*Session, error) {
	if id == "" {
		id = hexID()
	}
	base := filepath.Join(artifactsRoot, "aav3_"+id)
	workspace := filepath.Join(base, "workspace")
	if consensusThreshold < 0 || consensusThreshold > 1 {
		return nil, fmt.Errorf("consensus_threshold out of range [0,1]: %v", consensusThreshold)
	}
	if maxRounds < 1 {
		return nil, fmt.Errorf("max_rounds must be positive, got %d", maxRounds)
	}
	return &Session{
		ID:                  id,
		TaskText:            taskText,
		WorkspaceDir:        workspace,
		ArtifactsDir:        base,
		CreatedAt:           time.Now(),
		ConsensusThreshold:  consensusThreshold,
		MaxRounds:           maxRounds,
		SecurityFailSeverity: "high",
		Memory:              NewSharedMemory(),
	}, nil
}

// hexID returns a unique hex string derived from a UUID (no dashes), so
// Session.ID stays a pure hex string per spec.md §3.
func hexID() string {
	u := uuid.New()
	return fmt.Sprintf("%x", u[:])
}
