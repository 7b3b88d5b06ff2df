package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedMemory_AppendOnly(t *testing.T) {
	mem := NewSharedMemory()
	for i := 0; i < 5; i++ {
		mem.Append(Message{FromAgent: AgentPlanner, Role: RolePlan, MessageType: "plan", Content: i})
	}

	require.Equal(t, 5, mem.Len())
	before := mem.History(0)
	require.Len(t, before, 5)

	mem.Append(Message{FromAgent: AgentResearcher, Role: RoleResearch, MessageType: "research", Content: "x"})

	after := mem.History(0)
	require.Len(t, after, 6)
	for i := range before {
		assert.Equal(t, before[i], after[i], "history()[%d] must be unchanged after a later append", i)
	}
}

func TestSharedMemory_HistoryWindowAndRoleFilter(t *testing.T) {
	mem := NewSharedMemory()
	mem.Append(Message{FromAgent: AgentPlanner, Role: RolePlan, Content: "p"})
	mem.Append(Message{FromAgent: AgentResearcher, Role: RoleResearch, Content: "r"})
	mem.Append(Message{FromAgent: AgentCoder, Role: RoleImplementation, Content: Implementation{Status: "complete"}})

	last2 := mem.History(2)
	require.Len(t, last2, 2)
	assert.Equal(t, RoleResearch, last2[0].Role)
	assert.Equal(t, RoleImplementation, last2[1].Role)

	onlyPlan := mem.History(0, RolePlan)
	require.Len(t, onlyPlan, 1)
	assert.Equal(t, AgentPlanner, onlyPlan[0].FromAgent)
}

func TestSharedMemory_LatestImplementation(t *testing.T) {
	mem := NewSharedMemory()
	assert.Nil(t, mem.LatestImplementation())

	first := Implementation{FilesToCreate: []FileSpec{{Path: "a.py", Content: "pass"}}, Status: "complete"}
	mem.Append(Message{FromAgent: AgentCoder, Role: RoleImplementation, Content: first})

	got := mem.LatestImplementation()
	require.NotNil(t, got)
	assert.Equal(t, first, *got)

	second := Implementation{FilesToCreate: []FileSpec{{Path: "b.py", Content: "pass"}}, Status: "complete"}
	mem.Append(Message{FromAgent: AgentCoder, Role: RoleImplementation, Content: second})

	got = mem.LatestImplementation()
	require.NotNil(t, got)
	assert.Equal(t, second, *got)
}

func TestSharedMemory_AppendHookWriteThrough(t *testing.T) {
	mem := NewSharedMemory()
	var persisted []Message
	mem.OnAppend(func(m Message) { persisted = append(persisted, m) })

	mem.Append(Message{FromAgent: AgentOrchestrator, Role: RoleSystem, Content: "start"})
	mem.Append(Message{FromAgent: AgentPlanner, Role: RolePlan, Content: "plan"})

	require.Len(t, persisted, 2)
	assert.Equal(t, RoleSystem, persisted[0].Role)
	assert.Equal(t, RolePlan, persisted[1].Role)
}
