package groups

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveKnownGroups(t *testing.T) {
	tests := []struct {
		id          GroupID
		tools       []string
		requireTool bool
	}{
		{GroupChat, nil, false},
		{GroupAcademic, []string{ToolAcademicSearch, ToolDateTime}, true},
		{GroupYoutube, []string{ToolYoutubeSearch, ToolDateTime}, true},
		{GroupBrain, []string{ToolMemoryManager}, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			profile := Resolve(tt.id)
			assert.Equal(t, tt.id, profile.ID)
			assert.Equal(t, tt.tools, profile.Tools)
			assert.Equal(t, tt.requireTool, profile.RequireTool)
		})
	}
}

func TestResolveUnknownFailsClosedToChat(t *testing.T) {
	profile := Resolve("web-search")

	assert.Equal(t, GroupChat, profile.ID)
	assert.Empty(t, profile.Tools)
	assert.False(t, profile.RequireTool)
}

func TestToolRequiringProfilesHaveInstructions(t *testing.T) {
	for _, id := range []GroupID{GroupAcademic, GroupYoutube} {
		profile := Resolve(id)
		assert.NotEmpty(t, profile.ToolInstructions, "profile %s", id)
	}
}

func TestChatProfilesHaveSystemPrompt(t *testing.T) {
	for _, id := range []GroupID{GroupChat, GroupBrain} {
		profile := Resolve(id)
		assert.NotEmpty(t, profile.SystemPrompt, "profile %s", id)
	}
}
