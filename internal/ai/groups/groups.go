// Package groups is the capability registry: a static mapping from a
// conversation mode to the tools the model may call and the prompts that steer
// it. Pure lookup, no state.
package groups

// GroupID names a conversation mode.
type GroupID string

const (
	GroupChat     GroupID = "chat"
	GroupAcademic GroupID = "academic"
	GroupYoutube  GroupID = "youtube"
	GroupBrain    GroupID = "brain"
)

// Tool names, shared with the tools package.
const (
	ToolAcademicSearch = "academicSearch"
	ToolYoutubeSearch  = "youtubeSearch"
	ToolDateTime       = "datetime"
	ToolMemoryManager  = "memoryManager"
)

// Profile is the immutable capability set of one group.
type Profile struct {
	ID               GroupID
	Tools            []string
	SystemPrompt     string
	ToolInstructions string
	// RequireTool forces the first model step to call a tool.
	RequireTool bool
}

var profiles = map[GroupID]Profile{
	GroupChat: {
		ID:           GroupChat,
		SystemPrompt: mentorPrompt,
	},
	GroupAcademic: {
		ID:               GroupAcademic,
		Tools:            []string{ToolAcademicSearch, ToolDateTime},
		ToolInstructions: academicInstructions,
		RequireTool:      true,
	},
	GroupYoutube: {
		ID:               GroupYoutube,
		Tools:            []string{ToolYoutubeSearch, ToolDateTime},
		ToolInstructions: youtubeInstructions,
		RequireTool:      true,
	},
	GroupBrain: {
		ID:           GroupBrain,
		Tools:        []string{ToolMemoryManager},
		SystemPrompt: brainPrompt,
	},
}

// Resolve returns the profile for id. Unknown ids fail closed to the baseline
// chat profile: no tools, mentor prompt.
func Resolve(id GroupID) Profile {
	if profile, ok := profiles[id]; ok {
		return profile
	}
	return profiles[GroupChat]
}
