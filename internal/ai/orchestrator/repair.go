package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mentor-backend/internal/ai/provider"
	"mentor-backend/internal/ai/tools"

	"go.uber.org/zap"
)

// repairToolCall asks the fast auxiliary model to reconstruct arguments that
// failed validation, constrained to the tool's own schema. Returns false when
// repair is unavailable or itself fails; the caller then synthesizes a failed
// tool-result.
func (o *Orchestrator) repairToolCall(ctx context.Context, tool tools.Tool, call provider.ToolCall, cause *tools.ValidationError) (json.RawMessage, bool) {
	if o.repairModel == nil {
		return nil, false
	}

	schemaJSON, err := json.Marshal(tool.Schema())
	if err != nil {
		return nil, false
	}

	system := "You are fixing the arguments of a failed tool call. " +
		"Respond only with corrected arguments that satisfy the tool's input schema."
	prompt := fmt.Sprintf(
		"The model tried to call the tool %q with the following arguments:\n%s\n\n"+
			"The tool accepts the following schema:\n%s\n\n"+
			"Validation failed: %s\n\nPlease fix the arguments. Today's date is %s.",
		call.Name, string(call.Args), string(schemaJSON), cause.Reason,
		time.Now().Format("Mon Jan 02 2006"),
	)

	repaired, err := o.repairModel.GenerateObject(ctx, system, prompt, tool.Schema())
	if err != nil {
		o.logger.Warn("tool call repair failed",
			zap.String("tool", call.Name), zap.Error(err))
		return nil, false
	}
	return repaired, true
}
