// Package orchestrator drives the multi-step model/tool-calling loop for one
// user turn: it calls the model, dispatches requested tool calls, repairs
// malformed tool-call arguments, streams incremental output, and terminates on
// a step ceiling or a final answer.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"mentor-backend/internal/ai/provider"
	"mentor-backend/internal/ai/tools"
	"mentor-backend/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrGeneration is the generic error surfaced to callers when the model
// endpoint fails. Internal detail stays in the logs.
var ErrGeneration = errors.New("generation failed")

const defaultEventBuffer = 256

// Config bounds one turn.
type Config struct {
	// MaxSteps is the hard ceiling on model calls per turn.
	MaxSteps int
	// ToolTimeout bounds each tool execution.
	ToolTimeout time.Duration
	// EventBuffer sizes the event channel. A consumer that falls this far
	// behind starts losing events; the loop itself never blocks on it.
	EventBuffer int
}

// Orchestrator runs turns. It is stateless across turns; the repair model is
// the fast auxiliary endpoint used to reconstruct malformed tool arguments.
type Orchestrator struct {
	repairModel provider.LanguageModel
	config      Config
	logger      *zap.Logger
}

// New creates an orchestrator.
func New(repairModel provider.LanguageModel, config Config, logger *zap.Logger) *Orchestrator {
	if config.MaxSteps <= 0 {
		config.MaxSteps = 5
	}
	if config.ToolTimeout <= 0 {
		config.ToolTimeout = 30 * time.Second
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = defaultEventBuffer
	}
	return &Orchestrator{repairModel: repairModel, config: config, logger: logger}
}

// Transform rewrites an outgoing model request; the retrieval middleware is
// installed through this hook.
type Transform func(ctx context.Context, req provider.GenerateRequest) provider.GenerateRequest

// RunInput is everything one turn needs.
type RunInput struct {
	Model provider.LanguageModel
	// System is the resolved system prompt or tool instructions.
	System string
	// Messages is the transcript including the latest user turn.
	Messages []models.ChatMessage
	// Tools is the active tool set from the capability profile.
	Tools []tools.Tool
	// RequireTool forces a tool call on the first model step.
	RequireTool bool
	// Transform is applied to every outgoing request; may be nil.
	Transform Transform
}

// Run is one in-flight turn. Events() streams incremental output; Wait()
// blocks until the loop is done and returns the response messages produced.
// The two are independent: an abandoned event stream never stalls the loop.
type Run struct {
	events    chan Event
	done      chan struct{}
	messages  []models.ChatMessage
	reasoning string
	err       error
}

// Events returns the turn's event stream. Closed when the turn is done.
func (r *Run) Events() <-chan Event { return r.events }

// Wait blocks until the turn completes and returns the raw response messages
// (unsanitized), the accumulated reasoning trace, and the terminal error if
// the turn aborted. Messages produced before an abort are still returned.
func (r *Run) Wait() ([]models.ChatMessage, string, error) {
	<-r.done
	return r.messages, r.reasoning, r.err
}

// emit pushes an event without ever blocking the loop. Events are dropped
// when the consumer has fallen an entire buffer behind; persistence does not
// depend on the event stream.
func (r *Run) emit(ev Event) {
	select {
	case r.events <- ev:
	default:
	}
}

// Run starts the loop for one turn. The returned Run's event channel is
// closed when the loop finishes. Cancelling ctx stops the loop after the
// current step; messages produced so far remain available through Wait.
func (o *Orchestrator) Run(ctx context.Context, input RunInput) *Run {
	run := &Run{
		events: make(chan Event, o.config.EventBuffer),
		done:   make(chan struct{}),
	}
	go o.loop(ctx, input, run)
	return run
}

func (o *Orchestrator) loop(ctx context.Context, input RunInput, run *Run) {
	defer close(run.done)
	defer close(run.events)

	transcript := make([]models.ChatMessage, len(input.Messages))
	copy(transcript, input.Messages)

	declarations := tools.Declarations(input.Tools)
	var reasoning strings.Builder

	for step := 0; step < o.config.MaxSteps; step++ {
		if ctx.Err() != nil {
			run.err = ctx.Err()
			run.emit(Event{Type: EventError, Message: "generation cancelled"})
			run.reasoning = reasoning.String()
			return
		}

		choice := provider.ToolChoiceAuto
		if input.RequireTool && step == 0 {
			choice = provider.ToolChoiceRequired
		}
		req := provider.GenerateRequest{
			System:     input.System,
			Messages:   transcript,
			Tools:      declarations,
			ToolChoice: choice,
		}
		if input.Transform != nil {
			req = input.Transform(ctx, req)
		}

		assistant, calls, err := o.streamStep(ctx, input.Model, req, run, &reasoning)
		if err != nil {
			o.logger.Error("model call failed", zap.Int("step", step), zap.Error(err))
			run.err = fmt.Errorf("%w: %v", ErrGeneration, err)
			run.emit(Event{Type: EventError, Message: "Oops, an error occurred!"})
			run.reasoning = reasoning.String()
			return
		}

		if len(assistant.Parts) > 0 {
			transcript = append(transcript, assistant)
			run.messages = append(run.messages, assistant)
		}

		if len(calls) == 0 {
			break
		}

		toolMsg := o.dispatchCalls(ctx, input.Tools, calls, run)
		if len(toolMsg.Parts) > 0 {
			transcript = append(transcript, toolMsg)
			run.messages = append(run.messages, toolMsg)
		}
	}

	run.reasoning = reasoning.String()
	run.emit(Event{Type: EventFinish, FinishReason: provider.FinishReasonStop})
}

// streamStep performs one model call, forwarding deltas as events and
// accumulating the assistant message.
func (o *Orchestrator) streamStep(ctx context.Context, model provider.LanguageModel, req provider.GenerateRequest, run *Run, reasoning *strings.Builder) (models.ChatMessage, []provider.ToolCall, error) {
	assistant := models.ChatMessage{
		ID:        uuid.New(),
		Role:      models.RoleAssistant,
		CreatedAt: time.Now(),
	}

	stream, err := model.Stream(ctx, req)
	if err != nil {
		return assistant, nil, err
	}

	var text strings.Builder
	var calls []provider.ToolCall

	for ev := range stream {
		switch ev.Type {
		case provider.EventTextDelta:
			text.WriteString(ev.TextDelta)
			run.emit(Event{Type: EventTextDelta, TextDelta: ev.TextDelta})
		case provider.EventReasoningDelta:
			reasoning.WriteString(ev.ReasoningDelta)
			run.emit(Event{Type: EventReasoningDelta, ReasoningDelta: ev.ReasoningDelta})
		case provider.EventToolCall:
			if ev.ToolCall == nil {
				continue
			}
			calls = append(calls, *ev.ToolCall)
			run.emit(Event{
				Type:       EventToolCall,
				ToolCallID: ev.ToolCall.ID,
				ToolName:   ev.ToolCall.Name,
				Args:       ev.ToolCall.Args,
			})
		case provider.EventError:
			return assistant, nil, ev.Err
		case provider.EventFinish:
			// Terminal; the channel closes next.
		}
	}

	if text.Len() > 0 {
		assistant.Parts = append(assistant.Parts, models.TextPart(text.String()))
	}
	for _, call := range calls {
		assistant.Parts = append(assistant.Parts, models.Part{
			Type:       models.PartTypeToolCall,
			ToolCallID: call.ID,
			ToolName:   call.Name,
			Args:       call.Args,
		})
	}

	return assistant, calls, nil
}

// dispatchCalls validates, repairs and executes the step's tool calls
// sequentially, collecting their results into one tool message. Calls naming
// an unknown tool produce no result; the sanitizer drops the orphan call.
func (o *Orchestrator) dispatchCalls(ctx context.Context, active []tools.Tool, calls []provider.ToolCall, run *Run) models.ChatMessage {
	toolMsg := models.ChatMessage{
		ID:        uuid.New(),
		Role:      models.RoleTool,
		CreatedAt: time.Now(),
	}

	for _, call := range calls {
		tool, err := tools.Find(active, call.Name)
		if err != nil {
			// The model asked for a capability that does not exist. No repair.
			o.logger.Warn("model requested unknown tool", zap.String("tool", call.Name))
			continue
		}

		result, isError := o.executeCall(ctx, tool, call)
		toolMsg.Parts = append(toolMsg.Parts, models.Part{
			Type:       models.PartTypeToolResult,
			ToolCallID: call.ID,
			ToolName:   call.Name,
			Result:     result,
			IsError:    isError,
		})
		run.emit(Event{
			Type:       EventToolResult,
			ToolCallID: call.ID,
			ToolName:   call.Name,
			Result:     result,
			IsError:    isError,
		})
	}

	return toolMsg
}

// executeCall runs one validated tool call. Malformed arguments get one
// repair attempt; every failure mode is converted into a failed tool-result
// so that one tool failure cannot abort the whole turn.
func (o *Orchestrator) executeCall(ctx context.Context, tool tools.Tool, call provider.ToolCall) (json.RawMessage, bool) {
	args := call.Args
	if err := tools.ValidateArgs(call.Name, tool.Schema(), args); err != nil {
		var validationErr *tools.ValidationError
		if !errors.As(err, &validationErr) {
			return failureResult(err), true
		}

		repaired, ok := o.repairToolCall(ctx, tool, call, validationErr)
		if !ok {
			return failureResult(validationErr), true
		}
		if err := tools.ValidateArgs(call.Name, tool.Schema(), repaired); err != nil {
			// Repair is attempted at most once.
			return failureResult(err), true
		}
		args = repaired
	}

	execCtx, cancel := context.WithTimeout(ctx, o.config.ToolTimeout)
	defer cancel()

	result, err := safeExecute(execCtx, tool, args)
	if err != nil {
		o.logger.Warn("tool execution failed", zap.String("tool", call.Name), zap.Error(err))
		return failureResult(err), true
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return failureResult(fmt.Errorf("tool produced unencodable result: %w", err)), true
	}
	return raw, false
}

// safeExecute runs a tool, converting panics into errors at the dispatch
// boundary.
func safeExecute(ctx context.Context, tool tools.Tool, args json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return tool.Execute(ctx, args)
}

func failureResult(err error) json.RawMessage {
	raw, marshalErr := json.Marshal(map[string]any{
		"success": false,
		"error":   err.Error(),
	})
	if marshalErr != nil {
		return json.RawMessage(`{"success":false,"error":"tool failed"}`)
	}
	return raw
}
