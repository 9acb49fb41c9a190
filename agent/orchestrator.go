package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
	"golang.org/x/sync/errgroup"

	"github.com/smallnest/promatch/log"
)

// State of the orchestration loop.
type State int

const (
	// StateReasoning is the initial state: the model is producing output.
	StateReasoning State = iota
	// StateToolExecution resolves the tool calls the model requested.
	StateToolExecution
	// StateTerminal is the final state; the last produced text is the answer.
	StateTerminal
)

// DefaultMaxIterations is the hard ceiling on Reasoning/ToolExecution round
// trips. It guarantees termination even if the model never stops requesting
// tools.
const DefaultMaxIterations = 25

// Result is the outcome of one orchestration run.
type Result struct {
	// FinalText is the last text the model produced.
	FinalText string
	// Messages is the full accumulated conversation.
	Messages []llms.MessageContent
	// Iterations is the number of reasoning steps taken.
	Iterations int
	// BudgetExceeded reports whether the iteration ceiling forced termination.
	BudgetExceeded bool
}

// Orchestrator drives a bounded tool-calling loop: the model reasons, requests
// tools, sees their results, and eventually produces a final text answer.
// It is stateless across runs; all state lives in the in-flight message history.
type Orchestrator struct {
	model         llms.Model
	tools         []tools.Tool
	toolsByName   map[string]tools.Tool
	maxIterations int
	callTimeout   time.Duration
	logger        log.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMaxIterations sets the iteration ceiling.
func WithMaxIterations(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithCallTimeout bounds each model call.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.callTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates a new Orchestrator over the given model and tool set.
func New(model llms.Model, inputTools []tools.Tool, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		model:         model,
		tools:         inputTools,
		toolsByName:   make(map[string]tools.Tool, len(inputTools)),
		maxIterations: DefaultMaxIterations,
		callTimeout:   60 * time.Second,
		logger:        log.GetDefaultLogger(),
	}
	for _, t := range inputTools {
		o.toolsByName[t.Name()] = t
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the loop starting from the given messages until the model
// produces a final answer or the iteration budget is exhausted. The budget
// case is not an error: the last produced text becomes the answer.
func (o *Orchestrator) Run(ctx context.Context, messages []llms.MessageContent) (*Result, error) {
	toolDefs := o.toolDefinitions()
	state := StateReasoning
	lastText := ""
	iterations := 0

	for state != StateTerminal {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch state {
		case StateReasoning:
			if iterations >= o.maxIterations {
				o.logger.Warn("orchestrator: iteration ceiling of %d reached, forcing termination", o.maxIterations)
				return &Result{
					FinalText:      lastText,
					Messages:       messages,
					Iterations:     iterations,
					BudgetExceeded: true,
				}, nil
			}
			iterations++

			aiMsg, text, err := o.reason(ctx, messages, toolDefs)
			if err != nil {
				return nil, err
			}
			messages = append(messages, aiMsg)
			if text != "" {
				lastText = text
			}

			if hasToolCalls(aiMsg) {
				state = StateToolExecution
			} else {
				state = StateTerminal
			}

		case StateToolExecution:
			toolMessages, err := o.executeTools(ctx, messages[len(messages)-1])
			if err != nil {
				return nil, err
			}
			messages = append(messages, toolMessages...)
			state = StateReasoning
		}
	}

	return &Result{
		FinalText:  lastText,
		Messages:   messages,
		Iterations: iterations,
	}, nil
}

// reason runs one model call over the full accumulated conversation.
func (o *Orchestrator) reason(ctx context.Context, messages []llms.MessageContent, toolDefs []llms.Tool) (llms.MessageContent, string, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	resp, err := o.model.GenerateContent(callCtx, messages, llms.WithTools(toolDefs))
	if err != nil {
		return llms.MessageContent{}, "", fmt.Errorf("reasoning step failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return llms.MessageContent{}, "", fmt.Errorf("reasoning step returned no choices")
	}

	choice := resp.Choices[0]
	aiMsg := llms.MessageContent{Role: llms.ChatMessageTypeAI}
	if choice.Content != "" {
		aiMsg.Parts = append(aiMsg.Parts, llms.TextPart(choice.Content))
	}
	for _, tc := range choice.ToolCalls {
		aiMsg.Parts = append(aiMsg.Parts, tc)
	}

	return aiMsg, choice.Content, nil
}

// executeTools resolves every tool call in the last AI message. Calls are
// dispatched concurrently since tools are declared side-effect-free, but the
// results are reassembled in the order the model requested them. A failing or
// timed-out tool call becomes a failure message for the model, never a fatal
// orchestrator error.
func (o *Orchestrator) executeTools(ctx context.Context, lastMsg llms.MessageContent) ([]llms.MessageContent, error) {
	var calls []llms.ToolCall
	for _, part := range lastMsg.Parts {
		if tc, ok := part.(llms.ToolCall); ok {
			calls = append(calls, tc)
		}
	}

	results := make([]string, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	for i, tc := range calls {
		g.Go(func() error {
			results[i] = o.executeOne(gctx, tc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	toolMessages := make([]llms.MessageContent, 0, len(calls))
	for i, tc := range calls {
		toolMessages = append(toolMessages, llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{
				llms.ToolCallResponse{
					ToolCallID: tc.ID,
					Name:       tc.FunctionCall.Name,
					Content:    results[i],
				},
			},
		})
	}
	return toolMessages, nil
}

func (o *Orchestrator) executeOne(ctx context.Context, tc llms.ToolCall) string {
	name := tc.FunctionCall.Name
	t, ok := o.toolsByName[name]
	if !ok {
		o.logger.Warn("orchestrator: model requested unknown tool %q", name)
		return fmt.Sprintf("Error: unknown tool %q", name)
	}

	input := toolInput(tc.FunctionCall.Arguments)
	res, err := t.Call(ctx, input)
	if err != nil {
		o.logger.Warn("orchestrator: tool %s failed: %v", name, err)
		return fmt.Sprintf("Error: %v", err)
	}
	return res
}

// toolInput unwraps the generic {"input": "..."} argument shape; tools receive
// the raw arguments if the model sent something else.
func toolInput(arguments string) string {
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return arguments
	}
	if val, ok := args["input"].(string); ok {
		return val
	}
	return arguments
}

func (o *Orchestrator) toolDefinitions() []llms.Tool {
	var defs []llms.Tool
	for _, t := range o.tools {
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"input": map[string]any{
							"type":        "string",
							"description": "The input for the tool, as described by the tool",
						},
					},
					"required":             []string{"input"},
					"additionalProperties": false,
				},
			},
		})
	}
	return defs
}

func hasToolCalls(msg llms.MessageContent) bool {
	for _, part := range msg.Parts {
		if _, ok := part.(llms.ToolCall); ok {
			return true
		}
	}
	return false
}
