// Package agent runs a tool-calling chat loop against an OpenAI-compatible
// model and renders the outcome as a plain-text report.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bookcatalog/internal/tools"

	"github.com/charmbracelet/log"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultMaxIterations = 8

	DefaultSystemPrompt = "You are a helpful assistant that can manage books. Use the available tools to interact with the local book storage API. Based on the tool results, provide a natural language response to the user's query."

	stoppedOutput = "Agent stopped due to iteration limit."
)

var ErrNoChoices = errors.New("model returned no choices")

// ChatClient is the subset of *openai.Client the runner needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var _ ChatClient = (*openai.Client)(nil)

// Step is one tool invocation made on the model's behalf.
type Step struct {
	Tool  string
	Input string
	// Log is the text the model produced alongside the tool call. It is set
	// on the first step of a turn only.
	Log         string
	Observation string
}

type Result struct {
	Input  string
	Output string
	Steps  []Step
	// Stopped is set when the loop hit MaxIterations before a final answer.
	Stopped bool
}

type Runner struct {
	Client        ChatClient
	Model         string
	Tools         *tools.Registry
	SystemPrompt  string
	MaxIterations int
	Logger        *log.Logger
}

func NewRunner(client ChatClient, model string, registry *tools.Registry, logger *log.Logger) *Runner {
	return &Runner{
		Client:        client,
		Model:         model,
		Tools:         registry,
		SystemPrompt:  DefaultSystemPrompt,
		MaxIterations: DefaultMaxIterations,
		Logger:        logger,
	}
}

// Run sends input to the model and executes the tool calls it asks for until
// it answers without calling a tool.
func (r *Runner) Run(ctx context.Context, input string) (Result, error) {
	res := Result{Input: input}
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: r.SystemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: input},
	}
	toolDefs := r.toolDefinitions()

	maxIter := r.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}

	for i := 0; i < maxIter; i++ {
		resp, err := r.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    r.Model,
			Messages: messages,
			Tools:    toolDefs,
		})
		if err != nil {
			return res, fmt.Errorf("chat completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return res, ErrNoChoices
		}

		msg := resp.Choices[0].Message
		messages = append(messages, msg)

		if len(msg.ToolCalls) == 0 {
			res.Output = msg.Content
			return res, nil
		}

		thought := msg.Content
		for _, call := range msg.ToolCalls {
			obs := r.execute(ctx, call)
			res.Steps = append(res.Steps, Step{
				Tool:        call.Function.Name,
				Input:       call.Function.Arguments,
				Log:         thought,
				Observation: obs,
			})
			thought = ""
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    obs,
				Name:       call.Function.Name,
				ToolCallID: call.ID,
			})
		}
	}

	r.Logger.Warn("iteration limit reached", "max_iterations", maxIter)
	res.Output = stoppedOutput
	res.Stopped = true
	return res, nil
}

func (r *Runner) execute(ctx context.Context, call openai.ToolCall) string {
	name := call.Function.Name
	r.Logger.Debug("tool call", "tool", name, "args", call.Function.Arguments)

	out, err := r.Tools.Execute(ctx, name, json.RawMessage(call.Function.Arguments))
	if err != nil {
		r.Logger.Warn("tool failed", "tool", name, "error", err)
		return "Error: " + err.Error()
	}
	return out
}

func (r *Runner) toolDefinitions() []openai.Tool {
	all := r.Tools.All()
	defs := make([]openai.Tool, 0, len(all))
	for _, t := range all {
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Schema(),
			},
		})
	}
	return defs
}
