package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/flowchartai/backend/internal/config"
	"github.com/flowchartai/backend/internal/metrics"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

// ChatCompleter is the slice of the OpenAI client the service depends on.
// *openai.ChatCompletionService satisfies it.
type ChatCompleter interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
}

type FlowchartService struct {
	logger *log.Logger
	chat   ChatCompleter
	cfg    config.OpenAIConfig
	cache  Cache
}

func NewFlowchartService(logger *log.Logger, chat ChatCompleter, cfg config.OpenAIConfig) *FlowchartService {
	return &FlowchartService{
		logger: logger,
		chat:   chat,
		cfg:    cfg,
	}
}

func (s *FlowchartService) SetCacheClient(cache Cache) {
	s.cache = cache
}

// Generate turns a process description into Mermaid flowchart code via one
// chat-completion round trip. It never fails loudly: a missing credential,
// a provider failure or a non-conforming reply all come back as a degraded
// diagram carrying the reason.
func (s *FlowchartService) Generate(ctx context.Context, processText string) string {
	if s.cfg.APIKey == "" {
		return degradedNoAPIKey
	}

	var cacheKey string
	if s.cache != nil {
		cacheKey = s.generateCacheKey(processText)
		cached, found, err := s.cache.Get(ctx, cacheKey)
		if err != nil {
			s.logger.Printf("cache get error: %v\n", err)
		}
		if found {
			s.logger.Println("served from cache")
			return cached
		}
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPromptGenerate),
			openai.UserMessage(fmt.Sprintf(generatePromptTemplate, processText)),
		},
		Temperature:         openai.Float(s.cfg.GenerateTemperature),
		MaxCompletionTokens: openai.Int(s.cfg.GenerateMaxTokens),
	}

	reply, err := s.complete(ctx, opGenerate, params)
	if err != nil {
		return fmt.Sprintf(degradedLLMErrorFmt, err)
	}

	code := sanitizeMermaid(reply)
	if !strings.HasPrefix(code, graphKeyword) {
		s.logger.Printf("warning: LLM response doesn't look like Mermaid code: %q\n", code)
		return degradedInvalidOutput
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, code); err != nil {
			s.logger.Printf("failed to set cache: %v\n", err)
		}
	}
	return code
}

// Refine asks the LLM for a complete replacement of currentMermaid per the
// instruction. On any failure the caller's diagram is preserved and a comment
// annotation is appended, so refinement is never destructive.
func (s *FlowchartService) Refine(ctx context.Context, currentMermaid, instruction string) string {
	if s.cfg.APIKey == "" {
		return currentMermaid + refineNoAPIKeyAnnotation
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPromptRefine),
			openai.UserMessage(fmt.Sprintf(refinePromptTemplate, currentMermaid, instruction)),
		},
		Temperature:         openai.Float(s.cfg.RefineTemperature),
		MaxCompletionTokens: openai.Int(s.cfg.RefineMaxTokens),
	}

	reply, err := s.complete(ctx, opRefine, params)
	if err != nil {
		return fmt.Sprintf(refineLLMErrorFmt, currentMermaid, err)
	}

	code := sanitizeMermaid(reply)
	if !strings.HasPrefix(code, graphKeyword) {
		s.logger.Printf("warning: LLM refinement response doesn't look like Mermaid code: %q\n", code)
		return currentMermaid + refineInvalidAnnotation
	}
	return code
}

// complete performs one chat-completion round trip and records its metrics.
// An empty completion is returned as an empty reply, which the callers treat
// as non-conforming output.
func (s *FlowchartService) complete(ctx context.Context, operation string, params openai.ChatCompletionNewParams) (string, error) {
	start := time.Now()
	resp, err := s.chat.New(ctx, params)
	if err != nil {
		metrics.LLMRequest(operation, metrics.StatusError, time.Since(start))
		s.logger.Printf("OpenAI %s error: %v\n", operation, err)
		return "", err
	}
	metrics.LLMRequest(operation, metrics.StatusOK, time.Since(start))

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *FlowchartService) generateCacheKey(processText string) string {
	data := strings.Join([]string{
		processText,
		s.cfg.Model,
		fmt.Sprintf("%g", s.cfg.GenerateTemperature),
		fmt.Sprintf("%d", s.cfg.GenerateMaxTokens),
	}, "-")

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
