// Copyright 2025 Forecast Consulting
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

const (
	// historyLimit caps how many past messages are replayed to the model.
	historyLimit = 20
	// ragLimit caps how many retrieved chunks enrich the chat context.
	ragLimit = 5
	// itemExcerptMax truncates item text in the context summary.
	itemExcerptMax = 200
)

// editPrompt asks the model to rewrite an item's response. The rewritten
// text comes back as the whole completion, with no surrounding commentary.
const editPrompt = `Vous êtes un assistant d'édition. L'utilisateur demande une modification de la réponse suivante à une exigence d'appel d'offres.

Réponse actuelle:
---
%s
---

Instruction de modification: %s

Réécrivez la réponse en appliquant la modification demandée. Retournez UNIQUEMENT le texte modifié, sans commentaire ni explication.`

// Searcher retrieves a project's knowledge chunks relevant to a query.
// *search.Retriever satisfies it.
type Searcher interface {
	Search(ctx context.Context, projectID core.ID, query string, limit int) ([]*core.RetrievedChunk, error)
}

// EditSuggestion is the outcome of a targeted edit request against one
// extracted item's response text. Nothing is written to the item itself;
// applying the suggestion is the caller's decision.
type EditSuggestion struct {
	ItemId        core.ID
	CurrentText   string
	SuggestedText string
}

// Service runs the project assistant conversation. Each exchange grounds
// the model in the project's extracted items, the knowledge base, and the
// recent conversation history.
type Service struct {
	chatRepository   storage.ChatRepository
	itemRepository   storage.ItemRepository
	generator        ai.Generator
	searcher         Searcher
	projectOverrides ai.Overrides
	userDefaults     ai.Overrides
	logger           *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithModelOverrides sets the project-level and user-level model overrides
// consulted when resolving the chat model and prompt.
func WithModelOverrides(projectOverrides, userDefaults ai.Overrides) Option {
	return func(s *Service) error {
		s.projectOverrides = projectOverrides
		s.userDefaults = userDefaults
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "chat")
		return nil
	}
}

// NewService creates a new chat service. searcher may be nil, in which
// case the relevant-documents block is always omitted from the context.
func NewService(
	chatRepository storage.ChatRepository,
	itemRepository storage.ItemRepository,
	generator ai.Generator,
	searcher Searcher,
	opts ...Option,
) (*Service, error) {
	if chatRepository == nil {
		return nil, ErrChatRepositoryRequired
	}
	if itemRepository == nil {
		return nil, ErrItemRepositoryRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	s := &Service{
		chatRepository: chatRepository,
		itemRepository: itemRepository,
		generator:      generator,
		searcher:       searcher,
		logger:         slog.Default().With("component", "chat"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Send runs one conversation turn, streaming the reply through onToken
// (which may be nil). The user message is persisted before the model is
// called, so a failed generation still leaves it in the history; the
// assistant reply is persisted on success and returned.
//
// Context assembly is best-effort: an item or retrieval failure drops its
// block and the conversation proceeds without it.
func (s *Service) Send(ctx context.Context, projectID core.ID, message string, onToken ai.TokenFunc) (*core.ChatMessage, error) {
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	if _, err := s.chatRepository.AddMessages(ctx, &core.ChatMessage{
		ProjectId: projectID,
		Role:      core.ChatRoleUser,
		Content:   message,
	}); err != nil {
		return nil, fmt.Errorf("saving user message: %w", err)
	}

	systemPrompt := ai.ResolvePrompt(ai.OperationChat, s.projectOverrides, s.userDefaults)
	if projectContext := s.projectContext(ctx, projectID, message); projectContext != "" {
		systemPrompt += "\n\nContexte du projet:\n" + projectContext
	}
	// History is read after the user message is saved, so it closes with
	// the message being answered.
	if history := s.historyBlock(ctx, projectID); history != "" {
		systemPrompt += "\n\nHistorique:\n" + history
	}

	model := ai.ResolveModel(ai.OperationChat, s.projectOverrides, s.userDefaults)
	text, err := s.generator.Stream(ctx, model, systemPrompt, message, onToken)
	if err != nil {
		return nil, fmt.Errorf("generating reply: %w", err)
	}

	saved, err := s.chatRepository.AddMessages(ctx, &core.ChatMessage{
		ProjectId: projectID,
		Role:      core.ChatRoleAssistant,
		Content:   text,
	})
	if err != nil {
		return nil, fmt.Errorf("saving assistant message: %w", err)
	}
	return saved[0], nil
}

// SuggestEdit rewrites one item's response text per the user's instruction,
// streaming the rewrite through onToken (which may be nil). The rewrite is
// recorded as an assistant message linked to the item; the item itself is
// left untouched.
func (s *Service) SuggestEdit(ctx context.Context, itemID core.ID, instruction string, onToken ai.TokenFunc) (*EditSuggestion, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, ErrEmptyInstruction
	}

	item, err := s.itemRepository.GetItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("loading item: %w", err)
	}

	systemPrompt := fmt.Sprintf(editPrompt, item.ResponseText, instruction)
	model := ai.ResolveModel(ai.OperationChat, s.projectOverrides, s.userDefaults)
	text, err := s.generator.Stream(ctx, model, systemPrompt, instruction, onToken)
	if err != nil {
		return nil, fmt.Errorf("generating edit: %w", err)
	}

	// The suggestion itself is the deliverable; a failed conversation
	// record does not void it.
	if _, err := s.chatRepository.AddMessages(ctx, &core.ChatMessage{
		ProjectId: item.ProjectId,
		Role:      core.ChatRoleAssistant,
		Content:   text,
		ItemId:    item.Id,
	}); err != nil {
		s.logger.Error("failed to record edit suggestion",
			"item_id", item.Id, "error", err)
	}

	return &EditSuggestion{
		ItemId:        item.Id,
		CurrentText:   item.ResponseText,
		SuggestedText: text,
	}, nil
}

// History returns a project's most recent messages, oldest first.
// A non-positive limit uses the default replay window.
func (s *Service) History(ctx context.Context, projectID core.ID, limit int) ([]*core.ChatMessage, error) {
	if limit <= 0 {
		limit = historyLimit
	}
	return s.chatRepository.GetRecentMessages(ctx, projectID, limit)
}

// Clear deletes a project's conversation.
func (s *Service) Clear(ctx context.Context, projectID core.ID) error {
	return s.chatRepository.DeleteMessagesByProject(ctx, projectID)
}

// projectContext summarizes the project's extracted items and retrieves
// knowledge chunks matching the user's message. Either part degrades to
// nothing on failure.
func (s *Service) projectContext(ctx context.Context, projectID core.ID, query string) string {
	var parts []string

	items, err := s.itemRepository.GetItemsByProject(ctx, projectID)
	if err != nil {
		s.logger.Warn("item lookup failed, answering without item context",
			"project_id", projectID, "error", err)
	} else if len(items) > 0 {
		lines := make([]string, 0, len(items)+1)
		lines = append(lines, fmt.Sprintf("Elements extraits du projet (%d au total):", len(items)))
		for _, item := range items {
			lines = append(lines, itemLine(item))
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}

	if s.searcher != nil {
		results, err := s.searcher.Search(ctx, projectID, query, ragLimit)
		if err != nil {
			s.logger.Warn("knowledge retrieval failed, answering without it",
				"project_id", projectID, "error", err)
		} else if len(results) > 0 {
			entries := make([]string, 0, len(results))
			for _, result := range results {
				entries = append(entries, fmt.Sprintf("[%d%%] %s",
					int(result.Score*100), result.Chunk.Content))
			}
			parts = append(parts, "Documents pertinents:\n"+strings.Join(entries, "\n\n---\n\n"))
		}
	}

	return strings.Join(parts, "\n\n")
}

// historyBlock replays the recent conversation as labeled turns. A lookup
// failure degrades to no history.
func (s *Service) historyBlock(ctx context.Context, projectID core.ID) string {
	messages, err := s.chatRepository.GetRecentMessages(ctx, projectID, historyLimit)
	if err != nil {
		s.logger.Warn("history lookup failed, answering without it",
			"project_id", projectID, "error", err)
		return ""
	}

	lines := make([]string, 0, len(messages))
	for _, message := range messages {
		label := "Utilisateur"
		if message.Role == core.ChatRoleAssistant {
			label = "Assistant"
		}
		lines = append(lines, label+": "+message.Content)
	}
	return strings.Join(lines, "\n\n")
}

// itemLine is one item's row in the context summary.
func itemLine(item *core.ExtractedItem) string {
	kind := "question"
	if item.Kind == core.ItemKindCondition {
		kind = "condition"
	}
	ref := item.SectionRef
	if ref == "" {
		ref = "?"
	}
	text := item.OriginalText
	if len(text) > itemExcerptMax {
		text = text[:itemExcerptMax]
	}
	state := item.Status.String()
	if item.ResponseText != "" {
		state += " [has response]"
	}
	return fmt.Sprintf("- %s [%s]: %s (%s)", ref, kind, text, state)
}
