package drafting

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/ai/mock"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/jobs"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHarness struct {
	service   *Service
	repos     *badger.Repositories
	generator *mock.MockGenerator
}

func newTestService(t *testing.T) *testHarness {
	t.Helper()

	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	assembler, err := NewContextAssembler(repos.Items, repos.Feedback, nil)
	require.NoError(t, err)

	tracker, err := jobs.NewTracker(repos.Jobs)
	require.NoError(t, err)

	generator := mock.NewMockGenerator()
	service, err := NewService(repos.Drafts, repos.Sections, repos.Items, generator, assembler, tracker)
	require.NoError(t, err)

	return &testHarness{service: service, repos: repos, generator: generator}
}

func (h *testHarness) addGroup(t *testing.T, sectionID core.ID, status core.DraftStatus) *core.DraftGroup {
	t.Helper()

	groups, err := h.repos.Drafts.AddDraftGroups(context.Background(), &core.DraftGroup{
		ProjectId:    testProjectID,
		SectionId:    sectionID,
		SystemPrompt: "Vous êtes un expert en rédaction de réponses aux appels d'offres.",
		Status:       status,
	})
	require.NoError(t, err)
	return groups[0]
}

func TestNewService(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	assembler, err := NewContextAssembler(repos.Items, repos.Feedback, nil)
	require.NoError(t, err)
	tracker, err := jobs.NewTracker(repos.Jobs)
	require.NoError(t, err)
	generator := mock.NewMockGenerator()

	cases := []struct {
		name string
		err  error
		make func() (*Service, error)
	}{
		{"requires draft repository", ErrDraftRepositoryRequired, func() (*Service, error) {
			return NewService(nil, repos.Sections, repos.Items, generator, assembler, tracker)
		}},
		{"requires section repository", ErrSectionRepositoryRequired, func() (*Service, error) {
			return NewService(repos.Drafts, nil, repos.Items, generator, assembler, tracker)
		}},
		{"requires item repository", ErrItemRepositoryRequired, func() (*Service, error) {
			return NewService(repos.Drafts, repos.Sections, nil, generator, assembler, tracker)
		}},
		{"requires generator", ErrGeneratorRequired, func() (*Service, error) {
			return NewService(repos.Drafts, repos.Sections, repos.Items, nil, assembler, tracker)
		}},
		{"requires assembler", ErrAssemblerRequired, func() (*Service, error) {
			return NewService(repos.Drafts, repos.Sections, repos.Items, generator, nil, tracker)
		}},
		{"requires tracker", ErrTrackerRequired, func() (*Service, error) {
			return NewService(repos.Drafts, repos.Sections, repos.Items, generator, assembler, nil)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.make()
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestGenerate(t *testing.T) {
	h := newTestService(t)
	ctx := context.Background()

	section := addTestSection(t, h.repos, 1, "Méthodologie")
	group := h.addGroup(t, section.Id, core.DraftStatusPending)
	item := addTestItem(t, h.repos, section.Id, core.ItemKindQuestion, "Décrivez votre méthodologie.")

	h.generator.GenerateFunc = func(ctx context.Context, model ai.Model, systemPrompt, userPrompt string) (string, error) {
		return "Notre méthodologie repose sur des sprints de deux semaines.", nil
	}

	result, err := h.service.Generate(ctx, group.Id, nil)
	require.NoError(t, err)

	assert.Equal(t, core.DraftStatusDrafted, result.Status)
	assert.Equal(t, "Notre méthodologie repose sur des sprints de deux semaines.", result.GeneratedText)

	// The persisted group matches the returned one.
	stored, err := h.repos.Drafts.GetDraftGroup(ctx, group.Id)
	require.NoError(t, err)
	assert.Equal(t, core.DraftStatusDrafted, stored.Status)
	assert.Equal(t, result.GeneratedText, stored.GeneratedText)

	// The group's system prompt carries the assembled context.
	assert.Contains(t, h.generator.LastSystemPrompt, group.SystemPrompt)
	assert.Contains(t, h.generator.LastSystemPrompt, "=== QUESTIONS A REPONDRE ===")
	assert.Contains(t, h.generator.LastSystemPrompt, "- Décrivez votre méthodologie.")
	assert.Equal(t, `Redigez la section "Méthodologie": Description de Méthodologie`, h.generator.LastUserPrompt)

	// A version snapshot was appended.
	versions, err := h.repos.Drafts.GetDraftVersions(ctx, group.Id)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, result.GeneratedText, versions[0].Content)
	assert.Equal(t, h.generator.LastModel.Id, versions[0].ModelUsed)
	assert.Equal(t, h.generator.LastSystemPrompt, versions[0].PromptUsed)

	// The section's pending item was promoted.
	promoted, err := h.repos.Items.GetItem(ctx, item.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ItemStatusDrafted, promoted.Status)
}

func TestGenerateLeavesReviewedItemsAlone(t *testing.T) {
	h := newTestService(t)
	ctx := context.Background()

	section := addTestSection(t, h.repos, 1, "Délais")
	group := h.addGroup(t, section.Id, core.DraftStatusPending)
	reviewed := addTestItem(t, h.repos, section.Id, core.ItemKindCondition, "Livraison sous 30 jours.")
	reviewed.Status = core.ItemStatusReviewed
	_, err := h.repos.Items.UpdateItems(ctx, reviewed)
	require.NoError(t, err)

	_, err = h.service.Generate(ctx, group.Id, nil)
	require.NoError(t, err)

	stored, err := h.repos.Items.GetItem(ctx, reviewed.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ItemStatusReviewed, stored.Status)
}

func TestGenerateModelSelection(t *testing.T) {
	h := newTestService(t)
	ctx := context.Background()

	t.Run("group pins a registered model", func(t *testing.T) {
		section := addTestSection(t, h.repos, 1, "Prix")
		group := h.addGroup(t, section.Id, core.DraftStatusPending)
		group.ModelId = "gpt-4o"
		_, err := h.repos.Drafts.UpdateDraftGroups(ctx, group)
		require.NoError(t, err)

		_, err = h.service.Generate(ctx, group.Id, nil)
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o", h.generator.LastModel.Id)
	})

	t.Run("unknown pinned model falls back to the default", func(t *testing.T) {
		section := addTestSection(t, h.repos, 2, "Références")
		group := h.addGroup(t, section.Id, core.DraftStatusPending)
		group.ModelId = "retired-model"
		_, err := h.repos.Drafts.UpdateDraftGroups(ctx, group)
		require.NoError(t, err)

		_, err = h.service.Generate(ctx, group.Id, nil)
		require.NoError(t, err)
		assert.Equal(t, ai.DefaultModels[ai.OperationDrafting], h.generator.LastModel.Id)
	})
}

func TestGenerateStreamsTokens(t *testing.T) {
	h := newTestService(t)
	ctx := context.Background()

	section := addTestSection(t, h.repos, 1, "Méthodologie")
	group := h.addGroup(t, section.Id, core.DraftStatusPending)

	h.generator.StreamFunc = func(ctx context.Context, model ai.Model, systemPrompt, userPrompt string, onToken ai.TokenFunc) (string, error) {
		for _, token := range []string{"Notre ", "réponse."} {
			onToken(token)
		}
		return "Notre réponse.", nil
	}

	var streamed string
	result, err := h.service.Generate(ctx, group.Id, func(token string) {
		streamed += token
	})
	require.NoError(t, err)

	assert.Equal(t, "Notre réponse.", streamed)
	assert.Equal(t, "Notre réponse.", result.GeneratedText)
}

func TestGenerateResetsGroupOnFailure(t *testing.T) {
	h := newTestService(t)
	ctx := context.Background()

	section := addTestSection(t, h.repos, 1, "Méthodologie")
	group := h.addGroup(t, section.Id, core.DraftStatusPending)
	item := addTestItem(t, h.repos, section.Id, core.ItemKindQuestion, "Décrivez votre méthodologie.")

	cause := errors.New("rate limited")
	h.generator.GenerateFunc = func(ctx context.Context, model ai.Model, systemPrompt, userPrompt string) (string, error) {
		return "", cause
	}

	_, err := h.service.Generate(ctx, group.Id, nil)
	require.ErrorIs(t, err, cause)

	stored, err := h.repos.Drafts.GetDraftGroup(ctx, group.Id)
	require.NoError(t, err)
	assert.Equal(t, core.DraftStatusPending, stored.Status)
	assert.Empty(t, stored.GeneratedText)

	versions, err := h.repos.Drafts.GetDraftVersions(ctx, group.Id)
	require.NoError(t, err)
	assert.Empty(t, versions)

	// Items stay pending when generation fails.
	storedItem, err := h.repos.Items.GetItem(ctx, item.Id)
	require.NoError(t, err)
	assert.Equal(t, core.ItemStatusPending, storedItem.Status)
}

func TestDraftAll(t *testing.T) {
	h := newTestService(t)
	ctx := context.Background()

	// Sections seeded out of order to verify position ordering.
	second := addTestSection(t, h.repos, 2, "Délais")
	first := addTestSection(t, h.repos, 1, "Méthodologie")
	third := addTestSection(t, h.repos, 3, "Prix")

	h.addGroup(t, second.Id, core.DraftStatusPending)
	h.addGroup(t, first.Id, core.DraftStatusPending)
	h.addGroup(t, third.Id, core.DraftStatusDrafted)

	generated := 0
	h.generator.GenerateFunc = func(ctx context.Context, model ai.Model, systemPrompt, userPrompt string) (string, error) {
		generated++
		return fmt.Sprintf("Texte %d", generated), nil
	}

	require.NoError(t, h.service.DraftAll(ctx, testProjectID))

	groups, err := h.repos.Drafts.GetDraftGroupsByProject(ctx, testProjectID)
	require.NoError(t, err)
	for _, group := range groups {
		assert.Equal(t, core.DraftStatusDrafted, group.Status)
	}

	// The already-drafted group was not regenerated.
	assert.Equal(t, 2, h.generator.CallCount())

	// The first generated group belongs to the lowest-position section.
	firstGroup, err := h.repos.Drafts.GetDraftGroupBySection(ctx, first.Id)
	require.NoError(t, err)
	assert.Equal(t, "Texte 1", firstGroup.GeneratedText)

	tracker, err := jobs.NewTracker(h.repos.Jobs)
	require.NoError(t, err)
	job, err := tracker.Latest(ctx, testProjectID, core.JobTypeDraftAll)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, core.JobStatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	assert.Equal(t, "2 sections rédigées", job.Message)
}

func TestDraftAllNothingPending(t *testing.T) {
	h := newTestService(t)
	ctx := context.Background()

	section := addTestSection(t, h.repos, 1, "Méthodologie")
	h.addGroup(t, section.Id, core.DraftStatusDrafted)

	require.NoError(t, h.service.DraftAll(ctx, testProjectID))
	assert.Zero(t, h.generator.CallCount())

	tracker, err := jobs.NewTracker(h.repos.Jobs)
	require.NoError(t, err)
	job, err := tracker.Latest(ctx, testProjectID, core.JobTypeDraftAll)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, core.JobStatusCompleted, job.Status)
	assert.Equal(t, "Aucune section en attente de rédaction", job.Message)
}

func TestDraftAllFailsJobOnGenerationError(t *testing.T) {
	h := newTestService(t)
	ctx := context.Background()

	first := addTestSection(t, h.repos, 1, "Méthodologie")
	second := addTestSection(t, h.repos, 2, "Délais")
	h.addGroup(t, first.Id, core.DraftStatusPending)
	failing := h.addGroup(t, second.Id, core.DraftStatusPending)

	cause := errors.New("provider down")
	calls := 0
	h.generator.GenerateFunc = func(ctx context.Context, model ai.Model, systemPrompt, userPrompt string) (string, error) {
		calls++
		if calls == 2 {
			return "", cause
		}
		return "Texte généré.", nil
	}

	err := h.service.DraftAll(ctx, testProjectID)
	require.ErrorIs(t, err, cause)

	tracker, err := jobs.NewTracker(h.repos.Jobs)
	require.NoError(t, err)
	job, err := tracker.Latest(ctx, testProjectID, core.JobTypeDraftAll)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, core.JobStatusError, job.Status)
	assert.Contains(t, job.ErrorMessage, "provider down")

	// First section succeeded, second was reset.
	stored, err := h.repos.Drafts.GetDraftGroup(ctx, failing.Id)
	require.NoError(t, err)
	assert.Equal(t, core.DraftStatusPending, stored.Status)
}

func TestGenerateWithModelOverrides(t *testing.T) {
	repos, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	assembler, err := NewContextAssembler(repos.Items, repos.Feedback, nil)
	require.NoError(t, err)
	tracker, err := jobs.NewTracker(repos.Jobs)
	require.NoError(t, err)
	generator := mock.NewMockGenerator()

	service, err := NewService(repos.Drafts, repos.Sections, repos.Items, generator, assembler, tracker,
		WithModelOverrides(ai.Overrides{ai.OperationDrafting: "gpt-4.1"}, nil))
	require.NoError(t, err)

	sections, err := repos.Sections.AddSections(context.Background(), &core.OutlineSection{
		ProjectId: testProjectID, Position: 1, Title: "Prix", Source: core.SectionSourceTemplate,
	})
	require.NoError(t, err)
	groups, err := repos.Drafts.AddDraftGroups(context.Background(), &core.DraftGroup{
		ProjectId: testProjectID, SectionId: sections[0].Id, Status: core.DraftStatusPending,
	})
	require.NoError(t, err)

	_, err = service.Generate(context.Background(), groups[0].Id, nil)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4.1", generator.LastModel.Id)
	// With no group prompt, the resolved drafting prompt is used.
	assert.Contains(t, generator.LastSystemPrompt, ai.Prompts[ai.OperationDrafting])
}
