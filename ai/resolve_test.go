package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelById(t *testing.T) {
	t.Run("known model", func(t *testing.T) {
		m, ok := ModelById("claude-sonnet")
		require.True(t, ok)
		assert.Equal(t, VendorAnthropic, m.Vendor)
		assert.Equal(t, "claude-sonnet-4-5-20250929", m.ModelId)
		assert.Equal(t, 16384, m.MaxOutput)
	})

	t.Run("unknown model", func(t *testing.T) {
		_, ok := ModelById("claude-sonnet-3.5")
		assert.False(t, ok)
	})
}

func TestDefaultModelsCoverAllOperations(t *testing.T) {
	for _, op := range Operations {
		id, ok := DefaultModels[op]
		require.True(t, ok, "operation %s has no default model", op)

		_, ok = ModelById(id)
		assert.True(t, ok, "default model %s for %s is not registered", id, op)
	}
}

func TestResolveModel(t *testing.T) {
	t.Run("built-in default", func(t *testing.T) {
		m := ResolveModel(OperationDrafting, nil, nil)
		assert.Equal(t, "claude-sonnet", m.Id)

		m = ResolveModel(OperationChat, nil, nil)
		assert.Equal(t, "claude-haiku", m.Id)
	})

	t.Run("user default beats built-in", func(t *testing.T) {
		user := Overrides{OperationDrafting: "gpt-4o"}

		m := ResolveModel(OperationDrafting, nil, user)
		assert.Equal(t, "gpt-4o", m.Id)
	})

	t.Run("project override beats user default", func(t *testing.T) {
		project := Overrides{OperationDrafting: "claude-opus"}
		user := Overrides{OperationDrafting: "gpt-4o"}

		m := ResolveModel(OperationDrafting, project, user)
		assert.Equal(t, "claude-opus", m.Id)
	})

	t.Run("unknown project override falls through to user", func(t *testing.T) {
		project := Overrides{OperationDrafting: "retired-model"}
		user := Overrides{OperationDrafting: "gpt-4.1"}

		m := ResolveModel(OperationDrafting, project, user)
		assert.Equal(t, "gpt-4.1", m.Id)
	})

	t.Run("unknown override everywhere falls through to default", func(t *testing.T) {
		project := Overrides{OperationChat: "retired-model"}
		user := Overrides{OperationChat: "another-retired-model"}

		m := ResolveModel(OperationChat, project, user)
		assert.Equal(t, "claude-haiku", m.Id)
	})

	t.Run("override on one operation does not leak to another", func(t *testing.T) {
		project := Overrides{OperationDrafting: "claude-opus"}

		m := ResolveModel(OperationFeedback, project, nil)
		assert.Equal(t, "claude-sonnet", m.Id)
	})
}

func TestResolvePrompt(t *testing.T) {
	t.Run("built-in default", func(t *testing.T) {
		p := ResolvePrompt(OperationDrafting, nil, nil)
		assert.Equal(t, Prompts[OperationDrafting], p)
		assert.NotEmpty(t, p)
	})

	t.Run("project override wins", func(t *testing.T) {
		project := Overrides{OperationDrafting: "Rédigez de manière concise."}
		user := Overrides{OperationDrafting: "Rédigez de manière détaillée."}

		p := ResolvePrompt(OperationDrafting, project, user)
		assert.Equal(t, "Rédigez de manière concise.", p)
	})

	t.Run("user default applies without project override", func(t *testing.T) {
		user := Overrides{OperationChat: "Répondez en anglais."}

		p := ResolvePrompt(OperationChat, nil, user)
		assert.Equal(t, "Répondez en anglais.", p)
	})

	t.Run("empty override falls through", func(t *testing.T) {
		project := Overrides{OperationChat: ""}

		p := ResolvePrompt(OperationChat, project, nil)
		assert.Equal(t, Prompts[OperationChat], p)
	})

	t.Run("embedding has no prompt", func(t *testing.T) {
		p := ResolvePrompt(OperationEmbedding, nil, nil)
		assert.Empty(t, p)
	})
}
