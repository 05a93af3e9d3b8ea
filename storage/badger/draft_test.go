package badger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/core"
	"github.com/Forecast-Consulting-AMO/ReponsIA-v2/storage"
)

func TestDraftRepository_GroupPerSection(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	groups, err := repos.Drafts.AddDraftGroups(ctx, &core.DraftGroup{
		ProjectId: core.ID(1),
		SectionId: core.ID(10),
	})
	require.NoError(t, err)
	group := groups[0]

	assert.NotZero(t, group.Id)
	assert.Equal(t, core.DraftStatusPending, group.Status)

	found, err := repos.Drafts.GetDraftGroupBySection(ctx, core.ID(10))
	require.NoError(t, err)
	assert.Equal(t, group.Id, found.Id)

	_, err = repos.Drafts.GetDraftGroupBySection(ctx, core.ID(999))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDraftRepository_VersionsMonotonic(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	groups, err := repos.Drafts.AddDraftGroups(ctx, &core.DraftGroup{
		ProjectId: core.ID(1),
		SectionId: core.ID(10),
	})
	require.NoError(t, err)
	group := groups[0]

	for i := 0; i < 3; i++ {
		_, err := repos.Drafts.AddDraftVersion(ctx, &core.ResponseDraft{
			GroupId:   group.Id,
			Content:   "contenu généré",
			ModelUsed: "claude-sonnet",
		})
		require.NoError(t, err)
	}

	versions, err := repos.Drafts.GetDraftVersions(ctx, group.Id)
	require.NoError(t, err)
	require.Len(t, versions, 3)

	// Newest first, strictly decreasing versions starting at 3
	assert.Equal(t, 3, versions[0].Version)
	assert.Equal(t, 2, versions[1].Version)
	assert.Equal(t, 1, versions[2].Version)
}

func TestDraftRepository_ConcurrentVersions(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	groups, err := repos.Drafts.AddDraftGroups(ctx, &core.DraftGroup{
		ProjectId: core.ID(1),
		SectionId: core.ID(10),
	})
	require.NoError(t, err)
	group := groups[0]

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repos.Drafts.AddDraftVersion(ctx, &core.ResponseDraft{
				GroupId: group.Id,
				Content: "version concurrente",
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	versions, err := repos.Drafts.GetDraftVersions(ctx, group.Id)
	require.NoError(t, err)
	require.Len(t, versions, writers)

	// No duplicate or skipped version numbers
	seen := make(map[int]bool)
	for _, v := range versions {
		assert.False(t, seen[v.Version], "duplicate version %d", v.Version)
		seen[v.Version] = true
	}
	for i := 1; i <= writers; i++ {
		assert.True(t, seen[i], "missing version %d", i)
	}
}

func TestDraftRepository_DeleteByProject(t *testing.T) {
	repos, err := NewMemoryRepositories()
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()

	groups, err := repos.Drafts.AddDraftGroups(ctx,
		&core.DraftGroup{ProjectId: core.ID(1), SectionId: core.ID(10)},
		&core.DraftGroup{ProjectId: core.ID(1), SectionId: core.ID(11)},
		&core.DraftGroup{ProjectId: core.ID(2), SectionId: core.ID(20)},
	)
	require.NoError(t, err)

	_, err = repos.Drafts.AddDraftVersion(ctx, &core.ResponseDraft{
		GroupId: groups[0].Id,
		Content: "brouillon",
	})
	require.NoError(t, err)

	err = repos.Drafts.DeleteDraftGroupsByProject(ctx, core.ID(1))
	require.NoError(t, err)

	remaining, err := repos.Drafts.GetDraftGroupsByProject(ctx, core.ID(1))
	require.NoError(t, err)
	assert.Empty(t, remaining)

	versions, err := repos.Drafts.GetDraftVersions(ctx, groups[0].Id)
	require.NoError(t, err)
	assert.Empty(t, versions)

	// Other project untouched
	other, err := repos.Drafts.GetDraftGroupsByProject(ctx, core.ID(2))
	require.NoError(t, err)
	assert.Len(t, other, 1)
}
