package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "builds.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndCount(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertBuild(ctx, "/src/app", "Rust", "/src/app/target", 1024))
	require.NoError(t, s.InsertBuild(ctx, "/src/web", "JavaScript", "/src/web/node_modules", 2048))

	n, err := s.CountBuilds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRecentArtifacts_DistinctNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.insertBuildAt(ctx, "/src/a", "Rust", "/src/a/target", 10, now.Add(-2*time.Hour)))
	require.NoError(t, s.insertBuildAt(ctx, "/src/b", "Go", "/src/b/vendor", 20, now.Add(-1*time.Hour)))
	// Second event for the same path; the newer one decides ordering.
	require.NoError(t, s.insertBuildAt(ctx, "/src/a", "Rust", "/src/a/target", 15, now))

	paths, err := s.RecentArtifacts(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/a/target", "/src/b/vendor"}, paths)
}

func TestRecentArtifacts_Limit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		p := filepath.Join("/src", string(rune('a'+i)), "target")
		require.NoError(t, s.InsertBuild(ctx, filepath.Dir(p), "Rust", p, int64(i)))
	}

	paths, err := s.RecentArtifacts(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, paths, 3)
}

func TestRecentBuilds(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.insertBuildAt(ctx, "/src/old", "Python", "/src/old/__pycache__", 1, now.Add(-time.Hour)))
	require.NoError(t, s.insertBuildAt(ctx, "/src/new", "Rust", "/src/new/target", 2, now))

	events, err := s.RecentBuilds(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "/src/new", events[0].ProjectPath)
	assert.Equal(t, "Rust", events[0].Language)
	assert.Equal(t, "/src/old", events[1].ProjectPath)
}

func TestMaxSizes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertBuild(ctx, "/src/a", "Rust", "/src/a/target", 100))
	require.NoError(t, s.InsertBuild(ctx, "/src/a", "Rust", "/src/a/target", 500))
	require.NoError(t, s.InsertBuild(ctx, "/src/b", "Go", "/src/b/vendor", 300))

	sizes, err := s.MaxSizes(ctx)
	require.NoError(t, err)
	require.Len(t, sizes, 2)
	assert.Equal(t, PathSize{ArtifactPath: "/src/a/target", SizeBytes: 500}, sizes[0])
	assert.Equal(t, PathSize{ArtifactPath: "/src/b/vendor", SizeBytes: 300}, sizes[1])
}

func TestDeleteByPath(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertBuild(ctx, "/src/a", "Rust", "/src/a/target", 1))
	require.NoError(t, s.InsertBuild(ctx, "/src/b", "Go", "/src/b/vendor", 2))
	require.NoError(t, s.DeleteByPath(ctx, "/src/a/target"))

	paths, err := s.RecentArtifacts(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/b/vendor"}, paths)
}

func TestDeleteAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertBuild(ctx, "/src/a", "Rust", "/src/a/target", 1))
	require.NoError(t, s.DeleteAll(ctx))

	n, err := s.CountBuilds(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStalePaths(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// Stale: latest event 10 days old.
	require.NoError(t, s.insertBuildAt(ctx, "/src/stale", "Rust", "/src/stale/target", 1, now.AddDate(0, 0, -10)))
	// Fresh: has an old event but a recent one too.
	require.NoError(t, s.insertBuildAt(ctx, "/src/fresh", "Go", "/src/fresh/vendor", 2, now.AddDate(0, 0, -10)))
	require.NoError(t, s.insertBuildAt(ctx, "/src/fresh", "Go", "/src/fresh/vendor", 3, now))

	paths, err := s.StalePaths(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"/src/stale/target"}, paths)
}

func TestDeleteOlderThan(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.insertBuildAt(ctx, "/src/old", "Rust", "/src/old/target", 1, now.AddDate(0, 0, -30)))
	require.NoError(t, s.insertBuildAt(ctx, "/src/new", "Go", "/src/new/vendor", 2, now))

	require.NoError(t, s.DeleteOlderThan(ctx, 7))

	n, err := s.CountBuilds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
