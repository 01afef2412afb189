package generator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pagegen/internal/forest"
	"github.com/leapstack-labs/pagegen/internal/render"
	"github.com/leapstack-labs/pagegen/internal/starlark"
	"github.com/leapstack-labs/pagegen/internal/state"
	"github.com/leapstack-labs/pagegen/internal/testutil"
	"github.com/leapstack-labs/pagegen/pkg/core"
)

type stubSource struct {
	coll    *core.Collection
	err     error
	fetches int
}

func (s *stubSource) Fetch(context.Context) (*core.Collection, error) {
	s.fetches++
	return s.coll, s.err
}

func (s *stubSource) Describe() string { return "stub://brothers" }

type recordingRenderer struct {
	pages []core.Page
	err   error
	calls int
}

func (r *recordingRenderer) Render(_ context.Context, pages []core.Page) error {
	r.calls++
	r.pages = pages
	return r.err
}

func brothers() *core.Collection {
	return &core.Collection{
		Data: core.Record{"surname": "Karamazov", "father": "Fyodor"},
		Pages: []core.Record{
			{"name": "Dmitri"},
			{"name": "Ivan"},
			{"name": "Alexei", "father": "Fyodor Pavlovich"},
		},
	}
}

func setupStore(t *testing.T) *state.SQLiteStore {
	t.Helper()
	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	src := &stubSource{coll: brothers()}

	require.NoError(t, reg.Register(&Collection{Name: "b", Source: src}))
	require.NoError(t, reg.Register(&Collection{Name: "a", Source: src}))

	err := reg.Register(&Collection{Name: "b", Source: &stubSource{}})
	require.ErrorIs(t, err, core.ErrCollectionAlreadyRegistered)

	got, err := reg.Get("b")
	require.NoError(t, err)
	assert.Same(t, src, got.Source, "first registration wins")

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, core.ErrCollectionNotFound)

	assert.Equal(t, []string{"b", "a"}, reg.Names())
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_Invalid(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.Register(nil))
	assert.Error(t, reg.Register(&Collection{Source: &stubSource{}}))
	assert.Error(t, reg.Register(&Collection{Name: "x"}))
	assert.Zero(t, reg.Len())
}

func TestGenerator_Run(t *testing.T) {
	reg := NewRegistry()
	renderer := &recordingRenderer{}
	require.NoError(t, reg.Register(&Collection{Name: "brothers", Source: &stubSource{coll: brothers()}, Renderer: renderer}))

	store := setupStore(t)
	gen := New(reg, WithStore(store), WithLogger(testutil.NewTestLogger(t)))

	result, err := gen.Run(context.Background(), "brothers")
	require.NoError(t, err)

	require.Len(t, result.Pages, 3)
	assert.Equal(t, result.Pages, renderer.pages)
	assert.Equal(t, "page-0.html", result.Pages[0].Name)
	assert.Equal(t, core.Record{"surname": "Karamazov", "father": "Fyodor", "name": "Dmitri"}, result.Pages[0].Data)
	assert.Equal(t, "Fyodor Pavlovich", result.Pages[2].Data["father"])

	require.NotNil(t, result.Run)
	assert.Equal(t, core.RunStatusCompleted, result.Run.Status)
	assert.Equal(t, 3, result.Run.PageCount)
	assert.Equal(t, "stub://brothers", result.Run.Source)
	assert.NotNil(t, result.Run.CompletedAt)
}

func TestGenerator_RunFetchFailureRendersNothing(t *testing.T) {
	reg := NewRegistry()
	renderer := &recordingRenderer{}
	fetchErr := core.NewCollaboratorError(core.KindAPI, "fetch", errors.New("status 503"))
	require.NoError(t, reg.Register(&Collection{Name: "down", Source: &stubSource{err: fetchErr}, Renderer: renderer}))

	store := setupStore(t)
	gen := New(reg, WithStore(store))

	result, err := gen.Run(context.Background(), "down")
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindAPI))
	assert.Zero(t, renderer.calls)
	assert.Empty(t, result.Pages)

	require.NotNil(t, result.Run)
	assert.Equal(t, core.RunStatusFailed, result.Run.Status)
	assert.Contains(t, result.Run.Error, "status 503")
}

func TestGenerator_RunRenderFailure(t *testing.T) {
	reg := NewRegistry()
	renderer := &recordingRenderer{err: core.NewCollaboratorError(core.KindTemplate, "render", errors.New("bad"))}
	require.NoError(t, reg.Register(&Collection{Name: "brothers", Source: &stubSource{coll: brothers()}, Renderer: renderer}))

	result, err := New(reg).Run(context.Background(), "brothers")
	require.Error(t, err)
	assert.True(t, core.IsKind(err, core.KindTemplate))
	assert.Nil(t, result.Run)
	assert.Empty(t, result.Pages)
}

func TestGenerator_RunErrors(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&Collection{Name: "norender", Source: &stubSource{coll: brothers()}}))
	gen := New(reg)

	_, err := gen.Run(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrCollectionNotFound)

	_, err = gen.Run(context.Background(), "norender")
	assert.ErrorContains(t, err, "renderer is required")
}

func TestGenerator_BuildWithStarlarkNamer(t *testing.T) {
	namer, err := starlark.NewNameEvaluator(`slug(page["name"]) + ".html"`, 2)
	require.NoError(t, err)

	reg := NewRegistry()
	require.NoError(t, reg.Register(&Collection{Name: "brothers", Source: &stubSource{coll: brothers()}, Namer: namer}))

	pages, err := New(reg).Build(context.Background(), "brothers")
	require.NoError(t, err)

	names := make([]string, len(pages))
	for i, p := range pages {
		names[i] = p.Name
		assert.Equal(t, i, p.Index)
	}
	assert.Equal(t, []string{"dmitri.html", "ivan.html", "alexei.html"}, names)
}

func TestGenerator_BuildDuplicateNames(t *testing.T) {
	namer, err := starlark.NewNameEvaluator(`"same.html"`, 1)
	require.NoError(t, err)

	reg := NewRegistry()
	require.NoError(t, reg.Register(&Collection{Name: "brothers", Source: &stubSource{coll: brothers()}, Namer: namer}))

	_, err = New(reg).Build(context.Background(), "brothers")
	assert.ErrorContains(t, err, "both map to")
}

func TestGenerator_Explain(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&Collection{Name: "brothers", Source: &stubSource{coll: brothers()}}))

	gen := New(reg, WithBuilder(forest.New(forest.WithStrategy(forest.StrategyFlat))))
	pages, provenance, err := gen.Explain(context.Background(), "brothers")
	require.NoError(t, err)
	require.Len(t, pages, 3)
	require.Len(t, provenance, 3)

	assert.Equal(t, 0, provenance[0]["surname"])
	assert.Equal(t, 1, provenance[0]["name"])
	assert.Equal(t, 1, provenance[2]["father"])
}

func TestGenerator_EndToEnd(t *testing.T) {
	tmplDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.WriteFile(filepath.Join(tmplDir, "page.tmpl"),
		[]byte("{{.name}} {{.surname}}, son of {{.father}}\n"), 0o644))

	renderer, err := render.New(render.Config{TemplatesDir: tmplDir, OutputDir: outDir})
	require.NoError(t, err)
	namer, err := starlark.NewNameEvaluator(`"%s.txt" % slug(page["name"])`, 1)
	require.NoError(t, err)

	reg := NewRegistry()
	require.NoError(t, reg.Register(&Collection{
		Name:     "brothers",
		Source:   &stubSource{coll: brothers()},
		Renderer: renderer,
		Namer:    namer,
	}))

	_, err = New(reg, WithBuilder(forest.New(forest.WithWorkers(4)))).Run(context.Background(), "brothers")
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(outDir, "alexei.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Alexei Karamazov, son of Fyodor Pavlovich\n", string(got))

	got, err = os.ReadFile(filepath.Join(outDir, "ivan.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Ivan Karamazov, son of Fyodor\n", string(got))
}
