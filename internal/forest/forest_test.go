package forest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/pagegen/internal/merge"
	"github.com/leapstack-labs/pagegen/internal/testutil"
	"github.com/leapstack-labs/pagegen/pkg/core"
)

// builders returns one builder per strategy/concurrency combination so
// every property is checked against all of them.
func builders(t *testing.T) map[string]*Builder {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	return map[string]*Builder{
		"shared":          New(WithLogger(logger)),
		"flat":            New(WithLogger(logger), WithStrategy(StrategyFlat)),
		"shared parallel": New(WithLogger(logger), WithWorkers(4)),
		"flat parallel":   New(WithLogger(logger), WithStrategy(StrategyFlat), WithWorkers(4)),
	}
}

func TestBuilder_Cascade_Brothers(t *testing.T) {
	base := core.Record{"category": "brothers", "garment": "plain"}
	overrides := []core.Record{
		{"name": "Binyomin"},
		{"name": "Yosef", "garment": "colorful"},
	}
	want := []core.Record{
		{"category": "brothers", "garment": "plain", "name": "Binyomin"},
		{"category": "brothers", "garment": "colorful", "name": "Yosef"},
	}

	for name, b := range builders(t) {
		t.Run(name, func(t *testing.T) {
			got, err := b.Cascade(context.Background(), base, overrides)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestBuilder_Cascade_Properties(t *testing.T) {
	base := core.Record{"category": "brothers", "garment": "plain", "tribe": true}
	tribes := []string{
		"Reuven", "Shimon", "Levi", "Yehuda", "Dan", "Naftuli",
		"Gad", "Asher", "Yissoschor", "Zevulun", "Yosef", "Binyomin",
	}
	overrides := make([]core.Record, len(tribes))
	for i, n := range tribes {
		overrides[i] = core.Record{"name": n, fmt.Sprintf("only_%d", i): i}
		if i%3 == 0 {
			overrides[i]["garment"] = "colorful"
		}
	}

	for name, b := range builders(t) {
		t.Run(name, func(t *testing.T) {
			got, err := b.Cascade(context.Background(), base, overrides)
			require.NoError(t, err)
			require.Len(t, got, len(overrides))

			for i, composite := range got {
				// order
				assert.Equal(t, tribes[i], composite["name"])

				// override precedence and preservation
				for k, v := range base {
					if ov, ok := overrides[i][k]; ok {
						assert.Equal(t, ov, composite[k], "page %d key %q", i, k)
					} else {
						assert.Equal(t, v, composite[k], "page %d key %q", i, k)
					}
				}

				// independence: no sibling-only key leaks in
				for j := range overrides {
					if j == i {
						continue
					}
					assert.NotContains(t, composite, fmt.Sprintf("only_%d", j))
				}
			}
		})
	}
}

func TestBuilder_Cascade_ShallowReplace(t *testing.T) {
	base := core.Record{"garment": map[string]any{"color": "plain", "size": "M"}}
	overrides := []core.Record{{"garment": map[string]any{"color": "colorful"}}}

	got, err := New().Cascade(context.Background(), base, overrides)
	require.NoError(t, err)
	assert.Equal(t, []core.Record{{"garment": map[string]any{"color": "colorful"}}}, got)
}

func TestBuilder_Cascade_Empty(t *testing.T) {
	for name, b := range builders(t) {
		t.Run(name, func(t *testing.T) {
			got, err := b.Cascade(context.Background(), core.Record{"category": "brothers"}, nil)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestBuilder_Cascade_NilBase(t *testing.T) {
	got, err := New().Cascade(context.Background(), nil, []core.Record{{"name": "Dan"}})
	require.NoError(t, err)
	assert.Equal(t, []core.Record{{"name": "Dan"}}, got)
}

func TestBuilder_Cascade_DoesNotModifyInputs(t *testing.T) {
	base := core.Record{"category": "brothers", "garment": "plain"}
	overrides := []core.Record{{"garment": "colorful"}, {"name": "Gad"}}

	_, err := New(WithWorkers(2)).Cascade(context.Background(), base, overrides)
	require.NoError(t, err)

	assert.Equal(t, core.Record{"category": "brothers", "garment": "plain"}, base)
	assert.Equal(t, []core.Record{{"garment": "colorful"}, {"name": "Gad"}}, overrides)
}

func TestBuilder_Cascade_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for name, b := range builders(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Cascade(ctx, core.Record{}, []core.Record{{"a": 1}, {"b": 2}})
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestBuilder_UnknownStrategy(t *testing.T) {
	_, err := New(WithStrategy("deep")).Cascade(context.Background(), core.Record{}, []core.Record{{}})
	assert.Error(t, err)
}

func TestBuilder_Explain(t *testing.T) {
	base := core.Record{"category": "brothers", "garment": "plain"}
	overrides := []core.Record{
		{"name": "Binyomin"},
		{"name": "Yosef", "garment": "colorful"},
	}

	provs, err := New().Explain(context.Background(), base, overrides)
	require.NoError(t, err)
	assert.Equal(t, []merge.Provenance{
		{"category": 0, "garment": 0, "name": 1},
		{"category": 0, "garment": 1, "name": 1},
	}, provs)
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{in: "", want: StrategyShared},
		{in: "shared", want: StrategyShared},
		{in: "flat", want: StrategyFlat},
		{in: "deep", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
