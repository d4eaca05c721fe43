package mtmstats

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/mtmstats/blobstore"
	"github.com/hupe1980/mtmstats/resource"
	"github.com/hupe1980/mtmstats/rows"
	"github.com/hupe1980/mtmstats/rowstore"
	"github.com/hupe1980/mtmstats/testutil"
)

var scenario = rows.Relation[string, string]{
	{A: "a1", B: "b1"},
	{A: "a1", B: "b2"},
	{A: "a1", B: "b3"},
	{A: "a2", B: "b1"},
	{A: "a2", B: "b2"},
	{A: "a3", B: "b3"},
	{A: "a4", B: "b9"},
}

func TestStats_Scenario(t *testing.T) {
	ctx := context.Background()

	for _, kind := range []rows.Kind{rows.KindSparse, rows.KindDense, rows.KindRoaring} {
		t.Run(kind.String(), func(t *testing.T) {
			base, counts, err := Stats(ctx, scenario, WithKind(kind))
			require.NoError(t, err)

			assert.Equal(t, map[string]uint64{"a1": 3, "a2": 2, "a3": 1, "a4": 1}, base)
			assert.Equal(t, map[[2]string]Counts{
				{"a1", "a2"}: {Intersection: 2, Union: 3},
				{"a1", "a3"}: {Intersection: 1, Union: 3},
			}, counts)
		})
	}
}

func TestStats_Options(t *testing.T) {
	ctx := context.Background()

	t.Run("Cutoff", func(t *testing.T) {
		_, counts, err := Stats(ctx, scenario, WithCutoff(1))
		require.NoError(t, err)
		assert.Equal(t, map[[2]string]Counts{{"a1", "a2"}: {Intersection: 2, Union: 3}}, counts)
	})

	t.Run("Mirrored", func(t *testing.T) {
		_, counts, err := Stats(ctx, scenario, WithUpperOnly(false))
		require.NoError(t, err)
		assert.Len(t, counts, 4)
		assert.Equal(t, counts[[2]string{"a1", "a2"}], counts[[2]string{"a2", "a1"}])
	})

	t.Run("Indices", func(t *testing.T) {
		_, counts, err := Stats(ctx, scenario, WithIndices(1, 2, 3))
		require.NoError(t, err)
		assert.Empty(t, counts)
	})

	t.Run("StartCol", func(t *testing.T) {
		_, counts, err := Stats(ctx, scenario, WithStartCol(2))
		require.NoError(t, err)
		assert.Equal(t, map[[2]string]Counts{{"a1", "a3"}: {Intersection: 1, Union: 3}}, counts)
	})
}

func TestJaccard(t *testing.T) {
	base, j, err := Jaccard(context.Background(), scenario, WithDense(true))
	require.NoError(t, err)
	assert.Len(t, base, 4)
	assert.InDelta(t, 2.0/3.0, j[[2]string{"a1", "a2"}], 1e-12)
	assert.InDelta(t, 1.0/3.0, j[[2]string{"a1", "a3"}], 1e-12)
	assert.Zero(t, Counts{}.Jaccard())
}

func TestPrepare_InvalidConfig(t *testing.T) {
	ctx := context.Background()

	cases := map[string]Option{
		"ChunkLength":   WithChunkLength(0),
		"Kind":          WithKind(rows.Kind(42)),
		"StartCol":      WithStartCol(-1),
		"PartitionSize": WithPartitionSize(0),
		"Workers":       WithWorkers(-2),
		"MemoryLimit":   WithMemoryLimit(-1),
	}
	for name, opt := range cases {
		t.Run(name, func(t *testing.T) {
			metrics := &BasicMetricsCollector{}
			_, err := Prepare(ctx, scenario, opt, WithMetricsCollector(metrics))
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Zero(t, metrics.GetStats().BuildCount, "no row may be built")
		})
	}
}

func TestPrepare_IndexOutOfRange(t *testing.T) {
	_, err := Prepare(context.Background(), scenario, WithIndices(0, 4))

	var oor *ErrIndexOutOfRange
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, 4, oor.Index)
	assert.Equal(t, 4, oor.Len)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestPrepared_Lookups(t *testing.T) {
	p, err := Prepare(context.Background(), scenario)
	require.NoError(t, err)

	assert.Equal(t, rows.Set[string]{"a1", "a2", "a3", "a4"}, p.SetA())
	assert.Equal(t, rows.Set[string]{"b1", "b2", "b3", "b9"}, p.SetB())
	assert.Equal(t, []uint64{3, 2, 1, 1}, p.Degrees())
	assert.Equal(t, 4, p.Rows().Len())
	assert.Same(t, p.Rows(), p.Table().Rows)

	d, ok := p.Degree("a2")
	require.True(t, ok)
	assert.Equal(t, uint64(2), d)

	_, ok = p.Degree("zz")
	assert.False(t, ok)

	pair := Pair{I: 0, J: 2, Intersection: 1}
	assert.Equal(t, [2]string{"a1", "a3"}, p.Keys(pair))
	assert.Equal(t, Counts{Intersection: 1, Union: 3}, p.Counts(pair))
}

func TestPrepared_PartitionsMatchPairs(t *testing.T) {
	ctx := context.Background()
	rel := testutil.NewRNG(11).GenerateRelation(testutil.RelationConfig{
		SizeA:       120,
		SizeB:       400,
		Connections: 2500,
	})

	for _, size := range []int{1, 7, 64, 1000} {
		p, err := Prepare(ctx, rel, WithPartitionSize(size), WithChunkLength(2))
		require.NoError(t, err)

		want, err := p.Collect(ctx)
		require.NoError(t, err)

		parts, err := p.Partitions(ctx)
		require.NoError(t, err)

		var got []Pair
		for part := range parts {
			assert.LessOrEqual(t, part.Len(), size)
			for pair, err := range part.Pairs {
				require.NoError(t, err)
				got = append(got, pair)
			}
		}
		assert.Equal(t, want, got, "partition size %d", size)
	}
}

func TestPrepared_WorkersEquivalent(t *testing.T) {
	ctx := context.Background()
	rel := testutil.NewRNG(5).UniformRelation(150, 300, 2000)

	seq, err := Prepare(ctx, rel)
	require.NoError(t, err)
	want, err := seq.Collect(ctx)
	require.NoError(t, err)

	par, err := Prepare(ctx, rel, WithWorkers(4), WithMemoryLimit(64<<20))
	require.NoError(t, err)
	got, err := par.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestPrepared_MemoryLimitExceeded(t *testing.T) {
	ctx := context.Background()
	rel := testutil.NewRNG(5).UniformRelation(100, 20, 1500)

	p, err := Prepare(ctx, rel, WithWorkers(2), WithMemoryLimit(64))
	require.NoError(t, err)

	_, err = p.Collect(ctx)
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
}

func TestPrepared_Metrics(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}

	p, err := Prepare(ctx, scenario, WithMetricsCollector(metrics), WithPartitionSize(2))
	require.NoError(t, err)

	_, err = p.Collect(ctx)
	require.NoError(t, err)

	parts, err := p.Partitions(ctx)
	require.NoError(t, err)
	for part := range parts {
		for range part.Pairs {
		}
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(4), stats.RowsBuilt)
	assert.Equal(t, int64(1), stats.PairsCount)
	assert.Equal(t, int64(2), stats.PairsEmitted)
	assert.Equal(t, int64(2), stats.PartitionCount)
	assert.Equal(t, int64(2), stats.PartitionPairs)
}

func TestPrepared_ContextCanceled(t *testing.T) {
	p, err := Prepare(context.Background(), scenario)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	rel := testutil.NewRNG(9).GenerateRelation(testutil.RelationConfig{
		SizeA:       60,
		SizeB:       500,
		Connections: 1500,
	})

	for _, kind := range []rows.Kind{rows.KindSparse, rows.KindDense, rows.KindRoaring} {
		t.Run(kind.String(), func(t *testing.T) {
			store := blobstore.NewLocalStore(t.TempDir())

			p, err := Prepare(ctx, rel, WithKind(kind), WithChunkLength(3), WithCompression(rowstore.CompressionZSTD))
			require.NoError(t, err)
			require.NoError(t, p.Save(ctx, store, "rel"))

			loaded, err := Load[string, string](ctx, store, "rel", WithLogger(NewTextLogger(slog.LevelError)))
			require.NoError(t, err)
			assert.Equal(t, kind, loaded.Rows().Kind())
			assert.Equal(t, p.Degrees(), loaded.Degrees())

			base, counts, err := p.Stats(ctx)
			require.NoError(t, err)
			lbase, lcounts, err := loaded.Stats(ctx)
			require.NoError(t, err)
			assert.Equal(t, base, lbase)
			assert.Equal(t, counts, lcounts)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	_, err := Load[string, string](ctx, store, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	p, err := Prepare(ctx, scenario)
	require.NoError(t, err)
	require.NoError(t, p.Save(ctx, store, "s"))

	_, err = Load[string, string](ctx, store, "s", WithIndices(9))
	var oor *ErrIndexOutOfRange
	assert.ErrorAs(t, err, &oor)

	_, err = Load[int, string](ctx, store, "s")
	assert.ErrorIs(t, err, rowstore.ErrIncompatibleFormat)
}

func TestPrepared_EmptyRelation(t *testing.T) {
	base, counts, err := Stats(context.Background(), rows.Relation[int, int]{})
	require.NoError(t, err)
	assert.Empty(t, base)
	assert.Empty(t, counts)
}
