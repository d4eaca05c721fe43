package benchmark_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/hupe1980/mtmstats"
	"github.com/hupe1980/mtmstats/blobstore"
	"github.com/hupe1980/mtmstats/rows"
	"github.com/hupe1980/mtmstats/testutil"
)

var benchRelation = testutil.NewRNG(1).GenerateRelation(testutil.RelationConfig{
	SizeA:       2000,
	SizeB:       50000,
	Connections: 60000,
})

func drain(b *testing.B, p *mtmstats.Prepared[string, string]) int {
	b.Helper()
	seq, err := p.Pairs(context.Background())
	if err != nil {
		b.Fatal(err)
	}
	n := 0
	for _, err := range seq {
		if err != nil {
			b.Fatal(err)
		}
		n++
	}
	return n
}

func BenchmarkPrepare(b *testing.B) {
	for _, kind := range []rows.Kind{rows.KindSparse, rows.KindDense, rows.KindRoaring} {
		b.Run(kind.String(), func(b *testing.B) {
			b.ReportAllocs()
			for b.Loop() {
				if _, err := mtmstats.Prepare(context.Background(), benchRelation, mtmstats.WithKind(kind)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkPairs_Kind(b *testing.B) {
	for _, kind := range []rows.Kind{rows.KindSparse, rows.KindDense, rows.KindRoaring} {
		b.Run(kind.String(), func(b *testing.B) {
			p, err := mtmstats.Prepare(context.Background(), benchRelation, mtmstats.WithKind(kind))
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			for b.Loop() {
				drain(b, p)
			}
		})
	}
}

func BenchmarkPairs_ChunkLength(b *testing.B) {
	for _, cl := range []int{1, 2, 4, 16} {
		b.Run(fmt.Sprintf("chunk=%d", cl), func(b *testing.B) {
			p, err := mtmstats.Prepare(context.Background(), benchRelation, mtmstats.WithChunkLength(cl))
			if err != nil {
				b.Fatal(err)
			}
			for b.Loop() {
				drain(b, p)
			}
		})
	}
}

func BenchmarkPairs_Workers(b *testing.B) {
	for _, w := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers=%d", w), func(b *testing.B) {
			p, err := mtmstats.Prepare(context.Background(), benchRelation, mtmstats.WithWorkers(w))
			if err != nil {
				b.Fatal(err)
			}
			for b.Loop() {
				drain(b, p)
			}
		})
	}
}

func BenchmarkSaveLoad(b *testing.B) {
	ctx := context.Background()
	p, err := mtmstats.Prepare(ctx, benchRelation)
	if err != nil {
		b.Fatal(err)
	}
	store := blobstore.NewMemoryStore()

	b.ReportAllocs()
	for b.Loop() {
		if err := p.Save(ctx, store, "bench"); err != nil {
			b.Fatal(err)
		}
		if _, err := mtmstats.Load[string, string](ctx, store, "bench"); err != nil {
			b.Fatal(err)
		}
	}
}
