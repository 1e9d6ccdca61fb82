package simulate

import (
	"context"
	"fmt"
	"testing"
)

// to run: go test -bench=. ./internal/simulate -run ^$
func BenchmarkGenerate(b *testing.B) {
	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			cfg := testConfig()
			cfg.Workers = workers
			b.ReportAllocs()
			b.ResetTimer()
			for b.Loop() {
				if _, _, err := Generate(context.Background(), cfg); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
