package atlas

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"atlaspack/internal/packer"
)

func TestOptimize(t *testing.T) {
	start := []packer.Placement{{Width: 1, Height: 1}}

	tests := []struct {
		name       string
		candidates []int
		fits       map[int]bool
		wantSize   int
		wantTried  []int
	}{
		{
			name:       "shrinks to smallest fitting",
			candidates: []int{512, 256, 128},
			fits:       map[int]bool{256: true},
			wantSize:   256,
			wantTried:  []int{256, 128},
		},
		{
			name:       "keeps start when nothing smaller fits",
			candidates: []int{512, 256},
			fits:       map[int]bool{},
			wantSize:   512,
			wantTried:  []int{256},
		},
		{
			name:       "stops at first failure",
			candidates: []int{64, 128, 256},
			fits:       map[int]bool{256: true, 64: true},
			wantSize:   256,
			wantTried:  []int{256, 128},
		},
		{
			name:       "ignores larger and duplicate candidates",
			candidates: []int{1024, 256, 256, 512},
			fits:       map[int]bool{256: true},
			wantSize:   256,
			wantTried:  []int{256},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tried []int
			pack := func(size int) ([]packer.Placement, bool) {
				tried = append(tried, size)
				return []packer.Placement{{Width: size, Height: size}}, tt.fits[size]
			}
			size, pl, err := Optimize(context.Background(), 512, start, tt.candidates, pack)
			if err != nil {
				t.Fatal(err)
			}
			if size != tt.wantSize {
				t.Errorf("size = %d, want %d", size, tt.wantSize)
			}
			if !reflect.DeepEqual(tried, tt.wantTried) {
				t.Errorf("tried %v, want %v", tried, tt.wantTried)
			}
			if size == 512 && !reflect.DeepEqual(pl, start) {
				t.Errorf("placements replaced although start was kept")
			}
			if size != 512 && pl[0].Width != size {
				t.Errorf("placements do not belong to size %d", size)
			}
		})
	}
}

func TestOptimizeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	pack := func(size int) ([]packer.Placement, bool) {
		calls++
		cancel()
		return nil, true
	}
	size, _, err := Optimize(ctx, 1024, nil, []int{512, 256, 128}, pack)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if calls != 1 || size != 512 {
		t.Fatalf("calls = %d size = %d, want 1 and 512", calls, size)
	}
}
