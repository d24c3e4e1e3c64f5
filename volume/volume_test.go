package volume

import (
	"testing"

	"github.com/voxterra/voxterra/chunkgrid"
)

type constVolume struct{ v float32 }

func (c constVolume) Sample(x, y, z uint32) float32 { return c.v }

func TestSampleChunkAtCompressesUniformSign(t *testing.T) {
	size, err := chunkgrid.NewSize(2)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		v   float32
		tag Tag
	}{
		{0, AllZero},
		{1, AllPositive},
		{-1, AllNegative},
	}
	for _, tc := range cases {
		sc := SampleChunkAt(constVolume{tc.v}, size, [3]uint32{0, 0, 0}, 1)
		if sc.Tag != tc.tag {
			t.Errorf("value %v: tag = %v, want %v", tc.v, sc.Tag, tc.tag)
		}
		if sc.Values != nil {
			t.Errorf("value %v: expected compressed chunk to carry no dense array", tc.v)
		}
	}
}

func TestSampleChunkAtMixedCarriesEveryValue(t *testing.T) {
	size, err := chunkgrid.NewSize(2)
	if err != nil {
		t.Fatal(err)
	}
	sphere := NewSphere(3)
	sc := SampleChunkAt(sphere, size, [3]uint32{0, 0, 0}, 1)
	if sc.Tag != Mixed {
		t.Fatalf("expected Mixed, got %v", sc.Tag)
	}
	size.ForAllVoxels(func(x, y, z, index uint32) {
		want := sphere.Sample(x, y, z)
		got := sc.Sample(index)
		if got != want {
			t.Errorf("voxel (%d,%d,%d): sample=%v, want %v", x, y, z, got, want)
		}
	})
}

func TestSphereSignConvention(t *testing.T) {
	s := NewSphere(16)
	// Center of the sphere (8,8,8) is well inside: should be strongly positive.
	if v := s.Sample(8, 8, 8); v <= 0 {
		t.Errorf("center sample = %v, want > 0", v)
	}
	// Far outside the sphere: should be negative.
	if v := s.Sample(1000, 1000, 1000); v >= 0 {
		t.Errorf("far sample = %v, want < 0", v)
	}
}

func TestSumAddsComponents(t *testing.T) {
	a := constVolume{2}
	b := constVolume{3}
	sum := NewSum(a, b)
	if got := sum.Sample(0, 0, 0); got != 5 {
		t.Errorf("Sum.Sample = %v, want 5", got)
	}
}

func TestNoiseIsDeterministic(t *testing.T) {
	n := NewNoise(42, 0.5, 0.02, 0.5, 4)
	a := n.Sample(10, 20, 30)
	b := n.Sample(10, 20, 30)
	if a != b {
		t.Errorf("Noise.Sample not deterministic: %v != %v", a, b)
	}
	c := n.Sample(11, 20, 30)
	if a == c {
		t.Errorf("Noise.Sample identical at different positions: %v", a)
	}
}
