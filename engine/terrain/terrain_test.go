package terrain

import (
	"testing"

	"github.com/Carmen-Shannon/hexa/engine/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultParams = Params{Size: 5, Seed: 42, Elevation: 0.1}

func TestGenerate_Deterministic(t *testing.T) {
	for _, policy := range []Policy{PolicyRing, PolicyLayered} {
		for _, kind := range []NoiseKind{NoisePerlin, NoiseSimplex} {
			gen := NewGenerator(WithPolicy(policy), WithNoise(kind))
			a, err := gen.Generate(Params{Size: 9, Seed: 7, Elevation: 1.3})
			require.NoError(t, err)
			b, err := NewGenerator(WithPolicy(policy), WithNoise(kind)).Generate(Params{Size: 9, Seed: 7, Elevation: 1.3})
			require.NoError(t, err)
			assert.Equal(t, a, b, "policy %s noise %s", policy, kind)
		}
	}
}

func TestGenerate_DefaultScenario(t *testing.T) {
	tiles, err := NewGenerator().Generate(defaultParams)
	require.NoError(t, err)
	require.NotEmpty(t, tiles)
	for _, tile := range tiles {
		assert.Less(t, tile.Position[0], uint32(5))
		assert.Less(t, tile.Position[1], uint32(5))
	}
}

func TestGenerate_ZeroSize(t *testing.T) {
	_, err := NewGenerator().Generate(Params{Size: 0, Seed: 1, Elevation: 1})
	assert.ErrorIs(t, err, ErrZeroSize)
}

func TestGenerate_UnknownNoise(t *testing.T) {
	_, err := NewGenerator(WithNoise("value")).Generate(defaultParams)
	assert.Error(t, err)
}

func TestGenerate_RingFootprint(t *testing.T) {
	const n = 12
	tiles, err := NewGenerator(WithPolicy(PolicyRing)).Generate(Params{Size: n, Seed: 3, Elevation: 0.5})
	require.NoError(t, err)

	seen := map[[2]uint32]bool{}
	for _, tile := range tiles {
		dx := float64(tile.Position[0]) - n/2.0
		dy := float64(tile.Position[1]) - n/2.0
		d2 := dx*dx + dy*dy
		require.Less(t, d2, float64(n*n)/4, "tile %v outside the outer ring", tile.Position)
		if d2 < float64(n*n)/16 {
			assert.Equal(t, LayerSnowHat, tile.Hat)
			assert.Equal(t, LayerSnowButt, tile.Butt)
			assert.Equal(t, float32(1.7), tile.ButtSize)
		} else {
			assert.Equal(t, LayerIceHat, tile.Hat)
			assert.Equal(t, float32(1.0), tile.ButtSize)
		}
		assert.False(t, seen[tile.Position], "duplicate tile at %v", tile.Position)
		seen[tile.Position] = true
	}
	assert.Less(t, len(tiles), n*n)
	assert.True(t, seen[[2]uint32{n / 2, n / 2}])
}

func TestGenerate_RingOrderIsColumnMajor(t *testing.T) {
	tiles, err := NewGenerator().Generate(Params{Size: 8, Seed: 1, Elevation: 1})
	require.NoError(t, err)
	for i := 1; i < len(tiles); i++ {
		prev, cur := tiles[i-1].Position, tiles[i].Position
		assert.True(t, prev[0] < cur[0] || (prev[0] == cur[0] && prev[1] < cur[1]), "%v before %v", prev, cur)
	}
}

func TestGenerate_LayeredEmitsEveryCell(t *testing.T) {
	const n = 6
	p := Params{Size: n, Seed: 42, Elevation: 2}
	tiles, err := NewGenerator(WithPolicy(PolicyLayered)).Generate(p)
	require.NoError(t, err)

	base := map[[2]uint32]geometry.Tile{}
	caps := 0
	for _, tile := range tiles {
		if tile.Hat == LayerSnowHat {
			base[tile.Position] = tile
			continue
		}
		caps++
		b, ok := base[tile.Position]
		require.True(t, ok, "cap at %v emitted before its base", tile.Position)
		sample := b.ButtSize - 0.3
		assert.Greater(t, sample, p.Elevation/2)
		assert.InDelta(t, sample*(sample/1.5)*0.4, tile.ButtSize, 1e-5)
	}
	assert.Len(t, base, n*n)
	assert.Equal(t, len(tiles), n*n+caps)
}

func TestGenerate_LayeredSparseColumns(t *testing.T) {
	p := Params{Size: 10, Seed: 5, Elevation: 1}
	full, err := NewGenerator(WithPolicy(PolicyLayered)).Generate(p)
	require.NoError(t, err)
	sparse, err := NewGenerator(WithPolicy(PolicyLayered), WithSparseColumns(true)).Generate(p)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(sparse), len(full))
	for _, tile := range sparse {
		if tile.Hat == LayerSnowHat {
			assert.Greater(t, tile.ButtSize, float32(0.3))
		}
	}
}

func TestGenerate_SeedChangesOutput(t *testing.T) {
	gen := NewGenerator(WithPolicy(PolicyLayered))
	a, err := gen.Generate(Params{Size: 8, Seed: 1, Elevation: 1})
	require.NoError(t, err)
	b, err := gen.Generate(Params{Size: 8, Seed: 2, Elevation: 1})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy(" Layered ")
	require.NoError(t, err)
	assert.Equal(t, PolicyLayered, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyRing, p)

	_, err = ParsePolicy("spiral")
	assert.Error(t, err)
}

func TestParseNoiseKind(t *testing.T) {
	k, err := ParseNoiseKind("SIMPLEX")
	require.NoError(t, err)
	assert.Equal(t, NoiseSimplex, k)

	_, err = ParseNoiseKind("worley")
	assert.Error(t, err)
}
