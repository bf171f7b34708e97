// internal/planner/planner_test.go
package planner

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/register-poller/internal/schema"
)

func TestPlan_CoversClusteredSet(t *testing.T) {
	p, err := Plan([]schema.Address{0x12, 0x0E, 0x11})
	require.NoError(t, err)

	assert.Equal(t, ReadPlan{Start: 0x0E, Count: 5}, p)
	assert.Equal(t, schema.Address(0x12), p.End())
}

func TestPlan_Single(t *testing.T) {
	p, err := Plan([]schema.Address{0x40})
	require.NoError(t, err)
	assert.Equal(t, ReadPlan{Start: 0x40, Count: 1}, p)
}

func TestPlan_Empty(t *testing.T) {
	_, err := Plan(nil)
	assert.True(t, errors.Is(err, ErrEmptyRequest))

	_, err = Split([]schema.Address{}, DefaultLimits)
	assert.True(t, errors.Is(err, ErrEmptyRequest))
}

func TestPlan_FullAddressSpace(t *testing.T) {
	p, err := Plan([]schema.Address{0, 0xFFFF})
	require.NoError(t, err)
	assert.Equal(t, 65536, p.Count)
	assert.Equal(t, schema.Address(0xFFFF), p.End())
}

func randomSet(r *rand.Rand) []schema.Address {
	n := 1 + r.Intn(20)
	base := r.Intn(60000)
	out := make([]schema.Address, n)
	for i := range out {
		out[i] = schema.Address(base + r.Intn(200))
	}
	return out
}

func TestPlan_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		addrs := randomSet(r)

		p, err := Plan(addrs)
		require.NoError(t, err)

		lo, hi := addrs[0], addrs[0]
		for _, a := range addrs {
			if a < lo {
				lo = a
			}
			if a > hi {
				hi = a
			}
		}

		assert.Equal(t, lo, p.Start)
		assert.Equal(t, int(hi)-int(lo)+1, p.Count)
		assert.Equal(t, hi, p.End())

		for _, a := range addrs {
			off, err := p.Offset(a)
			require.NoError(t, err)
			assert.True(t, off >= 0 && off < p.Count)
		}

		// order independence
		shuffled := append([]schema.Address(nil), addrs...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		p2, err := Plan(shuffled)
		require.NoError(t, err)
		assert.Equal(t, p, p2)
	}
}

func TestSplit_ClusteredIsSinglePlan(t *testing.T) {
	reg, err := schema.Default()
	require.NoError(t, err)

	addrs := reg.Addresses()
	want, err := Plan(addrs)
	require.NoError(t, err)

	got, err := Split(addrs, DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, []ReadPlan{want}, got)
	assert.Equal(t, ReadPlan{Start: 0x03, Count: 69}, want)

	got, err = Split([]schema.Address{0x0E, 0x11, 0x12}, DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, []ReadPlan{{Start: 0x0E, Count: 5}}, got)
}

func TestSplit_ZeroLimitsMatchesPlan(t *testing.T) {
	addrs := []schema.Address{10, 5000, 3}
	want, err := Plan(addrs)
	require.NoError(t, err)

	got, err := Split(addrs, Limits{})
	require.NoError(t, err)
	assert.Equal(t, []ReadPlan{want}, got)
}

func TestSplit_BreaksOnGap(t *testing.T) {
	got, err := Split([]schema.Address{1000, 2, 3, 1001, 10}, Limits{MaxGap: 32})
	require.NoError(t, err)

	assert.Equal(t, []ReadPlan{
		{Start: 2, Count: 9},
		{Start: 1000, Count: 2},
	}, got)
}

func TestSplit_BreaksOnCount(t *testing.T) {
	got, err := Split([]schema.Address{0, 100, 200, 201}, Limits{MaxGap: 200, MaxCount: 125})
	require.NoError(t, err)

	assert.Equal(t, []ReadPlan{
		{Start: 0, Count: 101},
		{Start: 200, Count: 2},
	}, got)
}

func TestSplit_CoversEveryAddressOnce(t *testing.T) {
	r := rand.New(rand.NewSource(11))

	for i := 0; i < 200; i++ {
		addrs := make([]schema.Address, 1+r.Intn(40))
		for j := range addrs {
			addrs[j] = schema.Address(r.Intn(2000))
		}

		plans, err := Split(addrs, DefaultLimits)
		require.NoError(t, err)

		for _, p := range plans {
			assert.LessOrEqual(t, p.Count, MaxReadCount)
		}
		for _, a := range addrs {
			n := 0
			for _, p := range plans {
				if p.Contains(a) {
					n++
				}
			}
			assert.Equal(t, 1, n, "address %s", a)
		}
	}
}

func TestDemux(t *testing.T) {
	plan := ReadPlan{Start: 0x0E, Count: 5}
	words := []uint16{215, 1, 2, 40, 41}

	got, err := Demux(plan, words, []schema.Address{0x0E, 0x11, 0x12})
	require.NoError(t, err)
	assert.Equal(t, map[schema.Address]uint16{0x0E: 215, 0x11: 40, 0x12: 41}, got)
}

func TestDemux_InvariantViolations(t *testing.T) {
	plan := ReadPlan{Start: 0x0E, Count: 5}

	_, err := Demux(plan, []uint16{1, 2, 3, 4, 5}, []schema.Address{0x13})
	assert.True(t, errors.Is(err, ErrInternal))

	_, err = Demux(plan, []uint16{1, 2, 3, 4, 5}, []schema.Address{0x0D})
	assert.True(t, errors.Is(err, ErrInternal))

	_, err = Demux(plan, []uint16{1, 2}, []schema.Address{0x0E})
	assert.True(t, errors.Is(err, ErrInternal))
}
