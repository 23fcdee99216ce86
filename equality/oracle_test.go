package equality_test

import (
	"math"
	"testing"

	"github.com/on-the-ground/memo_ive_go/equality"
	"github.com/on-the-ground/memo_ive_go/params"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

type session struct {
	id int
}

func (*session) Stateful() {}

type tensor struct {
	shape []int
	data  []float64
}

func (t tensor) Shape() []int    { return t.shape }
func (t tensor) Flat() []float64 { return t.data }

func newTensor(shape []int, data ...float64) tensor {
	return tensor{shape: shape, data: data}
}

type basis struct {
	Name   string
	Coeffs []float64
}

func TestSameValue_Identity(t *testing.T) {
	s := &session{id: 1}
	assert.True(t, equality.SameValue(s, s))
	assert.True(t, equality.SameValue(nil, nil))

	nan := []float64{math.NaN()}
	assert.True(t, equality.SameValue(nan, nan), "same backing array short-circuits")
	assert.False(t, equality.SameValue(nan, []float64{math.NaN()}))
}

func TestSameValue_Scalars(t *testing.T) {
	assert.True(t, equality.SameValue("6-31g", "6-31g"))
	assert.False(t, equality.SameValue("6-31g", "sto-3g"))
	assert.True(t, equality.SameValue(3, int64(3)))
	assert.True(t, equality.SameValue(uint8(7), 7))
	assert.False(t, equality.SameValue(-1, uint64(math.MaxUint64)))
	assert.False(t, equality.SameValue(3, 4))
	assert.True(t, equality.SameValue(true, true))
	assert.False(t, equality.SameValue("1", 1))
	assert.False(t, equality.SameValue(nil, 0))
}

func TestSameValue_StatefulNeverEqualUnlessIdentical(t *testing.T) {
	a, b := &session{id: 1}, &session{id: 1}
	assert.False(t, equality.SameValue(a, b))
	assert.False(t, equality.SameValue(a, 1))
	assert.False(t, equality.SameValue([]any{a}, []any{b}))
	assert.True(t, equality.SameValue([]any{a}, []any{a}))
}

func TestSameValue_NumericTolerance(t *testing.T) {
	a := []float64{1, 2, 3}
	assert.True(t, equality.SameValue(a, []float64{1 + 1e-9, 2 - 1e-9, 3}))
	assert.False(t, equality.SameValue(a, []float64{1, 2, 3 + 1e-6}))
	assert.False(t, equality.SameValue(a, []float64{1, 2}))
	assert.True(t, equality.SameValue(1.0, 1))
	assert.True(t, equality.SameValue(2.5, 2.5+5e-9))
	assert.False(t, equality.SameValue(1e10, 1e10+1), "no relative tolerance")
	assert.True(t, equality.SameValue(complex(1, 1), complex(1, 1+1e-10)))
	assert.True(t, equality.SameValue(math.Inf(1), math.Inf(1)))
	assert.False(t, equality.SameValue(math.Inf(1), math.Inf(-1)))
	assert.False(t, equality.SameValue(math.NaN(), math.NaN()))
}

func TestSameValue_LargeIntegers(t *testing.T) {
	const big = int64(1) << 53
	assert.False(t, equality.SameValue(big, big+1), "scalar integers are exact")
	assert.False(t, equality.SameValue(uint64(math.MaxUint64), uint64(math.MaxUint64-1)))
	assert.True(t, equality.SameValue([]int64{big, 0}, []int64{big + 1, 0}), "array elements are widened to float64")
	assert.False(t, equality.SameValue([]int64{1 << 20}, []int64{1<<20 + 1}))
}

func TestSameValue_Shape(t *testing.T) {
	row := [][]float64{{1, 2}}
	col := [][]float64{{1}, {2}}
	assert.False(t, equality.SameValue(row, col))
	assert.False(t, equality.SameValue(row, []float64{1, 2}))
	assert.True(t, equality.SameValue(row, [][]int{{1, 2}}))
	assert.True(t, equality.SameValue([3]float64{1, 2, 3}, []float64{1, 2, 3}))
	assert.True(t, equality.SameValue([]float64{}, []float64{}))
	assert.False(t, equality.SameValue(1.0, []float64{1}))
}

func TestSameValue_NDArrayAndMatrix(t *testing.T) {
	a := newTensor([]int{2, 2}, 1, 0, 0, 1)
	assert.True(t, equality.SameValue(a, newTensor([]int{2, 2}, 1, 0, 0, 1+1e-9)))
	assert.False(t, equality.SameValue(a, newTensor([]int{4}, 1, 0, 0, 1)))

	eye := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	assert.True(t, equality.SameValue(eye, mat.NewDense(2, 2, []float64{1, 0, 0, 1})))
	assert.True(t, equality.SameValue(eye, a))
	assert.True(t, equality.SameValue(eye, [][]float64{{1, 0}, {0, 1}}))
	assert.False(t, equality.SameValue(eye, mat.NewDense(1, 4, []float64{1, 0, 0, 1})))

	bad := newTensor([]int{3}, 1, 2)
	assert.False(t, equality.SameValue(bad, newTensor([]int{3}, 1, 2)), "inconsistent shape is never equal")
}

func TestSameValue_Structures(t *testing.T) {
	assert.True(t, equality.SameValue(
		basis{Name: "6-31g", Coeffs: []float64{0.5}},
		basis{Name: "6-31g", Coeffs: []float64{0.5 + 1e-12}},
	))
	assert.False(t, equality.SameValue(
		basis{Name: "6-31g", Coeffs: []float64{0.5}},
		basis{Name: "sto-3g", Coeffs: []float64{0.5}},
	))
	assert.True(t, equality.SameValue(&basis{Name: "x"}, &basis{Name: "x"}))

	assert.True(t, equality.SameValue(
		map[string]any{"atom": "He 0 0 1", "mesh": []int{10, 10, 10}},
		map[string]any{"atom": "He 0 0 1", "mesh": []int{10, 10, 10}},
	))
	assert.False(t, equality.SameValue(
		map[string]any{"atom": "He"},
		map[string]any{"atoms": "He"},
	))
	assert.True(t, equality.SameValue([]any{"He", 1.0}, []any{"He", 1.0 + 1e-10}))
	assert.False(t, equality.SameValue([]any{"He", 1.0}, []any{"He"}))
}

func TestSameValue_UncomparableKinds(t *testing.T) {
	f := func() {}
	assert.False(t, equality.SameValue(f, f))
	ch := make(chan int)
	assert.True(t, equality.SameValue(ch, ch))
	assert.False(t, equality.SameValue(ch, make(chan int)))
}

func TestSameValue_CyclicTerminates(t *testing.T) {
	type node struct {
		Next *node
		V    float64
	}
	a := &node{V: 1}
	a.Next = a
	b := &node{V: 1}
	b.Next = b
	assert.False(t, equality.SameValue(a, b))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, equality.KindScalar, equality.Classify("x"))
	assert.Equal(t, equality.KindScalar, equality.Classify(3))
	assert.Equal(t, equality.KindScalar, equality.Classify(nil))
	assert.Equal(t, equality.KindIdentity, equality.Classify(&session{}))
	assert.Equal(t, equality.KindIdentity, equality.Classify(session{}))
	assert.Equal(t, equality.KindArray, equality.Classify(1.5))
	assert.Equal(t, equality.KindArray, equality.Classify([]int{1}))
	assert.Equal(t, "identity", equality.KindIdentity.String())
}

func TestAllClose(t *testing.T) {
	assert.True(t, equality.AllClose([]int{1, 2}, []float64{1, 2}))
	assert.False(t, equality.AllClose("a", "a"))
	assert.True(t, equality.Close(1, 1+1e-9))
	assert.False(t, equality.Close(1, 1+1e-7))
}

func TestSameArgs(t *testing.T) {
	a := params.Args{"mesh": []int{10, 10, 10}, "max_memory": 2000}
	b := params.Args{"mesh": []int{10, 10, 10}, "max_memory": 4000}

	assert.False(t, equality.SameArgs(a, b, nil))
	assert.True(t, equality.SameArgs(a, b, equality.NewSet("max_memory")))

	c := params.Args{"mesh": []int{10, 10, 10}}
	assert.False(t, equality.SameArgs(a, c, nil), "missing key is not a wildcard")
	assert.False(t, equality.SameArgs(c, a, nil))
	assert.True(t, equality.SameArgs(a, c, equality.NewSet("max_memory")))
	assert.True(t, equality.SameArgs(params.Args{}, params.Args{}, nil))
}
