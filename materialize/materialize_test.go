package materialize_test

import (
	"iter"
	"slices"
	"testing"

	"github.com/on-the-ground/memo_ive_go/materialize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

type kblock struct {
	k    int
	data []float64
}

type lazyBlocks struct {
	calls *int
}

func (l lazyBlocks) Materialize() any {
	*l.calls++
	return slices.Values([]int{1, 2, 3})
}

type density struct {
	rows [][]float64
}

func (d *density) DeepCopy() any {
	rows := make([][]float64, len(d.rows))
	for i, r := range d.rows {
		rows[i] = append([]float64(nil), r...)
	}
	return &density{rows: rows}
}

func TestDrain_Seq(t *testing.T) {
	calls := 0
	var seq iter.Seq[kblock] = func(yield func(kblock) bool) {
		calls++
		for k := range 3 {
			if !yield(kblock{k: k, data: []float64{float64(k)}}) {
				return
			}
		}
	}

	out := materialize.Drain(seq)
	blocks, ok := out.([]kblock)
	require.True(t, ok, "got %T", out)
	assert.Len(t, blocks, 3)
	assert.Equal(t, 2, blocks[2].k)
	assert.Equal(t, 1, calls)
}

func TestDrain_Seq2(t *testing.T) {
	seq := func(yield func(string, float64) bool) {
		_ = yield("e_nuc", -1.5) && yield("e_ewald", 0.25)
	}

	out := materialize.Drain(iter.Seq2[string, float64](seq))
	assert.Equal(t, []materialize.Pair{
		{Key: "e_nuc", Value: -1.5},
		{Key: "e_ewald", Value: 0.25},
	}, out)
}

func TestDrain_Channel(t *testing.T) {
	ch := make(chan int, 3)
	ch <- 1
	ch <- 2
	ch <- 3
	close(ch)

	assert.Equal(t, []int{1, 2, 3}, materialize.Drain((<-chan int)(ch)))

	sendOnly := make(chan<- int)
	assert.Equal(t, sendOnly, materialize.Drain(sendOnly))
}

func TestDrain_Lazy(t *testing.T) {
	calls := 0
	out := materialize.Drain(lazyBlocks{calls: &calls})
	assert.Equal(t, []int{1, 2, 3}, out)
	assert.Equal(t, 1, calls)
}

func TestDrain_PassThrough(t *testing.T) {
	assert.Equal(t, 1.5, materialize.Drain(1.5))
	assert.Nil(t, materialize.Drain(nil))

	notASeq := func(x int) int { return x }
	assert.NotNil(t, materialize.Drain(notASeq))
	assert.False(t, materialize.IsLazy(notASeq))
	assert.True(t, materialize.IsLazy(slices.Values([]int{1})))
	assert.True(t, materialize.IsLazy(make(chan int)))
	assert.False(t, materialize.IsLazy([]int{1}))
}

func TestMaterializer_SharedOnHit(t *testing.T) {
	m := materialize.Materializer{}
	stored := m.Store([]float64{1, 2, 3}).([]float64)

	got, err := m.Retrieve(stored)
	require.NoError(t, err)
	got.([]float64)[0] = 42
	assert.Equal(t, 42.0, stored[0], "hits share the stored instance")
}

func TestMaterializer_CopyOnHit(t *testing.T) {
	m := materialize.Materializer{CopyOnHit: true}
	stored := m.Store(map[string][]float64{"hcore": {1, 2}}).(map[string][]float64)

	got, err := m.Retrieve(stored)
	require.NoError(t, err)
	got.(map[string][]float64)["hcore"][0] = 42
	assert.Equal(t, 1.0, stored["hcore"][0])

	nilOut, err := m.Retrieve(nil)
	require.NoError(t, err)
	assert.Nil(t, nilOut)
}

func TestCopy_CopierAndMatrix(t *testing.T) {
	d := &density{rows: [][]float64{{1, 0}, {0, 1}}}
	out, err := materialize.Copy(d)
	require.NoError(t, err)
	cp := out.(*density)
	cp.rows[0][0] = 9
	assert.Equal(t, 1.0, d.rows[0][0])

	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	out, err = materialize.Copy(m)
	require.NoError(t, err)
	mc := out.(*mat.Dense)
	mc.Set(0, 0, 9)
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 4.0, mc.At(1, 1))

	nested := []*mat.Dense{mat.NewDense(1, 2, []float64{1, 2})}
	out, err = materialize.Copy(nested)
	require.NoError(t, err)
	nc := out.([]*mat.Dense)
	require.Len(t, nc, 1)
	assert.Equal(t, 2.0, nc[0].At(0, 1))
	nc[0].Set(0, 1, 9)
	assert.Equal(t, 2.0, nested[0].At(0, 1))

	vec := mat.NewVecDense(2, []float64{1, 2})
	out, err = materialize.Copy(vec)
	require.NoError(t, err)
	vc := out.(*mat.VecDense)
	vc.SetVec(0, 9)
	assert.Equal(t, 1.0, vec.AtVec(0))
}

type ewaldTerms struct {
	Real, Recip float64
	Images      [][3]int
}

type hiddenDensity struct {
	data []float64
}

type wrapped struct {
	Label   string
	Density density
}

func TestCopy_RejectsUnexportedState(t *testing.T) {
	_, err := materialize.Copy(hiddenDensity{data: []float64{1, 2, 3}})
	require.ErrorIs(t, err, materialize.ErrCopy)
	assert.ErrorContains(t, err, "hiddenDensity.data")

	_, err = materialize.Copy(map[string]*hiddenDensity{"k": {data: []float64{1}}})
	assert.ErrorIs(t, err, materialize.ErrCopy)

	_, err = materialize.Copy(mat.NewTridiag(2, []float64{1}, []float64{1, 2}, []float64{1}))
	assert.ErrorIs(t, err, materialize.ErrCopy, "matrices without a clone are refused")

	m := materialize.Materializer{CopyOnHit: true}
	_, err = m.Retrieve(hiddenDensity{data: []float64{1}})
	assert.ErrorIs(t, err, materialize.ErrCopy)
}

func TestCopy_ExportedStructsAndNestedCopiers(t *testing.T) {
	src := &ewaldTerms{Real: 1, Recip: 2, Images: [][3]int{{0, 0, 1}}}
	out, err := materialize.Copy(src)
	require.NoError(t, err)
	cp := out.(*ewaldTerms)
	cp.Images[0][2] = 9
	assert.Equal(t, 1, src.Images[0][2])
	assert.Equal(t, 2.0, cp.Recip)

	w := wrapped{Label: "dm", Density: density{rows: [][]float64{{1}}}}
	out, err = materialize.Copy(w)
	require.NoError(t, err)
	wc := out.(wrapped)
	assert.Equal(t, "dm", wc.Label)
	require.Len(t, wc.Density.rows, 1)
	wc.Density.rows[0][0] = 9
	assert.Equal(t, 1.0, w.Density.rows[0][0])
}

func TestCopy_MatricesKeepTheirType(t *testing.T) {
	sym := mat.NewSymDense(2, []float64{1, 2, 2, 3})
	out, err := materialize.Copy(sym)
	require.NoError(t, err)
	sc, ok := out.(*mat.SymDense)
	require.True(t, ok)
	assert.True(t, mat.Equal(sym, sc))
	sc.SetSym(0, 1, 9)
	assert.Equal(t, 2.0, sym.At(0, 1))

	tri := mat.NewTriDense(2, mat.Lower, []float64{1, 0, 2, 3})
	out, err = materialize.Copy(tri)
	require.NoError(t, err)
	tc, ok := out.(*mat.TriDense)
	require.True(t, ok)
	assert.True(t, mat.Equal(tri, tc))
	_, kind := tc.Triangle()
	assert.Equal(t, mat.Lower, kind)

	band := mat.NewBandDense(3, 3, 1, 0, []float64{0, 1, 2, 3, 4, 5})
	out, err = materialize.Copy(band)
	require.NoError(t, err)
	bc, ok := out.(*mat.BandDense)
	require.True(t, ok)
	assert.True(t, mat.Equal(band, bc))

	diag := mat.NewDiagDense(2, []float64{4, 5})
	out, err = materialize.Copy(diag)
	require.NoError(t, err)
	dc, ok := out.(*mat.DiagDense)
	require.True(t, ok)
	assert.True(t, mat.Equal(diag, dc))

	nested := map[string]mat.Matrix{"fock": sym}
	out, err = materialize.Copy(nested)
	require.NoError(t, err)
	_, ok = out.(map[string]mat.Matrix)["fock"].(*mat.SymDense)
	assert.True(t, ok)

	var empty *mat.SymDense
	out, err = materialize.Copy(empty)
	require.NoError(t, err)
	assert.Nil(t, out.(*mat.SymDense))
}
