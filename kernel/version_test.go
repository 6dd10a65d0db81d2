package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"

	liszt "github.com/clemire/liszt-in-terra"
)

func newPointRelation(t *testing.T, n int) (*liszt.Relation, *liszt.Field) {
	rel, err := liszt.NewRelation("points", liszt.PLAIN, n, nil, nil)
	require.NoError(t, err)
	f, err := rel.NewField("x", liszt.Scalar(liszt.Float64))
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		f.SetFloat64(i, float64(i))
	}
	return rel, f
}

func TestVersionLifecycle(t *testing.T) {
	rel, x := newPointRelation(t, 8)
	var seen []int
	k := &Kernel{
		Name:      "double",
		Relation:  rel,
		Processor: CPU,
		Accesses:  []Access{{Field: x, Privilege: ReadWrite}},
		Body: func(a *Args) {
			seen = append(seen, a.Row)
			f := a.Fields["x"]
			f.SetFloat64(a.Row, f.GetFloat64(a.Row)*2)
		},
	}
	v := NewVersion(k)
	require.Equal(t, Declared, v.State())
	require.NoError(t, v.Run())
	require.Equal(t, Compiled, v.State())
	require.Len(t, seen, 8)
	require.Equal(t, 14.0, x.GetFloat64(7))
}

func TestLayoutFinalizeRejectsLateRegistration(t *testing.T) {
	_, x := newPointRelation(t, 4)
	l := NewLayout([]Bound{{Lo: 0, Hi: 3}})
	require.NoError(t, l.AddField(x, ReadOnly, liszt.NoOp))
	l.Finalize()
	err := l.AddField(x, ReadOnly, liszt.NoOp)
	require.Error(t, err)
}

func TestVersionRecompilesOnSchemaChange(t *testing.T) {
	rel, x := newPointRelation(t, 4)
	k := &Kernel{
		Name:      "noop",
		Relation:  rel,
		Processor: CPU,
		Accesses:  []Access{{Field: x, Privilege: ReadOnly}},
		Body:      func(a *Args) {},
	}
	v := NewVersion(k)
	require.NoError(t, v.Compile())
	sig := v.schemaSig

	_, err := rel.NewField("y", liszt.Scalar(liszt.Float64))
	require.NoError(t, err)

	require.NoError(t, v.DynamicChecks())
	require.NotEqual(t, sig, v.schemaSig)
}

func TestInsertKernelGrowsRelation(t *testing.T) {
	rel, err := liszt.NewRelation("particles", liszt.ELASTIC, 0, nil, nil)
	require.NoError(t, err)
	mass, err := rel.NewField("mass", liszt.Scalar(liszt.Float64))
	require.NoError(t, err)

	k := &Kernel{
		Name:       "spawn",
		Relation:   rel,
		Processor:  CPU,
		Intent:     InsertIntent,
		LaunchSize: 5,
		Body: func(a *Args) {
			dst, err := a.Insert.Reserve(1)
			if err != nil {
				return
			}
			mass.SetFloat64(dst, 1.0)
			a.Insert.Write(dst)
		},
	}
	v := NewVersion(k)
	require.NoError(t, v.Run())
	require.Equal(t, 5, rel.LogicalSize())
	require.Equal(t, 5, rel.ConcreteSize())
}
