package gpu

import (
	"testing"

	"github.com/stretchr/testify/require"

	liszt "github.com/clemire/liszt-in-terra"
	"github.com/clemire/liszt-in-terra/config"
	"github.com/clemire/liszt-in-terra/kernel"
)

func TestEngineGlobalSum(t *testing.T) {
	rel, err := liszt.NewRelation("cells", liszt.PLAIN, 10007, nil, nil)
	require.NoError(t, err)
	sum := liszt.NewGlobal("sum", liszt.Scalar(liszt.Int32))

	k := &kernel.Kernel{
		Name:      "count",
		Relation:  rel,
		Processor: kernel.GPU,
		GlobalAccesses: []kernel.GlobalAccess{
			{Global: sum, Privilege: kernel.Reduce, Op: liszt.Add},
		},
		Body: func(a *kernel.Args) {
			a.Reduce("sum", int32(1))
		},
	}
	v := kernel.NewVersion(k)
	v.Engine = NewEngine(&config.Config{BlockSize: 64})
	require.NoError(t, v.Run())
	require.Equal(t, int32(10007), sum.Get())
}

func TestEngineMinReduction(t *testing.T) {
	rel, err := liszt.NewRelation("cells", liszt.PLAIN, 500, nil, nil)
	require.NoError(t, err)
	f, err := rel.NewField("v", liszt.Scalar(liszt.Int32))
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		f.SetInt32(i, int32(500-i))
	}
	min := liszt.NewGlobal("min", liszt.Scalar(liszt.Int32))
	min.Set(liszt.Min.Identity(liszt.Int32))

	k := &kernel.Kernel{
		Name:      "minimum",
		Relation:  rel,
		Processor: kernel.GPU,
		Accesses:  []kernel.Access{{Field: f, Privilege: kernel.ReadOnly}},
		GlobalAccesses: []kernel.GlobalAccess{
			{Global: min, Privilege: kernel.Reduce, Op: liszt.Min},
		},
		Body: func(a *kernel.Args) {
			a.Reduce("min", a.Fields["v"].GetInt32(a.Row))
		},
	}
	v := kernel.NewVersion(k)
	v.Engine = NewEngine(&config.Config{BlockSize: 32})
	require.NoError(t, v.Run())
	require.Equal(t, int32(1), min.Get())
}
