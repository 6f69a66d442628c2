package parser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/lri/internal/types"
)

func TestParse(t *testing.T) {
	src := []byte("module A\n  class B < Base\n    def call(x); end\n  end\nend\n")

	tree, err := Parse(src)
	require.NoError(t, err)
	defer tree.Close()

	root := tree.RootNode()
	assert.Equal(t, NodeKindProgram, Kind(root))
	assert.False(t, root.HasError())

	module := root.NamedChild(0)
	require.NotNil(t, module)
	assert.Equal(t, NodeKindModule, Kind(module))
	assert.Equal(t, "A", Text(Child(module, FieldNameName), src))

	body := Child(module, FieldNameBody)
	require.NotNil(t, body)
	class := NamedChildren(body)[0]
	assert.Equal(t, NodeKindClass, Kind(class))
	assert.Equal(t, types.NewPosition(1, 2), Start(class))
	assert.Equal(t, types.NewPosition(3, 5), End(class))

	superclass := Child(class, FieldNameSuperclass)
	require.NotNil(t, superclass)
	assert.Equal(t, NodeKindSuperclass, Kind(superclass))
}

func TestParse_MalformedInputStillProducesTree(t *testing.T) {
	src := []byte("class Broken\n  def oops(\nend\n")

	tree, err := Parse(src)
	require.NoError(t, err)
	defer tree.Close()

	assert.True(t, tree.RootNode().HasError())
}

func TestParse_Concurrent(t *testing.T) {
	src := []byte("class Foo\n  BAR = 1\nend\n")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree, err := Parse(src)
			if !assert.NoError(t, err) {
				return
			}
			defer tree.Close()
			assert.Equal(t, NodeKindClass, Kind(tree.RootNode().NamedChild(0)))
		}()
	}
	wg.Wait()
}

func TestClassifyKind(t *testing.T) {
	tests := map[string]NodeKind{
		"class":                NodeKindClass,
		"scope_resolution":     NodeKindScopeResolution,
		"left_assignment_list": NodeKindLeftAssignmentList,
		"global_variable":      NodeKindGlobalVariable,
		"integer":              NodeKindUnknown,
		"":                     NodeKindUnknown,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ClassifyKind(raw), raw)
	}

	assert.Equal(t, "singleton_method", NodeKindSingletonMethod.String())
	assert.Equal(t, "unknown", NodeKindUnknown.String())
	assert.True(t, NodeKindModule.IsClasslike())
	assert.True(t, NodeKindSingletonMethod.IsMethod())
	assert.Equal(t, NodeKindUnknown, Kind(nil))
}

func TestPointConversion(t *testing.T) {
	p := types.NewPosition(4, 9)
	assert.Equal(t, p, FromPoint(ToPoint(p)))
	assert.Equal(t, uint(0), ToPoint(types.NewPosition(-1, -3)).Row)
}

func TestDescendantLookup(t *testing.T) {
	src := []byte("X::Y.call\n")
	tree, err := Parse(src)
	require.NoError(t, err)
	defer tree.Close()

	pos := ToPoint(types.NewPosition(0, 3))
	node := tree.RootNode().DescendantForPointRange(pos, pos)
	require.NotNil(t, node)
	assert.Equal(t, NodeKindConstant, Kind(node))
	assert.Equal(t, "Y", Text(node, src))
	assert.Equal(t, NodeKindScopeResolution, Kind(node.Parent()))
	assert.True(t, Contains(node.Parent(), node))
	assert.True(t, SameNode(node, node))
}
