package hierarchy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newID(t *testing.T) primitive.ObjectID {
	t.Helper()
	return primitive.NewObjectID()
}

func TestCompute_root(t *testing.T) {
	id := newID(t)

	path, level, err := Compute(context.Background(), id, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, id.Hex(), path)
	assert.Zero(t, level)
}

func TestCompute_withParent(t *testing.T) {
	parentID := newID(t)
	childID := newID(t)

	lookup := func(ctx context.Context, id primitive.ObjectID) (*Node, error) {
		if id == parentID {
			return &Node{ID: parentID, Path: parentID.Hex(), Level: 0}, nil
		}
		return nil, nil
	}

	path, level, err := Compute(context.Background(), childID, &parentID, lookup)
	require.NoError(t, err)
	assert.Equal(t, parentID.Hex()+PathDelimiter+childID.Hex(), path)
	assert.Equal(t, 1, level)
}

func TestCompute_parentNotFound(t *testing.T) {
	parentID := newID(t)
	lookup := func(ctx context.Context, id primitive.ObjectID) (*Node, error) {
		return nil, nil
	}

	_, _, err := Compute(context.Background(), newID(t), &parentID, lookup)
	assert.ErrorIs(t, err, ErrParentNotFound)
}

func TestAncestorIDs(t *testing.T) {
	root := newID(t)
	mid := newID(t)
	leaf := newID(t)
	path := root.Hex() + PathDelimiter + mid.Hex() + PathDelimiter + leaf.Hex()

	ids := AncestorIDs(path)
	require.Len(t, ids, 2)
	assert.Equal(t, root, ids[0])
	assert.Equal(t, mid, ids[1])

	// 根節點沒有祖先
	assert.Nil(t, AncestorIDs(root.Hex()))
}

func TestIsDescendantPath(t *testing.T) {
	root := newID(t)
	child := newID(t)
	rootPath := root.Hex()
	childPath := rootPath + PathDelimiter + child.Hex()

	assert.True(t, IsDescendantPath(rootPath, childPath))
	// 自身不算子孫
	assert.False(t, IsDescendantPath(rootPath, rootPath))
	// 純字串前綴不能誤判
	assert.False(t, IsDescendantPath(rootPath[:10], rootPath))
}

func TestValidateReparent(t *testing.T) {
	node := newID(t)
	descendant := newID(t)
	other := newID(t)

	assert.ErrorIs(t, ValidateReparent(node, node, nil), ErrCircularReference)
	assert.ErrorIs(t, ValidateReparent(node, descendant, []primitive.ObjectID{descendant}), ErrCircularReference)
	assert.NoError(t, ValidateReparent(node, other, []primitive.ObjectID{descendant}))
}

func TestRebase(t *testing.T) {
	a, b, c, d := newID(t), newID(t), newID(t), newID(t)

	oldPath := a.Hex() + PathDelimiter + b.Hex()
	newPath := c.Hex() + PathDelimiter + b.Hex()
	descendant := oldPath + PathDelimiter + d.Hex()

	got := Rebase(descendant, oldPath, newPath)
	assert.Equal(t, newPath+PathDelimiter+d.Hex(), got)
}

func TestLevel(t *testing.T) {
	a, b, c := newID(t), newID(t), newID(t)

	assert.Zero(t, Level(""))
	assert.Zero(t, Level(a.Hex()))
	assert.Equal(t, 1, Level(a.Hex()+PathDelimiter+b.Hex()))
	assert.Equal(t, 2, Level(a.Hex()+PathDelimiter+b.Hex()+PathDelimiter+c.Hex()))
}
