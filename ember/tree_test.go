package ember_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberplus/emberplus/ember"
	"github.com/emberplus/emberplus/glow"
	"github.com/emberplus/emberplus/oid"
)

func Test_Tree_PutAndMarshalJSON_RendersTypedEntries(t *testing.T) {
	tree := ember.NewTree()

	node := glow.NewNode(1, glow.NodeContents{HasIdentifier: true, Identifier: "board", HasIsOnline: true, IsOnline: true})
	tree.Put(oid.OID{1}, node)

	param := glow.NewParameter(1, glow.ParameterContents{
		HasIdentifier: true, Identifier: "gain",
		HasValue: true, Value: glow.IntegerValue(3),
	})
	tree.Put(oid.OID{1, 1}, param)

	entry, err := tree.GetByPath("1")
	require.NoError(t, err)
	assert.Equal(t, ember.ElementTypeNode, entry.ElementType)
	assert.Equal(t, "board", entry.Identifier)
	assert.Equal(t, []string{"1.1"}, entry.ChildPaths)

	paramEntry, err := tree.GetByPath("1.1")
	require.NoError(t, err)
	assert.Equal(t, ember.ElementTypeParameter, paramEntry.ElementType)
	assert.Equal(t, int64(3), paramEntry.Value)

	raw, err := json.Marshal(tree)
	require.NoError(t, err)

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "node", decoded["1"]["element_type"])
	assert.Equal(t, "parameter", decoded["1.1"]["element_type"])
}

func Test_Tree_GetByPath_MissingReturnsErrEntryNotFound(t *testing.T) {
	tree := ember.NewTree()

	_, err := tree.GetByPath("9.9")
	assert.ErrorIs(t, err, ember.ErrEntryNotFound)
}

func Test_RepublishKey_FormatsOIDWithSlashes(t *testing.T) {
	assert.Equal(t, "ember", ember.RepublishKey(oid.Root()))
	assert.Equal(t, "ember/1/2/3", ember.RepublishKey(oid.OID{1, 2, 3}))
}
