package ingest

import (
	"strconv"
	"testing"

	"github.com/agentic-research/rbxforge/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder() *Builder {
	b := NewBuilder(nil)
	var n int
	b.NewID = func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
	return b
}

const treePayload = `{
  "name": "Shop",
  "className": "Folder",
  "properties": {"Owner": "Ana", "Price": 25, "Ratio": 0.5, "Open": true,
                 "Meta": {"x": 1}, "Tags": ["a"], "Gone": null},
  "children": [
    {"name": "Buy", "className": "Script", "source": "print('buy')\n", "children": []},
    {"id": "fixed", "name": "Stand", "class": "Part"}
  ]
}`

func TestBuilder_ParsePayload(t *testing.T) {
	root, err := testBuilder().ParsePayload(treePayload, "")
	require.NoError(t, err)

	assert.Equal(t, "Shop", root.Name)
	assert.Equal(t, "Folder", root.ClassName)
	assert.Equal(t, "id-1", root.ID)

	assert.Equal(t, []string{"Open", "Owner", "Price", "Ratio"}, root.Properties.Keys())
	price, ok := root.Properties["Price"].AsNumber()
	require.True(t, ok)
	assert.Equal(t, 25.0, price)
	open, ok := root.Properties["Open"].AsBool()
	require.True(t, ok)
	assert.True(t, open)

	require.Len(t, root.Children, 2)
	buy := root.Children[0]
	assert.Equal(t, "Script", buy.ClassName)
	require.NotNil(t, buy.Source)
	assert.Equal(t, "print('buy')\n", *buy.Source)

	stand := root.Children[1]
	assert.Equal(t, "fixed", stand.ID, "existing ids are kept")
	assert.Equal(t, "Part", stand.ClassName)
	assert.Empty(t, stand.Children)
}

func TestBuilder_ParsePayload_Envelope(t *testing.T) {
	raw := "```json\n{\"reply\": \"done\", \"asset\": {\"name\": \"Door\", \"className\": \"Part\"}}\n```"
	root, err := testBuilder().ParsePayload(raw, "")
	require.NoError(t, err)
	assert.Equal(t, "Door", root.Name)
}

func TestBuilder_ParsePayload_Selector(t *testing.T) {
	raw := `{"result": {"items": [{"name": "A", "className": "Folder"}, {"name": "B", "className": "Folder"}]}}`
	root, err := testBuilder().ParsePayload(raw, "$.result.items[1]")
	require.NoError(t, err)
	assert.Equal(t, "B", root.Name)
}

func TestBuilder_ParsePayload_Errors(t *testing.T) {
	b := testBuilder()

	_, err := b.ParsePayload("not json", "")
	assert.Error(t, err)

	_, err = b.ParsePayload(`{"message": "hello"}`, "")
	assert.ErrorIs(t, err, ErrNoTree)

	_, err = b.ParsePayload(`{"name": "X", "className": "Folder", "children": "nope"}`, "")
	assert.Error(t, err)

	_, err = b.ParsePayload(`{"name": "X", "className": "Folder", "children": [1]}`, "")
	assert.Error(t, err)
}

func TestBuilder_BuildTree_NonObject(t *testing.T) {
	_, err := testBuilder().BuildTree([]any{})
	assert.Error(t, err)
}

func TestBuilder_BuildTree_IntegerKinds(t *testing.T) {
	root, err := testBuilder().BuildTree(map[string]any{
		"name":       "N",
		"className":  "Part",
		"properties": map[string]any{"A": int64(3), "B": 1.25, "C": nil},
	})
	require.NoError(t, err)
	assert.Equal(t, api.Properties{"A": api.Number(3), "B": api.Number(1.25)}, root.Properties)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripCodeFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFence("  {\"a\":1}  "))
}
