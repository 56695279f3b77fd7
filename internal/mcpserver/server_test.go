package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/rbxforge/api"
	"github.com/agentic-research/rbxforge/internal/logging"
	"github.com/agentic-research/rbxforge/internal/rbxml"
)

const sampleTree = `{
	"name": "Obby",
	"className": "Model",
	"properties": {"Speed": 12, "Anchored": true},
	"children": [
		{"name": "Spawner", "className": "Script", "source": "while true do wait(1) end", "children": []},
		{"name": "Floor", "className": "Part", "children": []}
	]
}`

func call(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func newServer() *Server {
	return New(Options{Logger: logging.Discard()})
}

func TestEncodeAssetTree(t *testing.T) {
	s := newServer()
	res, err := s.EncodeAssetTree(context.Background(), call("encode_asset_tree", map[string]any{"tree": sampleTree}))
	require.NoError(t, err)
	assert.False(t, res.IsError)

	doc := resultText(t, res)
	assert.Contains(t, doc, `<Item class="Model"`)
	assert.Contains(t, doc, `<ProtectedString name="Source"><![CDATA[while true do wait(1) end]]></ProtectedString>`)
	assert.Contains(t, doc, `<float name="Speed">12</float>`)

	root, err := rbxml.Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, 3, root.Count())
}

func TestEncodeAssetTreeErrors(t *testing.T) {
	s := newServer()

	res, err := s.EncodeAssetTree(context.Background(), call("encode_asset_tree", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.EncodeAssetTree(context.Background(), call("encode_asset_tree", map[string]any{"tree": "not json"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "Invalid asset tree")
}

func TestDecodeSwapsWorkspace(t *testing.T) {
	s := newServer()
	src := "print('hi')"
	doc := rbxml.Encode(api.Node{
		Name:      "Kit",
		ClassName: "Folder",
		Children: []api.Node{
			{Name: "Boot", ClassName: "LocalScript", Source: &src},
			{Name: "Boot", ClassName: "ModuleScript", Source: &src},
		},
	})

	res, err := s.DecodeAssetXML(context.Background(), call("decode_asset_xml", map[string]any{"xml": doc}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var decoded api.Node
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &decoded))
	assert.Equal(t, "Kit", decoded.Name)
	assert.Equal(t, "Kit", s.Workspace().Tree().Name)

	res, err = s.ListAssets(context.Background(), call("list_assets", map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, "Kit\tFolder\nKit/Boot\tLocalScript\nKit/Boot~2\tModuleScript\n", resultText(t, res))

	res, err = s.ListAssets(context.Background(), call("list_assets", map[string]any{"class": "ModuleScript"}))
	require.NoError(t, err)
	assert.Equal(t, "Kit/Boot~2\tModuleScript\n", resultText(t, res))

	res, err = s.ReadScript(context.Background(), call("read_script", map[string]any{"path": "/Kit/Boot~2"}))
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", resultText(t, res))
}

func TestListAssetsByPath(t *testing.T) {
	s := newServer()
	src := "print('hi')"
	doc := rbxml.Encode(api.Node{
		Name:      "Kit",
		ClassName: "Folder",
		Children: []api.Node{
			{Name: "Boot", ClassName: "LocalScript", Source: &src},
			{Name: "Boot", ClassName: "ModuleScript", Source: &src},
		},
	})
	res, err := s.DecodeAssetXML(context.Background(), call("decode_asset_xml", map[string]any{"xml": doc}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	res, err = s.ListAssets(context.Background(), call("list_assets", map[string]any{"path": "/Kit"}))
	require.NoError(t, err)
	assert.Equal(t, "Kit/Boot\tLocalScript\nKit/Boot~2\tModuleScript\n", resultText(t, res))

	res, err = s.ListAssets(context.Background(), call("list_assets", map[string]any{"path": "Kit", "class": "LocalScript"}))
	require.NoError(t, err)
	assert.Equal(t, "Kit/Boot\tLocalScript\n", resultText(t, res))

	res, err = s.ListAssets(context.Background(), call("list_assets", map[string]any{"path": "Kit/Boot"}))
	require.NoError(t, err)
	assert.Equal(t, "No assets found.", resultText(t, res))

	res, err = s.ListAssets(context.Background(), call("list_assets", map[string]any{"path": "Nope"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestDecodeFailureKeepsWorkspace(t *testing.T) {
	s := newServer()
	res, err := s.DecodeAssetXML(context.Background(), call("decode_asset_xml", map[string]any{"xml": "<roblox></roblox>"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "no Roblox items found")
	assert.Equal(t, "Workspace", s.Workspace().Tree().Name)
}

func TestListAssetsEmptyClass(t *testing.T) {
	s := newServer()
	res, err := s.ListAssets(context.Background(), call("list_assets", map[string]any{"class": "Part"}))
	require.NoError(t, err)
	assert.Equal(t, "No assets found.", resultText(t, res))
}

func TestReadScriptErrors(t *testing.T) {
	s := newServer()

	res, err := s.ReadScript(context.Background(), call("read_script", map[string]any{"path": "Missing"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = s.ReadScript(context.Background(), call("read_script", map[string]any{"path": "Workspace"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not a script")
}

func TestValidateScripts(t *testing.T) {
	s := newServer()

	res, err := s.ValidateScripts(context.Background(), call("validate_scripts", map[string]any{"tree": sampleTree}))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "warning: ")
	assert.Contains(t, text, "task.wait")

	broken := `{"name":"M","className":"Model","children":[{"name":"S","className":"Script","source":"local x = = 1","children":[]}]}`
	res, err = s.ValidateScripts(context.Background(), call("validate_scripts", map[string]any{"tree": broken}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "error: ")

	res, err = s.ValidateScripts(context.Background(), call("validate_scripts", map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, "All scripts OK.", resultText(t, res))
}

func TestToolsRegistered(t *testing.T) {
	s := newServer()
	msg := s.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	for _, name := range []string{"encode_asset_tree", "decode_asset_xml", "list_assets", "read_script", "validate_scripts"} {
		assert.Contains(t, string(data), `"name":"`+name+`"`)
	}
}
