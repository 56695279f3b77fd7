package writeback

import (
	"testing"

	"github.com/agentic-research/rbxforge/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validLua = `local Players = game:GetService("Players")

local function greet(player)
	print("Welcome, " .. player.Name)
end

Players.PlayerAdded:Connect(greet)
`

const brokenLua = `local function greet(player
	print("Welcome")
end end )
`

func TestValidate_ValidScript(t *testing.T) {
	err := Validate([]byte(validLua), "Script", "Game/Welcome")
	assert.NoError(t, err)
}

func TestValidate_BrokenScript(t *testing.T) {
	err := Validate([]byte(brokenLua), "LocalScript", "Game/Welcome")
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "Game/Welcome", ve.Path)
	assert.Contains(t, ve.Message, "syntax error")
	assert.Contains(t, ve.Error(), "Game/Welcome:")
}

func TestValidate_NonScriptClass_PassThrough(t *testing.T) {
	err := Validate([]byte(`this is not valid lua {{{`), "Folder", "Game/Data")
	assert.NoError(t, err)
}

func TestValidate_EmptyContent(t *testing.T) {
	err := Validate([]byte{}, "ModuleScript", "Game/Empty")
	assert.NoError(t, err)
}

func TestASTErrors_Broken(t *testing.T) {
	errs := ASTErrors([]byte(brokenLua), "Game/Welcome")
	require.NotEmpty(t, errs)
	assert.Equal(t, "Game/Welcome", errs[0].Path)
}

func TestASTErrors_Valid_ReturnsNil(t *testing.T) {
	errs := ASTErrors([]byte(validLua), "Game/Welcome")
	assert.Nil(t, errs)
}

func TestValidateTree(t *testing.T) {
	good, bad := validLua, brokenLua
	root := api.Node{
		Name:      "Game",
		ClassName: "Model",
		Children: []api.Node{
			{Name: "Good", ClassName: "Script", Source: &good},
			{Name: "Folder", ClassName: "Folder", Children: []api.Node{
				{Name: "Bad", ClassName: "ModuleScript", Source: &bad},
			}},
			{Name: "NoSource", ClassName: "Script"},
		},
	}
	errs := ValidateTree(root)
	require.Len(t, errs, 1)
	assert.Equal(t, "Game/Folder/Bad", errs[0].Path)
}
