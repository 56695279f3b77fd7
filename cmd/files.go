package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/rbxforge/api"
	"github.com/agentic-research/rbxforge/internal/ingest"
	"github.com/agentic-research/rbxforge/internal/rbxml"
	"github.com/agentic-research/rbxforge/internal/writeback"
)

func isXMLPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".rbxmx") || strings.HasSuffix(lower, ".xml")
}

func readFile(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := util.ReadFile(osfs.New(filepath.Dir(abs)), filepath.Base(abs))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := writeback.WriteFile(osfs.New(filepath.Dir(abs)), filepath.Base(abs), data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// loadTree reads an asset tree from an XML document or a JSON tree file,
// chosen by extension.
func (c *commandContext) loadTree(path string) (api.Node, error) {
	data, err := readFile(path)
	if err != nil {
		return api.Node{}, err
	}
	if isXMLPath(path) {
		root, err := decodeDocument(data)
		if err != nil {
			return api.Node{}, fmt.Errorf("decode %s: %w", path, err)
		}
		return root, nil
	}
	root, err := ingest.NewBuilder(c.log()).ParsePayload(string(data), ingest.DefaultSelector)
	if err != nil {
		return api.Node{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return root, nil
}

func replaceExt(path, ext string) string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".rbxm.xml") {
		return path[:len(path)-len(".rbxm.xml")] + ext
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func decodeDocument(data []byte) (api.Node, error) {
	return rbxml.NewDecoder().DecodeReader(bytes.NewReader(data))
}
