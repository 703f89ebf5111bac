package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a manifest (YAML or JSON) and validates it.
// Format is detected by extension (.yaml/.yml, .json) or by content.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	p, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse decodes a manifest without validating it. ext is a format hint; empty means detect.
func Parse(data []byte, ext string) (*Plan, error) {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext == "" {
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			ext = ".json"
		} else {
			ext = ".yaml"
		}
	}

	var p Plan
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse manifest json: %w", err)
		}
	case ".yaml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse manifest yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("parse manifest: unsupported extension %q", ext)
	}
	return &p, nil
}

// YAML renders the plan as a manifest document.
func (p *Plan) YAML() ([]byte, error) {
	return yaml.Marshal(p)
}
