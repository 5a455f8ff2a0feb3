package process

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Command is an allow-listed process bound to one step name.
type Command struct {
	Step        string            `yaml:"step" json:"step"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
}

// ConfigFile is the layout of a commands file.
type ConfigFile struct {
	Commands []Command `yaml:"commands" json:"commands"`
}

// LoadCommands reads a YAML or JSON commands file, keyed by step name.
func LoadCommands(path string) (map[string]Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read commands config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	commands := make(map[string]Command, len(cfg.Commands))
	for _, c := range cfg.Commands {
		if c.Step == "" || c.Command == "" {
			return nil, fmt.Errorf("%s: command entries need step and command", filepath.Base(path))
		}
		if _, dup := commands[c.Step]; dup {
			return nil, fmt.Errorf("%s: step %s configured twice", filepath.Base(path), c.Step)
		}
		commands[c.Step] = c
	}
	return commands, nil
}
