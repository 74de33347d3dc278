// Package config loads the keybind configuration file adjacent to the
// socket (spec.md §4.F: "Default keybinds (editable by a text config file
// adjacent to the socket)"). File-absent is not an error — the built-in
// defaults apply — following the teacher's graceful config-loading style
// (internal/daemon/project.go's loadProject).
package config

import (
	"fmt"
	"os"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

// Action names a keybind action. "exec" actions carry a shell-style
// command line, tokenized with shlex at load time so the dispatcher never
// has to re-parse it per keystroke.
type Action struct {
	Name string   `yaml:"action"`
	Args []string `yaml:"-"`
	Raw  string   `yaml:"exec,omitempty"`
}

// Keybinds maps a lowercase byte (as a one-rune string) to an Action.
type Keybinds map[string]Action

// fileFormat mirrors the on-disk YAML shape:
//
//	keybinds:
//	  d: detach
//	  "%": split
//	  o: next-pane
//	  "[": scroll-up
//	  "]": scroll-down
//	  r: { exec: "tmux list-sessions" }
type fileFormat struct {
	Keybinds map[string]yaml.Node `yaml:"keybinds"`
}

// Default returns the built-in keybind table from spec.md §4.F.
func Default() Keybinds {
	return Keybinds{
		"d": {Name: "detach"},
		"%": {Name: "split"},
		"o": {Name: "next-pane"},
		"[": {Name: "scroll-up"},
		"]": {Name: "scroll-down"},
	}
}

// Load reads a YAML keybind file at path, overlaying it onto Default().
// A missing file is not an error.
func Load(path string) (Keybinds, error) {
	binds := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return binds, nil
		}
		return binds, fmt.Errorf("config: read %s: %w", path, err)
	}

	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return binds, fmt.Errorf("config: parse %s: %w", path, err)
	}
	for key, node := range ff.Keybinds {
		act, err := decodeAction(node)
		if err != nil {
			return binds, fmt.Errorf("config: keybind %q: %w", key, err)
		}
		binds[key] = act
	}
	return binds, nil
}

func decodeAction(node yaml.Node) (Action, error) {
	// Scalar form: "d: detach".
	if node.Kind == yaml.ScalarNode {
		return Action{Name: node.Value}, nil
	}
	// Mapping form: "r: { exec: \"cmd args\" }".
	var act Action
	if err := node.Decode(&act); err != nil {
		return Action{}, err
	}
	if act.Raw != "" {
		args, err := shlex.Split(act.Raw)
		if err != nil {
			return Action{}, fmt.Errorf("tokenize exec command: %w", err)
		}
		act.Name = "exec"
		act.Args = args
	}
	return act, nil
}
