package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/medscore/internal/risk"
)

// readInputs loads a YAML or JSON object from path ("-" for stdin) and
// applies key=value overrides on top.
func readInputs(path string, sets []string, stdin io.Reader) (risk.Input, error) {
	in := risk.Input{}
	if path != "" {
		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("readInputs: %w", err)
		}
		if len(bytes.TrimSpace(data)) > 0 {
			if err := yaml.Unmarshal(data, &in); err != nil {
				return nil, fmt.Errorf("readInputs: %s: %w", path, err)
			}
		}
	}
	for _, kv := range sets {
		k, v, err := parseSet(kv)
		if err != nil {
			return nil, err
		}
		in[k] = v
	}
	return in, nil
}

// parseSet splits key=value and types the value as a YAML scalar,
// so "true" is a bool, "12" an int, "1.5" a float, and anything else a string.
func parseSet(kv string) (string, any, error) {
	k, raw, ok := strings.Cut(kv, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return "", nil, fmt.Errorf("invalid --set %q: want key=value", kv)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return k, nil, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &node); err != nil || len(node.Content) != 1 || node.Content[0].Kind != yaml.ScalarNode {
		return k, raw, nil
	}
	var v any
	if err := node.Content[0].Decode(&v); err != nil {
		return "", nil, fmt.Errorf("invalid --set %q: %w", kv, err)
	}
	return k, v, nil
}

// engineExit maps engine errors to exit codes.
func engineExit(err error) error {
	var ve *risk.ValidationError
	var ce *risk.ConfigurationError
	switch {
	case errors.As(err, &ve):
		return exitError(5, "invalid input: %v", err)
	case errors.As(err, &ce):
		return exitError(3, "%v", err)
	default:
		return err
	}
}

// emit renders to the file at out, or to w when out is empty.
func emit(w io.Writer, out string, render func(io.Writer) error) error {
	if out == "" {
		return render(w)
	}
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
