package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/groundcrew/runway/pkg/convention/config"
)

// Decode reads the declaration at path, renders it with the caller-supplied
// template data (project, region, image, service account), and validates the
// result. Defaults are applied before validation so a minimal declaration
// remains a complete one.
func Decode(c config.Config, path string) (Manifest, error) {
	document, err := os.ReadFile(filepath.Join(path, FileName))
	if err != nil {
		return Manifest{}, err
	}

	rendered, err := c.Template(string(document))
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to render declaration at %s: %w", path, err)
	}

	return DecodeString(c, rendered)
}

func DecodeString(c config.Config, rendered string) (Manifest, error) {
	if err := checkDuplicateEnvKeys([]byte(rendered)); err != nil {
		return Manifest{}, err
	}

	var m Manifest
	if err := json.Unmarshal([]byte(rendered), &m); err != nil {
		return Manifest{}, err
	}

	if m.ServiceAccount == "" {
		m.ServiceAccount = c.Runtime.ServiceAccount
	}

	m.applyDefaults()

	if err := m.Validate(); err != nil {
		return Manifest{}, err
	}

	return m, nil
}

// encoding/json silently keeps the last value for a repeated key, which
// would hide a conflicting environment declaration. Walk the env object
// tokens and reject duplicates instead.
func checkDuplicateEnvKeys(data []byte) error {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return nil // let the standard unmarshal report shape errors
	}

	envData, ok := outer["env"]
	if !ok {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(envData))

	t, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return nil
	}

	seen := make(map[string]bool)
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return nil
		}

		key, ok := t.(string)
		if !ok {
			return nil
		}

		if seen[key] {
			return fmt.Errorf("duplicate env key: %q", key)
		}
		seen[key] = true

		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return nil
		}
	}

	return nil
}
