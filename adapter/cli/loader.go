package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/security"
)

// taskFile is the object form of a task file.
type taskFile struct {
	Strategy string             `json:"strategy"`
	Tasks    []domain.TaskInput `json:"tasks"`
}

// LoadTasksFile reads tasks from a JSON or YAML file. The file holds either
// a list of tasks or an object with a "tasks" list and an optional
// "strategy". Tasks without an id are numbered after the explicit ones.
func LoadTasksFile(path string) ([]domain.Task, string, error) {
	data, err := security.ReadTaskFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	tasks, strategy, err := decodeTasks(data)
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return tasks, strategy, nil
}

func decodeTasks(data []byte) ([]domain.Task, string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []domain.Task{}, "", nil
	}

	var f taskFile
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &f.Tasks); err != nil {
			return nil, "", err
		}
	} else if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil, "", err
	}

	return domain.BuildTasks(f.Tasks, domain.NewIDAllocator()), f.Strategy, nil
}

// yamlToJSON re-encodes YAML as JSON so one set of decoders serves both.
func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	normalized, err := normalizeYAML(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}

func normalizeYAML(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			n, err := normalizeYAML(val)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			n, err := normalizeYAML(val)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			n, err := normalizeYAML(val)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case time.Time:
		return t.Format(domain.DateLayout), nil
	default:
		return v, nil
	}
}
