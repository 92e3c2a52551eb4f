package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/frontship/frontship/internal/topology"
)

// FileSink collects the emitted fragments into a single JSON document on
// disk for the host's template compiler to pick up. Attaching replaces the
// Resources and Outputs sections wholesale, so resources that stop being
// emitted (a disabled host-forward function, a dropped cache policy) do not
// linger from an earlier run.
type FileSink struct {
	Path string

	doc sinkDocument
}

type sinkDocument struct {
	Functions map[string]FunctionSpec      `json:"Functions,omitempty"`
	Resources map[string]topology.Resource `json:"Resources,omitempty"`
	Outputs   map[string]topology.Output   `json:"Outputs,omitempty"`
}

// NewFileSink creates a sink writing to path, loading any document an
// earlier invocation already wrote so registered functions survive across
// commands.
func NewFileSink(path string) (*FileSink, error) {
	s := &FileSink{Path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &s.doc); err != nil {
		return nil, fmt.Errorf("parse existing template %s: %w", path, err)
	}
	return s, nil
}

func (s *FileSink) AttachTemplate(t *topology.Template) error {
	s.doc.Resources = make(map[string]topology.Resource, len(t.Resources))
	for name, r := range t.Resources {
		s.doc.Resources[name] = r
	}
	s.doc.Outputs = make(map[string]topology.Output, len(t.Outputs))
	for name, o := range t.Outputs {
		s.doc.Outputs[name] = o
	}
	return s.flush()
}

func (s *FileSink) AddFunction(spec FunctionSpec) error {
	if s.doc.Functions == nil {
		s.doc.Functions = map[string]FunctionSpec{}
	}
	s.doc.Functions[spec.Name] = spec
	return s.flush()
}

func (s *FileSink) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0o644)
}
