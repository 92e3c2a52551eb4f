package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frontship/frontship/internal/topology"
)

func TestFileSinkMergesAcrossPhases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.json")

	sink, err := NewFileSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.AddFunction(FunctionSpec{Name: "server", Handler: "build/server/index.js"}))

	// A later phase of the same run reopens the file and attaches resources.
	sink2, err := NewFileSink(path)
	require.NoError(t, err)
	require.NoError(t, sink2.AttachTemplate(&topology.Template{
		Resources: map[string]topology.Resource{
			topology.BucketResource: {Type: "AWS::S3::Bucket"},
		},
		Outputs: map[string]topology.Output{
			topology.OutputBucketName: {Value: topology.Ref(topology.BucketResource)},
		},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Functions map[string]FunctionSpec
		Resources map[string]topology.Resource
		Outputs   map[string]json.RawMessage
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc.Functions, "server")
	assert.Contains(t, doc.Resources, topology.BucketResource)
	assert.Contains(t, doc.Outputs, topology.OutputBucketName)
}

func TestFileSinkReattachDropsStaleResources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.json")
	sink, err := NewFileSink(path)
	require.NoError(t, err)

	// A first run with host forwarding emits the edge function.
	require.NoError(t, sink.AttachTemplate(&topology.Template{
		Resources: map[string]topology.Resource{
			topology.BucketResource:              {Type: "AWS::S3::Bucket"},
			topology.HostForwardFunctionResource: {Type: "AWS::CloudFront::Function"},
		},
	}))

	// A later run with forwarding disabled must not leave it behind.
	sink2, err := NewFileSink(path)
	require.NoError(t, err)
	require.NoError(t, sink2.AttachTemplate(&topology.Template{
		Resources: map[string]topology.Resource{
			topology.BucketResource: {Type: "AWS::S3::Bucket"},
		},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc struct {
		Resources map[string]topology.Resource
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc.Resources, topology.BucketResource)
	assert.NotContains(t, doc.Resources, topology.HostForwardFunctionResource)
}

func TestFileSinkRejectsCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewFileSink(path)
	require.Error(t, err)
}
