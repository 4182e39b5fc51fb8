package storage

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testConfigDoc = `
dim: 8
capacity: 1024
checkpoint:
  path: /tmp/table.ckpt
  merge: true
`

type testSchema struct {
	Dim      int `yaml:"dim"`
	Capacity int `yaml:"capacity"`
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(testConfigDoc))
	require.NoError(t, err)
	require.False(t, cfg.IsZero())

	schema := testSchema{}
	require.NoError(t, cfg.Decode(&schema))
	require.Equal(t, testSchema{Dim: 8, Capacity: 1024}, schema)

	path := cfg.Lookup("checkpoint", "path")
	require.False(t, path.IsZero())
	require.Equal(t, "/tmp/table.ckpt", path.Node().Value)

	require.True(t, cfg.Lookup("checkpoint", "nope").IsZero())
	require.True(t, cfg.Lookup("dim", "deeper").IsZero())
	require.Equal(t, cfg.Node(), cfg.Lookup().Node())

	_, err = ParseConfig([]byte("dim: [1, 2"))
	require.Equal(t, CodeInvalidArgument, CodeOf(err))
}

func TestEmptyConfig(t *testing.T) {
	for _, cfg := range []Config{{}, NewConfig(nil), mustParse(t, "")} {
		require.True(t, cfg.IsZero())
		require.Nil(t, cfg.Node())

		schema := testSchema{Dim: 3}
		require.NoError(t, cfg.Decode(&schema))
		require.Equal(t, 3, schema.Dim)

		data, err := cfg.Marshal()
		require.NoError(t, err)
		require.Empty(t, data)
	}
}

func TestConfigMarshal(t *testing.T) {
	cfg := mustParse(t, testConfigDoc)
	data, err := cfg.Lookup("checkpoint").Marshal()
	require.NoError(t, err)

	back := mustParse(t, string(data))
	require.Equal(t, "true", back.Lookup("merge").Node().Value)
}

func TestLoadConfigFile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "table.yml")
	require.NoError(t, ioutil.WriteFile(fileName, []byte(testConfigDoc), 0644))

	cfg, err := LoadConfigFile(fileName)
	require.NoError(t, err)
	require.Equal(t, "1024", cfg.Lookup("capacity").Node().Value)

	_, err = LoadConfigFile("/lulzlulz.yml")
	require.Equal(t, CodeInvalidArgument, CodeOf(err))
}

func mustParse(t *testing.T, doc string) Config {
	cfg, err := ParseConfig([]byte(doc))
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}
