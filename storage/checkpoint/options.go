package checkpoint

import (
	"errors"

	"github.com/evilsocket/meepo/storage"

	"github.com/evilsocket/islazy/fs"
)

// Options is the checkpoint section of a backend configuration:
//
//	checkpoint:
//	  path: ~/tables/users.ckpt
//	  merge: false
type Options struct {
	Path string `yaml:"path"`
	// Merge upserts the persisted entries into the current state on
	// Load instead of replacing it.
	Merge bool `yaml:"merge"`
}

// OptionsFrom reads the checkpoint sections of cfgs in order, each one
// overriding the fields the previous ones set, and expands the path.
func OptionsFrom(cfgs ...storage.Config) (Options, error) {
	opts := Options{}
	for _, cfg := range cfgs {
		if err := cfg.Lookup("checkpoint").Decode(&opts); err != nil {
			return opts, err
		}
	}

	if opts.Path == "" {
		return opts, errors.New("checkpoint.path is not set")
	}

	path, err := fs.Expand(opts.Path)
	if err != nil {
		return opts, err
	}
	opts.Path = path

	return opts, nil
}
