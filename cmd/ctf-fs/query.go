package main

import (
	"context"
	"fmt"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffval"

	"github.com/barometric/ctf-fs/ctf/ctfquery"
)

// queryConfig is `ctf-fs query --path PATH`: an out-of-band metadata-info
// introspection query over a trace's metadata file.
type queryConfig struct {
	*rootConfig

	Path string
}

func (cfg *queryConfig) register(fs *ff.FlagSet) {
	fs.AddFlag(ff.FlagConfig{
		LongName:    "path",
		Value:       ffval.NewValue(&cfg.Path),
		Usage:       "path to a trace's metadata file",
		Placeholder: "PATH",
	})
}

func (cfg *queryConfig) Exec(ctx context.Context, args []string) error {
	if cfg.Path == "" {
		return fmt.Errorf("--path is required")
	}

	// The packetized-metadata decoder is an out-of-scope external
	// collaborator; a plain-text metadata file still answers
	// correctly without one.
	info, err := ctfquery.Query(cfg.Path, nil)
	if err != nil {
		return fmt.Errorf("metadata-info %s: %w", cfg.Path, err)
	}

	fmt.Fprintf(cfg.stdout, "is-packetized: %v\n\n%s\n", info.IsPacketized, info.Text)
	return nil
}
