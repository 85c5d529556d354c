// ctf-fs is a CLI for discovering CTF traces on a filesystem, mirroring
// them through the source/sink pipeline, and querying their metadata.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	var (
		ctx    = context.Background()
		stdout = os.Stdout
		stderr = os.Stderr
		args   = os.Args[1:]
	)
	err := exec(ctx, stdout, stderr, args)
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.As(err, &(run.SignalError{})):
		os.Exit(0)
	case err != nil:
		fmt.Fprintf(stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func exec(ctx context.Context, stdout, stderr io.Writer, args []string) (err error) {
	root := &rootConfig{stdout: stdout, stderr: stderr}
	rootFlags := ff.NewFlagSet("ctf-fs")
	root.registerBaseFlags(rootFlags)
	rootCommand := &ff.Command{
		Name:      "ctf-fs",
		ShortHelp: "discover, mirror, and query CTF traces on a filesystem",
		Flags:     rootFlags,
	}

	runCfg := &runConfig{rootConfig: root}
	runFlags := ff.NewFlagSet("run").SetParent(rootFlags)
	runCfg.register(runFlags)
	rootCommand.Subcommands = append(rootCommand.Subcommands, &ff.Command{
		Name:      "run",
		ShortHelp: "mirror every trace under --path into --out",
		LongHelp:  "Discover traces under --path and drive each one through the source iterator into a filesystem sink rooted at --out, until every stream reaches its end or the process is interrupted.",
		Flags:     runFlags,
		Exec:      runCfg.Exec,
	})

	queryCfg := &queryConfig{rootConfig: root}
	queryFlags := ff.NewFlagSet("query").SetParent(rootFlags)
	queryCfg.register(queryFlags)
	rootCommand.Subcommands = append(rootCommand.Subcommands, &ff.Command{
		Name:      "query",
		ShortHelp: "print a trace's metadata-info",
		LongHelp:  "Read a trace's metadata file and print whether it is packetized along with its decoded text.",
		Flags:     queryFlags,
		Exec:      queryCfg.Exec,
	})

	showHelp := true
	defer func() {
		errHelp := errors.Is(err, ff.ErrHelp) || errors.Is(err, ff.ErrNoExec)
		if showHelp || errHelp {
			fmt.Fprintf(stderr, "\n%s\n", ffhelp.Command(rootCommand))
		}
		if errHelp {
			err = nil
		}
	}()

	if err := rootCommand.Parse(args, ff.WithEnvVarPrefix("CTF_FS")); err != nil {
		return err
	}

	showHelp = false

	return rootCommand.Run(ctx)
}
