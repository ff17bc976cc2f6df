// Package preprocess implements mdBook side of the preprocessor protocol.
package preprocess

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"mdjt/book"
	"mdjt/expand"
	"mdjt/misc"
	"mdjt/state"
)

// Run is the default action: book comes on stdin, processed book goes to
// stdout. Nothing is written to stdout if there is an error.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("preprocess")

	if cmd.Args().Len() > 0 {
		log.Warn("Malformed command line, unexpected arguments", zap.Strings("ignoring", cmd.Args().Slice()))
	}

	log.Debug("Processing starting")
	defer func(start time.Time) {
		log.Debug("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, env, log)
}

// process handles the protocol independently of CLI framework.
func process(ctx context.Context, env *state.LocalEnv, log *zap.Logger) error {
	data, err := io.ReadAll(env.In)
	if err != nil {
		return fmt.Errorf("unable to read preprocessor input: %w", err)
	}
	env.Rpt.StoreData("book/input.json", data)

	pctx, b, err := book.ParseInput(bytes.NewReader(data))
	if err != nil {
		return err
	}

	log.Debug("Book received",
		zap.String("root", pctx.Root),
		zap.String("renderer", pctx.Renderer),
		zap.String("mdbook", pctx.MdbookVersion),
		zap.Int("chapters", b.Chapters()))

	if !pctx.CompatibleVersion() {
		log.Warn("Preprocessor was built for different mdBook version",
			zap.String("expected", book.ProtocolVersion), zap.String("actual", pctx.MdbookVersion))
	}

	cfg := env.Cfg.Table
	if err := applyBookOptions(&cfg, pctx.PreprocessorOptions(misc.GetPreprocessorName())); err != nil {
		return fmt.Errorf("unable to use book.toml settings: %w", err)
	}
	log.Debug("Table settings", zap.Bool("expand_all", cfg.ExpandAll), zap.Bool("escape_pipes", cfg.EscapePipes),
		zap.Bool("verify", cfg.Verify), zap.String("base", cfg.Base))

	if env.Rpt != nil {
		env.Rpt.StoreData("book/tree-in.txt", []byte(b.Dump()))
	}

	if err := expand.New(cfg, pctx, log, env.Rpt).Book(ctx, b); err != nil {
		return err
	}

	if env.Rpt != nil {
		env.Rpt.StoreData("book/tree-out.txt", []byte(b.Dump()))
	}

	// buffer whole output so failure to encode does not leave partial book
	// on stdout
	var out bytes.Buffer
	if err := book.WriteBook(&out, b); err != nil {
		return err
	}
	env.Rpt.StoreData("book/output.json", out.Bytes())

	if _, err := env.Out.Write(out.Bytes()); err != nil {
		return fmt.Errorf("unable to write processed book: %w", err)
	}
	return nil
}

// Supports answers mdBook question whether particular renderer is supported.
// All of them are.
func Supports(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("preprocess")

	renderer := cmd.Args().Get(0)
	if len(renderer) == 0 {
		log.Warn("Renderer name is missing, assuming it is supported")
		return nil
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many renderers", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	log.Debug("Renderer is supported", zap.String("renderer", renderer))
	return nil
}
