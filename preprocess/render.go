package preprocess

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"mdjt/state"
	"mdjt/table"
)

// Render outputs markdown for a single table spec file, so authors could see
// what would be put into the chapter.
func Render(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("render")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no table spec file has been specified")
	}
	dst := cmd.Args().Get(1)
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if err := env.Rpt.StoreCopy("tables/"+filepath.Base(src), src); err != nil {
		log.Warn("Unable to store table spec in debug report", zap.String("file", src), zap.Error(err))
	}

	spec, err := table.Load(src)
	if err != nil {
		return err
	}

	opts := table.Options{EscapePipes: env.Cfg.Table.EscapePipes || cmd.Bool("escape-pipes")}
	md := spec.Render(opts)

	if env.Cfg.Table.Verify || cmd.Bool("verify") {
		for _, problem := range spec.Verify(md, opts) {
			log.Warn("Rendered table may be broken", zap.String("file", src), zap.String("problem", problem))
		}
	}

	if len(dst) == 0 {
		if _, err := env.Out.Write([]byte(md)); err != nil {
			return fmt.Errorf("unable to write table: %w", err)
		}
		return nil
	}

	if err := atomic.WriteFile(dst, strings.NewReader(md)); err != nil {
		return fmt.Errorf("unable to write table to '%s': %w", dst, err)
	}
	log.Info("Table rendered", zap.String("source", src), zap.String("destination", dst), zap.Int("rows", len(spec.Rows)))
	return nil
}
