package preprocess

import (
	"errors"
	"fmt"
	"slices"

	"mdjt/config"
)

var errOptionType = errors.New("wrong option type")

var bases = []string{config.BaseCwd, config.BaseRoot, config.BaseSrc, config.BaseChapter}

// applyBookOptions superimposes [preprocessor.json-table] settings from
// book.toml on program configuration. Keys mdBook itself uses (command,
// renderers, before, after) and unknown keys are ignored.
func applyBookOptions(cfg *config.TableConfig, opts map[string]any) error {
	for key, value := range opts {
		var err error
		switch key {
		case "expand-all":
			err = setBool(&cfg.ExpandAll, key, value)
		case "escape-pipes":
			err = setBool(&cfg.EscapePipes, key, value)
		case "verify":
			err = setBool(&cfg.Verify, key, value)
		case "base":
			s, ok := value.(string)
			if !ok {
				return fmt.Errorf("%w: %q must be a string, got %T", errOptionType, key, value)
			}
			if !slices.Contains(bases, s) {
				return fmt.Errorf("unsupported %q value %q, expected one of %v", key, s, bases)
			}
			cfg.Base = s
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func setBool(dst *bool, key string, value any) error {
	b, ok := value.(bool)
	if !ok {
		return fmt.Errorf("%w: %q must be a boolean, got %T", errOptionType, key, value)
	}
	*dst = b
	return nil
}
