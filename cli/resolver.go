package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/tidwall/jsonc"

	"github.com/ardnew/non/lang"
	"github.com/ardnew/non/log"
)

// resolve returns a [kong.ConfigurationLoader] for config files written in
// the non language itself.
//
// The record with the given id is resolved and each of its flat fields
// becomes the value of the flag with the same name. Identifiers cannot
// contain hyphens, so underscores stand in for them:
//
//	config:
//	.log_level 'debug'
//	.log_format 'json'
//	.indent '4'
//
// is equivalent to --log-level=debug --log-format=json --indent=4.
// Command-line flags override config file values.
//
// A file that fails to compile, or has no such record, yields an empty
// resolver so that a broken config never prevents the CLI from starting.
func resolve(ctx context.Context, id string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		table, err := lang.ParseReader(ctx, r)
		if err != nil {
			log.WarnContext(ctx, "config ignored", slog.Any("error", err))

			return config{}, nil
		}

		res, err := table.Resolve(ctx, id)
		if err != nil {
			if !errors.Is(err, lang.ErrUndefinedRecord) {
				log.WarnContext(ctx, "config ignored", slog.Any("error", err))
			}

			return config{}, nil
		}

		return config(res.Map()), nil
	}
}

// config implements [kong.Resolver] over the resolved fields of a record.
type config map[string]string

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	for _, name := range []string{
		flag.Name,
		strings.ReplaceAll(flag.Name, "-", "_"),
	} {
		if value, ok := r[name]; ok {
			return value, nil
		}
	}

	return nil, nil //nolint:nilnil
}

// loadJSONC is a [kong.ConfigurationLoader] for JSON config files that may
// contain comments and trailing commas.
func loadJSONC(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return kong.JSON(bytes.NewReader(jsonc.ToJSON(data)))
}
