package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/non/lang"
	"github.com/ardnew/non/log"
	"github.com/ardnew/non/profile"
)

// Init generates a configuration file holding the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	err = i.buildTable(ctx).Format(ctx, file)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.InfoContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// buildTable constructs a table with one record, named after
// [ConfigIdentifier], whose fields are the current global flag values.
func (i *Init) buildTable(ctx context.Context) *lang.Table {
	ktx := kongContextFrom(ctx)

	prefixIgnore := []string{"help", "version", profile.Tag}

	var fields []lang.Field

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		value, ok := flagValue(ktx, flag)
		if !ok {
			continue
		}

		// Literals have no escape sequences.
		if strings.ContainsRune(value, '\'') {
			log.WarnContext(ctx, "flag not representable",
				slog.String("flag", flag.Name),
				slog.String("value", value),
			)

			continue
		}

		name := strings.ReplaceAll(flag.Name, "-", "_")
		fields = append(fields, lang.NewField(name, lang.Lit(value)))
	}

	return lang.NewTable(lang.NewRecord(ConfigIdentifier, nil, fields...))
}

// flagValue returns the current value of flag as it would be written on the
// command line. Unset or empty values report false.
func flagValue(ktx *kong.Context, flag *kong.Flag) (string, bool) {
	switch v := ktx.FlagValue(flag).(type) {
	case nil:
		return "", false

	case string:
		return v, v != ""

	case []string:
		return strings.Join(v, ","), len(v) > 0

	case fmt.Stringer:
		return v.String(), true

	default:
		s := fmt.Sprint(v)

		return s, s != ""
	}
}
