package cli

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"
)

const dateLayout = "2006-01-02"

// newFlagSet はエラー時に戻り値で返すFlagSetを生成する。
func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

// parseFlags はargsをパースし、失敗した場合はErrUsageでラップして返す。
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return fmt.Errorf("%w: hotelctl %s", ErrUsage, fs.Name())
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// requireFlags は未指定の必須フラグがあればErrUsageを返す。
func requireFlags(fs *flag.FlagSet, names ...string) error {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, name := range names {
		if !set[name] {
			return fmt.Errorf("%w: hotelctl %s: -%s は必須です", ErrUsage, fs.Name(), name)
		}
	}
	return nil
}

// printJSON はvをインデント付きのJSONとしてwに出力する。
func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("JSONの生成に失敗: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func today() string {
	return time.Now().Format(dateLayout)
}
