package cli_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/macropower/folio/internal/cli"
)

func TestErrorHandler(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		err      error
		wantHint string
	}{
		"invalid config": {
			err:      fmt.Errorf("%w %q: bad kind", cli.ErrInvalidConfig, "/tmp/config.yaml"),
			wantHint: "--write-config",
		},
		"no book": {
			err:      cli.ErrNoBook,
			wantHint: "--help",
		},
		"unknown flag": {
			err:      errors.New("unknown flag: --pages"),
			wantHint: "--help",
		},
		"too many books": {
			err:      errors.New("accepts at most 1 arg(s), received 2"),
			wantHint: "--help",
		},
		"other error": {
			err: errors.New("load book: no sections"),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var out strings.Builder

			cli.ErrorHandler(&out, fang.Styles{}, tc.err)

			got := ansi.Strip(out.String())
			assert.Contains(t, got, tc.err.Error())

			if tc.wantHint == "" {
				assert.NotContains(t, got, "Try")
				return
			}

			assert.Contains(t, got, "Try")
			assert.Contains(t, got, tc.wantHint)
		})
	}
}
