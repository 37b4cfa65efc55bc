package yaml_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/folio/pkg/ui/theme"
	"github.com/macropower/folio/pkg/yaml"
)

type testConfig struct {
	Theme string `yaml:"theme"`
	Mouse bool   `yaml:"mouse"`
}

func TestDecodeError(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		src  string
		want []string
	}{
		"unknown field": {
			src: "theme: github\nfont: mono\nmouse: true\n",
			want: []string{
				"[2:1]",
				`unknown field "font"`,
				">  2 | font: mono",
			},
		},
		"wrong type": {
			src: "theme: github\nmouse: maybe\n",
			want: []string{
				"[2:",
				">  2 | mouse: maybe",
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var c testConfig

			err := yaml.NewDecoder(bytes.NewReader([]byte(tc.src))).Decode(&c)
			require.Error(t, err)

			ew := yaml.NewErrorWrapper(
				yaml.WithTheme(theme.New("onedark")),
				yaml.WithFormatter("noop"),
			)

			var yamlErr *yaml.Error
			require.ErrorAs(t, ew.Wrap(err), &yamlErr)

			msg := ansi.Strip(yamlErr.Error())
			for _, want := range tc.want {
				assert.Contains(t, msg, want)
			}

			assert.Contains(t, msg, "^")
		})
	}
}

func TestErrorWithoutToken(t *testing.T) {
	t.Parallel()

	err := yaml.NewError(errors.New("test error"))
	require.EqualError(t, err, "test error")
	require.ErrorIs(t, yaml.NewErrorWrapper().Wrap(err), err)

	other := errors.New("other")
	assert.Equal(t, other, yaml.NewErrorWrapper().Wrap(other))
	assert.NoError(t, yaml.NewErrorWrapper().Wrap(nil))
}

func TestEncoder(t *testing.T) {
	t.Parallel()

	var b bytes.Buffer

	enc := yaml.NewEncoder(&b)
	require.NoError(t, enc.Encode(testConfig{Theme: "github", Mouse: true}))
	require.NoError(t, enc.Close())

	assert.Equal(t, "theme: github\nmouse: true\n", b.String())
}
