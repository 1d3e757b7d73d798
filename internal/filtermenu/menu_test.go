package filtermenu

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMenu(t *testing.T) Menu {
	t.Helper()
	menu, err := Parse([]byte(`{
		"求职类型": [{"全职": "jt=1"}, {"实习": "jt=3"}],
		"学历要求": [{"本科": "dg=203"}, {"硕士": "dg=204"}],
		"公司规模": [{"10000人以上": "sc=306"}]
	}`))
	require.NoError(t, err)
	return menu
}

func TestComposeSingleOption(t *testing.T) {
	menu := testMenu(t)
	url, err := menu.Compose("https://www.zhipin.com/web/geek/job?query=NLP", map[string][]string{
		"求职类型": {"全职"},
	})
	require.NoError(t, err)
	assert.Contains(t, url, "jt=1")
	assert.Equal(t, "https://www.zhipin.com/web/geek/job?query=NLP&jt=1", url)
}

func TestComposeUnknownOption(t *testing.T) {
	menu := testMenu(t)
	_, err := menu.Compose("https://example.com?", map[string][]string{
		"求职类型": {"兼职"},
	})
	var uoe *UnknownOptionError
	require.ErrorAs(t, err, &uoe)
	assert.Equal(t, "求职类型", uoe.Category)
	assert.Equal(t, "兼职", uoe.Option)
}

func TestComposeUnknownCategory(t *testing.T) {
	menu := testMenu(t)
	_, err := menu.Compose("https://example.com?", map[string][]string{
		"福利待遇": {"五险一金"},
	})
	var uoe *UnknownOptionError
	require.ErrorAs(t, err, &uoe)
	assert.Equal(t, "福利待遇", uoe.Category)
	assert.Empty(t, uoe.Option)
}

func TestComposeMergesOptionsInCategory(t *testing.T) {
	menu := testMenu(t)
	url, err := menu.Compose("https://example.com?", map[string][]string{
		"学历要求": {"本科", "硕士"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com?dg=203,204", url)
}

func TestComposeBaseJoining(t *testing.T) {
	menu := testMenu(t)
	sel := map[string][]string{"求职类型": {"全职"}}

	tests := []struct {
		base string
		want string
	}{
		{"https://example.com/jobs?", "https://example.com/jobs?jt=1"},
		{"https://example.com/jobs?city=100010000", "https://example.com/jobs?city=100010000&jt=1"},
		{"https://example.com/jobs", "https://example.com/jobs?jt=1"},
	}
	for _, tt := range tests {
		url, err := menu.Compose(tt.base, sel)
		require.NoError(t, err)
		assert.Equal(t, tt.want, url)
	}
}

func TestComposeSkipsEmptySelections(t *testing.T) {
	menu := testMenu(t)
	url, err := menu.Compose("https://example.com?", map[string][]string{
		"求职类型": {"全职"},
		"学历要求": {},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com?jt=1", url)
}

func TestComposeDeterministic(t *testing.T) {
	menu := testMenu(t)
	sel := map[string][]string{
		"求职类型": {"全职"},
		"学历要求": {"本科"},
		"公司规模": {"10000人以上"},
	}
	first, err := menu.Compose("https://example.com?", sel)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := menu.Compose("https://example.com?", sel)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, 1, strings.Count(first, "jt=1"))
}

func TestComposeNoSelections(t *testing.T) {
	menu := testMenu(t)
	url, err := menu.Compose("https://example.com?query=go", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com?query=go", url)
}

func TestComposeMalformedFragment(t *testing.T) {
	menu, err := Parse([]byte(`{"求职类型": [{"全职": "jt-1"}]}`))
	require.NoError(t, err)
	_, err = menu.Compose("https://example.com?", map[string][]string{"求职类型": {"全职"}})
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "select_menu.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"求职类型": [{"全职": "jt=1"}]}`), 0o644))

	menu, err := Load(path)
	require.NoError(t, err)
	url, err := menu.Compose("https://example.com?", map[string][]string{"求职类型": {"全职"}})
	require.NoError(t, err)
	assert.Contains(t, url, "jt=1")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
