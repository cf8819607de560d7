package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "contentdesk version dev\n", out.String())
}

func TestFacetsCommand(t *testing.T) {
	t.Setenv("FIXTURES_DIR", "fixtures")

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"facets", "--collection", "news", "--category", "sports", "--subcategory", "football"})

	require.NoError(t, root.Execute())
	text := out.String()
	assert.Contains(t, text, "Sports")
	assert.Contains(t, text, "Football")
	assert.Contains(t, text, "Premier League")
}

func TestFacetsCommand_UnknownCollection(t *testing.T) {
	t.Setenv("FIXTURES_DIR", "fixtures")

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"facets", "--collection", "weather"})

	assert.Error(t, root.Execute())
}
