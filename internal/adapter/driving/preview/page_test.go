package preview

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
)

func TestWritePage(t *testing.T) {
	var buf bytes.Buffer
	err := WritePage(&buf, "owner/repo <preview>", "## Summary\n\nAll good", []model.ReviewComment{
		{Path: "a.go", Line: 10, Body: "**first**"},
		{Path: "b.go", Body: "second"},
	})
	require.NoError(t, err)

	page := buf.String()
	assert.Contains(t, page, "<!DOCTYPE html>")
	assert.Contains(t, page, "<title>owner/repo &lt;preview&gt;</title>")
	assert.Contains(t, page, "<h2>Summary</h2>")
	assert.Contains(t, page, "a.go:10")
	assert.Contains(t, page, "<strong>first</strong>")
	assert.Contains(t, page, `<div class="anchor">b.go</div>`)
}

func TestWritePage_SanitizesComments(t *testing.T) {
	var buf bytes.Buffer
	err := WritePage(&buf, "t", "", []model.ReviewComment{
		{Path: "x.js", Line: 1, Body: `<img src=x onerror="alert(1)">`},
	})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "onerror")
}
