package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}

func TestRenderMarkdown_PlainText(t *testing.T) {
	result := RenderMarkdown("Thank you! Your form has been submitted successfully.")
	assert.Contains(t, result, "<p>Thank you! Your form has been submitted successfully.</p>")
}

func TestRenderMarkdown_Emphasis(t *testing.T) {
	result := RenderMarkdown("We will call you within **two business days**.")
	assert.Contains(t, result, "<strong>two business days</strong>")
}

func TestRenderMarkdown_HardWraps(t *testing.T) {
	result := RenderMarkdown("Thank you!\nOur advisor will be in touch.")
	assert.Contains(t, result, "<br>")
}

func TestRenderMarkdown_Link(t *testing.T) {
	result := RenderMarkdown("[Read our FAQ](https://funds.example.com/faq)")
	assert.Contains(t, result, `href="https://funds.example.com/faq"`)
	assert.Contains(t, result, `target="_blank"`)
	assert.Contains(t, result, "Read our FAQ</a>")
}

func TestRenderMarkdown_StripsScript(t *testing.T) {
	result := RenderMarkdown("Done<script>alert('xss')</script>")
	assert.NotContains(t, result, "<script>")
	assert.NotContains(t, result, "alert")
}

func TestRenderMarkdown_StripsEventHandlers(t *testing.T) {
	result := RenderMarkdown(`<img src="x.png" onerror="alert(1)">`)
	assert.NotContains(t, result, "onerror")
}

func TestRenderMarkdown_StripsJavascriptLinks(t *testing.T) {
	result := RenderMarkdown("[click](javascript:alert(1))")
	assert.NotContains(t, result, "javascript:")
}
