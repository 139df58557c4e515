package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/connect360/tagdrop/service"
)

func TestSanitizeDropContent(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"Plain",
			"hello there",
			"hello there",
		},
		{
			"Collapses CRLF",
			"line one\r\nline two",
			"line one line two",
		},
		{
			"Collapses Whitespace Runs",
			"  a \t\t b \n\n c  ",
			"a b c",
		},
		{
			"Escapes Reserved Characters",
			`<script>alert("x") & 'y'</script>`,
			"&lt;script&gt;alert(&quot;x&quot;) &amp; &#39;y&#39;&lt;/script&gt;",
		},
		{
			"No Double Escaping",
			"&amp;",
			"&amp;amp;",
		},
		{
			"Whitespace Only",
			" \r\n\t ",
			"",
		},
		{
			"Unicode Preserved",
			"søt katt 🐈",
			"søt katt 🐈",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.SanitizeDropContent(tc.raw))
		})
	}
}
