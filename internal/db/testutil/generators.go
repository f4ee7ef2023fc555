// Package testutil provides shared rapid generators for store and API tests.
// The string generators are aggressive on purpose: values must survive the
// store and the JSON layer byte for byte.
package testutil

import (
	"strings"

	"pgregory.net/rapid"
)

// ArbitraryString generates strings including:
// - Empty strings and embedded null bytes
// - Unicode (CJK, RTL, emoji, combining marks)
// - Control characters and whitespace variations
// - SQL injection attempts
// - Markup with and without script payloads
// - Long strings
func ArbitraryString() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.String(),
		rapid.Just(""),
		rapid.Just("test\x00test"),
		rapid.StringMatching(`[a-zA-Z0-9 ]{0,100}`),
		rapid.StringMatching(`[\x01-\x1F]{1,10}`),
		arbitrarySQLInjection(),
		ArbitraryMarkup(),
		arbitraryUnicode(),
		arbitraryWhitespace(),
		arbitraryLongString(),
	)
}

// ArbitraryNonEmptyString is like ArbitraryString but never empty.
// Use for fields that must be present, like folder and note names.
func ArbitraryNonEmptyString() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.StringN(1, 100, 200),
		rapid.Just("test\x00test"),
		rapid.StringMatching(`[a-zA-Z0-9 ]{1,100}`),
		arbitrarySQLInjection(),
		ArbitraryMarkup(),
		arbitraryUnicode(),
		arbitraryLongString(),
	)
}

// ArbitraryPlainText generates non-empty strings without angle brackets.
// The sanitizer must return these unchanged.
func ArbitraryPlainText() *rapid.Generator[string] {
	return rapid.Map(ArbitraryNonEmptyString(), func(s string) string {
		s = strings.NewReplacer("<", "", ">", "").Replace(s)
		if s == "" {
			return "plain"
		}
		return s
	})
}

// ArbitraryMarkup generates HTML fragments mixing allowed formatting with
// script payloads and event handler attributes.
func ArbitraryMarkup() *rapid.Generator[string] {
	return rapid.SampledFrom([]string{
		`<script>alert("xss");</script>`,
		`<SCRIPT SRC=//evil.example/x.js></SCRIPT>`,
		`<img src="https://example.com/a.png" onerror="alert(1)">`,
		`<a href="javascript:alert(1)">click</a>`,
		`<a href="https://example.com" onclick="steal()">link</a>`,
		`<strong>bold</strong> and <em>italic</em>`,
		`<iframe src="https://evil.example"></iframe>`,
		`<svg onload=alert(1)>`,
		`<style>body{display:none}</style>`,
		`<!-- hidden --><p>para</p>`,
		`<div style="color:red">styled</div>`,
		`a < b && c > d`,
		`<<script>script>alert(1)<</script>/script>`,
		`<p>unclosed`,
		`</p>stray close`,
		`<!DOCTYPE html><html><body>x</body></html>`,
	})
}

func arbitrarySQLInjection() *rapid.Generator[string] {
	return rapid.SampledFrom([]string{
		`' OR 1=1 --`,
		`'; DROP TABLE notes; --`,
		`'; DROP TABLE folders; --`,
		`" OR "1"="1`,
		`1; SELECT * FROM folders`,
		`admin'--`,
		`' UNION SELECT id, name FROM folders --`,
		`' OR ''='`,
		`%27%20OR%20%271%27%3D%271`,
		`$1`,
		`?`,
	})
}

func arbitraryUnicode() *rapid.Generator[string] {
	return rapid.SampledFrom([]string{
		"日本語",
		"中文测试",
		"العربية",
		"עברית",
		"🔥🎉💻🚀",
		"emoji🔥in🎉middle",
		"Zürich",
		"Москва",
		"한국어",
		"\u200B",
		"\uFEFF",
		"a\u0300",
		"\u202E" + "reversed" + "\u202C",
		"\U0001F468\u200D\U0001F469\u200D\U0001F467\u200D\U0001F466",
		"\U0001F1FA\U0001F1F8",
		"test space",
		"line separator",
		"math∑∏∫",
	})
}

func arbitraryWhitespace() *rapid.Generator[string] {
	return rapid.SampledFrom([]string{
		" ",
		"\t",
		"\n",
		"\r\n",
		" \t \n ",
		"  test  ",
		"line1\nline2",
		"　",
		"\v",
		"\f",
	})
}

// arbitraryLongString stays below the 1 MiB request body limit.
func arbitraryLongString() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		length := rapid.SampledFrom([]int{1000, 10000, 100000}).Draw(t, "length")
		return strings.Repeat("abcdefghij", length/10)
	})
}
