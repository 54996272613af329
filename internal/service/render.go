package service

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithXHTML()),
	)
	htmlSanitizer = bluemonday.UGCPolicy()
	textSanitizer = bluemonday.StrictPolicy()
)

// RenderRecommendationHTML 将模型返回的编号列表渲染为安全的 HTML 片段，原文保持不变。
func RenderRecommendationHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return string(htmlSanitizer.SanitizeBytes(buf.Bytes())), nil
}

// sanitizePlainText 去除自由文本中的标签并还原实体，返回去除首尾空白后的结果。
func sanitizePlainText(value string) string {
	stripped := textSanitizer.Sanitize(value)
	return strings.TrimSpace(html.UnescapeString(stripped))
}
