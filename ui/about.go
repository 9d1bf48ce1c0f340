package ui

import (
	"html/template"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// DefaultAbout is shown when no about text is configured.
const DefaultAbout = `### 대시보드 안내

공모전 제출 데이터를 업로드하면 **회사**, **주제**, **난이도** 등
항목별 건수와 제목 키워드를 확인할 수 있습니다.

- 왼쪽 필터에서 값을 여러 개 고르면 *또는* 조건으로 묶입니다.
- 서로 다른 필터는 *그리고* 조건으로 적용됩니다.
- CSV 또는 XLSX 파일을 지원합니다.
`

// RenderMarkdown converts about text to HTML. Raw HTML in the source is
// dropped and links open in a new tab.
func RenderMarkdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML | html.HrefTargetBlank,
	})
	return template.HTML(markdown.ToHTML([]byte(md), p, renderer))
}
