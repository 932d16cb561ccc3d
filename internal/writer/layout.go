package writer

import (
	"fmt"

	"github.com/starford/inkwell/internal/apperr"
	"github.com/starford/inkwell/internal/models"
)

// Layout is the language of the prompts and the field markers the model is
// asked to answer with.
type Layout struct {
	Name string

	TitleMarker   string
	BodyMarker    string
	SummaryMarker string

	// Suggestion lines look like SuggestionPrefix + N + SuggestionColon + text.
	SuggestionPrefix string
	SuggestionColon  string

	PlaceholderTitle   string
	PlaceholderSummary string

	// Unavailable is returned when the provider cannot produce a draft.
	Unavailable models.Draft
	// Fallback is returned when no plot suggestion can be produced.
	Fallback []string

	prompts prompts
}

type prompts struct {
	generateSystem string
	improveSystem  string
	suggestSystem  string

	// Section headings for the generation prompt, in prompt order.
	novel, characters, settings, outlines, recent, context, requirements string
	generateTail                                                         string

	improve string // title, content, feedback, knowledge
	suggest string // knowledge, current context
}

// Chinese is the default layout.
var Chinese = Layout{
	Name:               "zh",
	TitleMarker:        "标题：",
	BodyMarker:         "正文：",
	SummaryMarker:      "摘要：",
	SuggestionPrefix:   "建议",
	SuggestionColon:    "：",
	PlaceholderTitle:   "新章节",
	PlaceholderSummary: "章节摘要",
	Unavailable: models.Draft{
		Title:   "新章节",
		Content: "这是一个示例章节内容。由于AI服务暂时不可用，这里显示的是默认内容。",
		Summary: "示例章节摘要。",
	},
	Fallback: []string{
		"深入探索主角的内心冲突，通过一个重要的选择来推进角色发展。",
		"引入新的次要角色或势力，为故事增加复杂性和新的可能性。",
		"回到之前埋下的伏笔，通过揭示隐藏信息来推动情节发展。",
	},
	prompts: prompts{
		generateSystem: "你是一个专业的小说创作助手，擅长根据背景信息创作高质量的小说章节。",
		improveSystem:  "你是一个专业的小说编辑，擅长根据反馈改进内容质量。",
		suggestSystem:  "你是一个经验丰富的小说策划师，擅长设计引人入胜的情节发展。",
		novel:          "小说背景：",
		characters:     "人物信息：",
		settings:       "世界观设定：",
		outlines:       "大纲信息：",
		recent:         "最近章节：",
		context:        "创作要求：",
		requirements:   "特殊要求：",
		generateTail: `请创作一个章节，包含：
1. 引人入胜的标题
2. 1500-2000字的正文内容
3. 简洁的章节摘要

格式要求：
标题：[章节标题]
正文：[章节正文内容]
摘要：[章节摘要]
`,
		improve: `请根据以下反馈改进章节内容：

原始内容：
标题：%s
正文：%s

反馈意见：%s

背景信息：%s

请提供改进后的内容，格式如下：
标题：[改进后的标题]
正文：[改进后的正文]
摘要：[改进后的摘要]
`,
		suggest: `基于以下背景信息和当前情况，请提供3个可能的情节发展建议：

背景信息：%s

当前情况：%s

请提供3个不同的发展方向，每个建议应该：
1. 符合已建立的世界观和人物设定
2. 推进主要情节发展
3. 具有足够的戏剧冲突
4. 保持逻辑连贯性

格式：
建议1：[详细描述]
建议2：[详细描述]
建议3：[详细描述]
`,
	},
}

// English asks the model for an English chapter with English markers.
var English = Layout{
	Name:               "en",
	TitleMarker:        "Title:",
	BodyMarker:         "Body:",
	SummaryMarker:      "Summary:",
	SuggestionPrefix:   "Suggestion",
	SuggestionColon:    ":",
	PlaceholderTitle:   "New Chapter",
	PlaceholderSummary: "Chapter summary",
	Unavailable: models.Draft{
		Title:   "New Chapter",
		Content: "This is a sample chapter. The writing service is currently unavailable, so default content is shown.",
		Summary: "Sample chapter summary.",
	},
	Fallback: []string{
		"Explore the protagonist's inner conflict and move their arc forward through a difficult choice.",
		"Introduce a new minor character or faction that adds complexity and opens new possibilities.",
		"Return to an earlier piece of foreshadowing and push the plot forward by revealing hidden information.",
	},
	prompts: prompts{
		generateSystem: "You are a professional fiction writing assistant who writes high-quality novel chapters from background material.",
		improveSystem:  "You are a professional fiction editor who improves chapters based on reviewer feedback.",
		suggestSystem:  "You are an experienced story planner who designs compelling plot developments.",
		novel:          "Novel background:",
		characters:     "Characters:",
		settings:       "World settings:",
		outlines:       "Outline:",
		recent:         "Recent chapters:",
		context:        "What to write:",
		requirements:   "Extra requirements:",
		generateTail: `Write one chapter containing:
1. A compelling title
2. A body of 1500-2000 words
3. A short chapter summary

Answer in exactly this format:
Title: [chapter title]
Body: [chapter text]
Summary: [chapter summary]
`,
		improve: `Improve the chapter below according to the feedback.

Original chapter:
Title: %s
Body: %s

Feedback: %s

Background: %s

Answer in exactly this format:
Title: [improved title]
Body: [improved text]
Summary: [improved summary]
`,
		suggest: `Based on the background and the current situation below, propose 3 possible plot developments.

Background: %s

Current situation: %s

Each suggestion should:
1. Fit the established world and characters
2. Advance the main plot
3. Carry enough dramatic conflict
4. Stay logically coherent

Format:
Suggestion1: [description]
Suggestion2: [description]
Suggestion3: [description]
`,
	},
}

// LayoutByName returns the layout registered under name. An empty name
// selects Chinese.
func LayoutByName(name string) (Layout, error) {
	switch name {
	case "", Chinese.Name:
		return Chinese, nil
	case English.Name:
		return English, nil
	default:
		return Layout{}, fmt.Errorf("writer: unknown layout %q: %w", name, apperr.ErrInvalid)
	}
}
