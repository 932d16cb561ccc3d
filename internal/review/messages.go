package review

import (
	"fmt"

	"github.com/starford/inkwell/internal/apperr"
)

// Messages are the human-readable texts the reviewer emits.
type Messages struct {
	Consistency string
	Logic       string
	Character   string
	Plot        string
	Quality     string
	Approved    string

	ContentTooShort string
	TitleTooShort   string

	CharacterDetails string
	TimelineDetails  string
	WorldviewDetails string

	Excellent        string
	Good             string
	Fair             string
	NeedsImprovement string
}

// ChineseMessages pair with the Chinese writer layout.
var ChineseMessages = Messages{
	Consistency: "内容与已有设定存在一致性问题，建议检查人物和世界观设定。",
	Logic:       "情节逻辑存在问题，建议重新梳理事件发展顺序。",
	Character:   "人物行为与性格设定不符，建议调整人物对话和行为描写。",
	Plot:        "情节发展不够连贯，建议加强与前文的联系。",
	Quality:     "写作质量需要提升，建议改进语言表达和段落结构。",
	Approved:    "内容质量良好，通过审核。",

	ContentTooShort: "内容过短，建议扩展到至少500字",
	TitleTooShort:   "标题过短或缺失",

	CharacterDetails: "人物一致性分析完成，未发现明显问题。",
	TimelineDetails:  "时间线一致性分析完成，未发现明显问题。",
	WorldviewDetails: "世界观一致性分析完成，未发现明显问题。",

	Excellent:        "优秀",
	Good:             "良好",
	Fair:             "一般",
	NeedsImprovement: "需要改进",
}

// EnglishMessages pair with the English writer layout.
var EnglishMessages = Messages{
	Consistency: "The content conflicts with established facts; check the characters and world settings.",
	Logic:       "The plot logic has problems; rework the order of events.",
	Character:   "Characters act against their established personalities; adjust their dialogue and behavior.",
	Plot:        "The plot does not flow well; strengthen the links to earlier chapters.",
	Quality:     "The writing needs work; improve the language and paragraph structure.",
	Approved:    "The content is good and passes review.",

	ContentTooShort: "Content is too short; expand it to at least 500 characters",
	TitleTooShort:   "Title is missing or too short",

	CharacterDetails: "Character consistency analysis finished with no obvious problems.",
	TimelineDetails:  "Timeline consistency analysis finished with no obvious problems.",
	WorldviewDetails: "Worldview consistency analysis finished with no obvious problems.",

	Excellent:        "excellent",
	Good:             "good",
	Fair:             "fair",
	NeedsImprovement: "needs improvement",
}

// MessagesFor returns the message set matching a writer layout name.
func MessagesFor(layout string) (Messages, error) {
	switch layout {
	case "", "zh":
		return ChineseMessages, nil
	case "en":
		return EnglishMessages, nil
	default:
		return Messages{}, fmt.Errorf("review: unknown layout %q: %w", layout, apperr.ErrInvalid)
	}
}
