package i18n

import "sync/atomic"

// Translator retrieves localized messages for decode error codes.
// data provides optional metadata to embed in the message (for example,
// "got").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "not_a_map":
			return "マップではありません"
		case "required":
			return "必須メンバーが不足しています"
		case "expected_collection":
			return "コレクションが必要です"
		case "expected_map":
			return "マップが必要です"
		case "unexpected_collection":
			return "単一の値が必要です"
		case "coercion":
			return "型変換に失敗しました"
		case "validation":
			return "検証に失敗しました"
		case "duplicate_key":
			return "正規化後にキーが重複しています"
		case "unhashable":
			return "集合の要素として使用できません"
		}
	default: // "en"
		switch code {
		case "not_a_map":
			return "expected a map"
		case "required":
			return "missing required members"
		case "expected_collection":
			return "expected a collection"
		case "expected_map":
			return "expected a map"
		case "unexpected_collection":
			return "expected a single value"
		case "coercion":
			return "coercion failed"
		case "validation":
			return "validation failed"
		case "duplicate_key":
			return "duplicate key after normalization"
		case "unhashable":
			return "set element is not hashable"
		}
	}
	return code
}

var current atomic.Value // holds translatorBox

type translatorBox struct{ tr Translator }

func init() { current.Store(translatorBox{dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	current.Store(translatorBox{dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(translatorBox{tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return current.Load().(translatorBox).tr.Message(code, data)
}
