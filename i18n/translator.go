package i18n

import "sync"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "duplicate_index":
			return "インデックスが重複しています"
		case "missing_index":
			return "インデックスが指定されていません"
		case "conflicting_directive":
			return "ディレクティブが矛盾しています"
		case "invalid_codec":
			return "コーデックの指定が不正です"
		case "invalid_schema":
			return "スキーマが不正です"
		case "required":
			return "必須フィールドが不足しています"
		case "duplicate_key":
			return "キーが重複しています"
		case "unknown_key":
			return "未知のキーです"
		case "invalid_type":
			return "型が不正です"
		case "encode_error":
			return "エンコードに失敗しました"
		case "decode_error":
			return "デコードに失敗しました"
		case "parse_error":
			return "解析エラー"
		}
	default: // "en"
		switch code {
		case "duplicate_index":
			return "duplicate index"
		case "missing_index":
			return "missing index"
		case "conflicting_directive":
			return "conflicting directives"
		case "invalid_codec":
			return "invalid codec reference"
		case "invalid_schema":
			return "invalid schema"
		case "required":
			return "required field missing"
		case "duplicate_key":
			return "duplicate key"
		case "unknown_key":
			return "unknown key"
		case "invalid_type":
			return "invalid type"
		case "encode_error":
			return "encode failed"
		case "decode_error":
			return "decode failed"
		case "parse_error":
			return "parse error"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
