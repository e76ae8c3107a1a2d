// Package i18n загружает каталоги сообщений и разрешает пользовательские
// строки (подписи счёта, темы и тексты писем) по языку профиля.
// Неизвестный или пустой язык всегда откатывается к английскому.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Поддерживаемые языки каталога. Порядок важен: первый — язык по умолчанию.
var supported = []string{"en", "ru", "es"}

// Catalog инкапсулирует bundle go-i18n с загруженными каталогами.
type Catalog struct {
	bundle *i18n.Bundle
}

// NewCatalog создаёт каталог и загружает встроенные файлы переводов.
func NewCatalog() (*Catalog, error) {
	const op = "i18n.NewCatalog"

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for _, lang := range supported {
		path := fmt.Sprintf("locales/active.%s.json", lang)
		if _, err := bundle.LoadMessageFileFS(localeFS, path); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return &Catalog{bundle: bundle}, nil
}

// Message возвращает перевод ключа для языка lang.
// Для неизвестного языка используется английский; для неизвестного ключа
// возвращается сам ключ, чтобы пропуск в каталоге был виден, а не фатален.
func (c *Catalog) Message(lang, key string) string {
	loc := i18n.NewLocalizer(c.bundle, Normalize(lang), "en")
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		return key
	}
	return msg
}

// Normalize приводит язык профиля к поддерживаемому тегу каталога.
func Normalize(lang string) string {
	for _, s := range supported {
		if lang == s {
			return s
		}
	}
	return "en"
}
