package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Message(t *testing.T) {
	catalog, err := NewCatalog()
	require.NoError(t, err)

	tests := []struct {
		name string
		lang string
		key  string
		want string
	}{
		{name: "english label", lang: "en", key: "invoice.task.header", want: "Task"},
		{name: "russian label", lang: "ru", key: "invoice.task.header", want: "Задача"},
		{name: "spanish label", lang: "es", key: "invoice.task.header", want: "Tarea"},
		{name: "unsupported language falls back to english", lang: "de", key: "invoice.task.header", want: "Task"},
		{name: "empty language falls back to english", lang: "", key: "invoice.to.label", want: "To:"},
		{name: "unknown key returns the key itself", lang: "en", key: "no.such.key", want: "no.such.key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.Message(tt.lang, tt.key))
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ru", Normalize("ru"))
	assert.Equal(t, "en", Normalize("pt"))
	assert.Equal(t, "en", Normalize(""))
}
