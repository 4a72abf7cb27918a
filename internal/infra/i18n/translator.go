package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// requiredKeys lists every key the bot resolves at runtime. A table
// missing any of them fails at load time, not on first use.
var requiredKeys = []string{
	"users_count",
	"please_wait",
	"no_users",
	"enter_mailing",
	"enter_mailing_markup",
	"incorrect_mailing_markup",
	"start_mailing",
	"mailing_stats",
	"cancelled",
	"incorrect_value",
	"saved",
	"broadcast_busy",
	"error_generic",
	"help_message",
	"funnel_intro",
	"funnel_follow_up",
	"no_outreach_url",
	"button_cancel",
	"button_start",
	"button_outreach",
}

type Translator struct {
	translations map[string]string
}

func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := filepath.Join("locales", fmt.Sprintf("%s.yaml", langCode))

	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}

	t, err := newTranslatorFromBytes(data)
	if err != nil {
		return nil, err
	}
	for _, key := range requiredKeys {
		if _, ok := t.translations[key]; !ok {
			return nil, fmt.Errorf("translation file %s: missing key %q", filePath, key)
		}
	}
	return t, nil
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

// T (Translate) resolves a key, applying fmt formatting when args are given.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}
