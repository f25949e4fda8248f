package config

import (
	"github.com/knadh/koanf/providers/confmap"
)

func DefaultConfig() map[string]interface{} {
	return map[string]interface{}{
		"database": map[string]interface{}{
			"path": "~/.medremind/reminders.db",
		},
		"scheduler": map[string]interface{}{
			"poll_interval":   30,  // seconds; firing latency is bounded by this
			"snooze_minutes":  5,
			"confirm_timeout": 300, // 5 minutes to answer "Did you take it?"
		},
		"notifier": map[string]interface{}{
			"type": "console",
			"telegram": map[string]interface{}{
				"bot_token": "",
				"chat_id":   "",
			},
		},
		"youtube": map[string]interface{}{
			"api_key": "",
		},
		"ui": map[string]interface{}{
			"colored_output": true,
		},
	}
}

func NewDefaultProvider() *confmap.Confmap {
	return confmap.Provider(DefaultConfig(), ".")
}

func GetDefaultConfigPath() string {
	return "~/.medremind/config.yaml"
}
