package bot

import (
	"encoding/json"

	"github.com/Rom2555/VK-BOT/internal/service"
)

// VK keyboard button colors
const (
	colorPrimary   = "primary"
	colorSecondary = "secondary"
	colorPositive  = "positive"
	colorNegative  = "negative"
)

type buttonAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

type keyboardButton struct {
	Action buttonAction `json:"action"`
	Color  string       `json:"color"`
}

type keyboardMarkup struct {
	OneTime bool               `json:"one_time"`
	Buttons [][]keyboardButton `json:"buttons"`
}

func textButton(label, color string) keyboardButton {
	return keyboardButton{
		Action: buttonAction{Type: "text", Label: label},
		Color:  color,
	}
}

// renderKeyboard turns the state machine's abstract keyboard choice into
// VK keyboard JSON. Returns "" when no keyboard should be attached.
func renderKeyboard(kind service.Keyboard) string {
	var markup keyboardMarkup

	switch kind {
	case service.KeyboardStart:
		markup = keyboardMarkup{
			OneTime: true,
			Buttons: [][]keyboardButton{
				{textButton("/start", colorSecondary)},
			},
		}
	case service.KeyboardSexChoice:
		markup = keyboardMarkup{
			OneTime: true,
			Buttons: [][]keyboardButton{
				{
					textButton("1", colorPositive),
					textButton("2", colorNegative),
				},
			},
		}
	case service.KeyboardActions:
		markup = keyboardMarkup{
			Buttons: [][]keyboardButton{
				{
					textButton("Дальше", colorPrimary),
					textButton("Добавить в избранное", colorPositive),
				},
				{
					textButton("Избранное", colorSecondary),
					textButton("Начать заново", colorNegative),
				},
			},
		}
	default:
		return ""
	}

	encoded, err := json.Marshal(markup)
	if err != nil {
		return ""
	}
	return string(encoded)
}
