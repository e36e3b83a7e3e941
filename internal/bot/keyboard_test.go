package bot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rom2555/VK-BOT/internal/service"
)

func decodeKeyboard(t *testing.T, raw string) keyboardMarkup {
	t.Helper()

	var markup keyboardMarkup
	require.NoError(t, json.Unmarshal([]byte(raw), &markup))
	return markup
}

func buttonLabels(markup keyboardMarkup) [][]string {
	rows := make([][]string, 0, len(markup.Buttons))
	for _, row := range markup.Buttons {
		labels := make([]string, 0, len(row))
		for _, button := range row {
			labels = append(labels, button.Action.Label)
		}
		rows = append(rows, labels)
	}
	return rows
}

func TestRenderKeyboardNone(t *testing.T) {
	assert.Empty(t, renderKeyboard(service.KeyboardNone))
}

func TestRenderKeyboardStart(t *testing.T) {
	markup := decodeKeyboard(t, renderKeyboard(service.KeyboardStart))

	assert.True(t, markup.OneTime)
	assert.Equal(t, [][]string{{"/start"}}, buttonLabels(markup))
}

func TestRenderKeyboardSexChoice(t *testing.T) {
	markup := decodeKeyboard(t, renderKeyboard(service.KeyboardSexChoice))

	assert.True(t, markup.OneTime)
	assert.Equal(t, [][]string{{"1", "2"}}, buttonLabels(markup))
	assert.Equal(t, colorPositive, markup.Buttons[0][0].Color)
	assert.Equal(t, colorNegative, markup.Buttons[0][1].Color)
}

func TestRenderKeyboardActions(t *testing.T) {
	markup := decodeKeyboard(t, renderKeyboard(service.KeyboardActions))

	assert.False(t, markup.OneTime)
	assert.Equal(t, [][]string{
		{"Дальше", "Добавить в избранное"},
		{"Избранное", "Начать заново"},
	}, buttonLabels(markup))

	for _, row := range markup.Buttons {
		for _, button := range row {
			assert.Equal(t, "text", button.Action.Type)
		}
	}
}
