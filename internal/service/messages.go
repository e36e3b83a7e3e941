package service

// User-facing texts of the matchmaking dialog
const (
	msgAskAge       = "Привет! Введи желаемый возраст (например: 25)."
	msgBadAge       = "Введите возраст числом (от 14 до 90)."
	msgAskSex       = "Выбери пол для поиска:\n1 — мужчина\n2 — женщина"
	msgBadSex       = "Введите 1 или 2."
	msgAskCity      = "Введите город (например: Москва)."
	msgBadCity      = "Введите название города текстом."
	msgCityNotFound = "Город не найден. Попробуйте ещё раз."
	msgNoCandidates = "К сожалению, кандидаты не найдены."
	msgExhausted    = "Кандидаты закончились. Напишите /start, чтобы начать новый поиск."
	msgNothingShown = "Сначала посмотрите кандидата, потом добавляйте в избранное."
	msgFavAdded     = "Кандидат добавлен в избранное."
	msgFavExists    = "Этот кандидат уже в избранном."
	msgNoFavorites  = "В избранном пока никого нет."
	msgFavoritesEnd = "Это все ваши избранные."
	msgPressStart   = "Напишите /start, чтобы начать поиск пары."
	msgStepError    = "Произошла ошибка. Напишите /start."
	msgShowingHint  = "Используйте кнопки: Дальше, Добавить в избранное, Избранное или Начать заново."
)

// Dialog triggers, matched case-insensitively on trimmed input
const (
	triggerNext      = "дальше"
	triggerNextLatin = "next"
	triggerFavorite  = "добавить в избранное"
	triggerFavorites = "избранное"
)

var startTriggers = []string{"/start", "начать", "найти пару", "начать заново"}
