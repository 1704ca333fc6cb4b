package entity

// SessionState состояние пользователя в диалоге
type SessionState string

const (
	StateMainMenu            SessionState = "main_menu"             // В главном меню
	StateAwaitingPhoto       SessionState = "awaiting_photo"        // Ожидание фото для замера
	StateAwaitingFirstPhoto  SessionState = "awaiting_first_photo"  // Ожидание первого фото сравнения
	StateAwaitingSecondPhoto SessionState = "awaiting_second_photo" // Ожидание второго фото сравнения
	StateProcessing          SessionState = "processing"            // Обработка изображения
)

// Mode режим анализа
type Mode string

const (
	ModeSingle Mode = "single" // одно изображение
	ModeDual   Mode = "dual"   // сравнение двух изображений
)

// RequiredFiles возвращает число файлов, нужное режиму.
func (m Mode) RequiredFiles() int {
	if m == ModeDual {
		return 2
	}
	return 1
}

// Session представляет диалог пользователя с ботом
type Session struct {
	UserID int64        // Telegram User ID
	ChatID int64        // Telegram Chat ID
	State  SessionState // Текущее состояние
	Mode   Mode         // Выбранный режим анализа
}

// NewSession создаёт сессию с начальным состоянием
func NewSession(userID, chatID int64) *Session {
	return &Session{
		UserID: userID,
		ChatID: chatID,
		State:  StateMainMenu,
		Mode:   ModeSingle,
	}
}

// SetState обновляет состояние сессии
func (s *Session) SetState(state SessionState) {
	s.State = state
}
