package state

// UserState текущее состояние диалога в чате
type UserState string

const (
	StateNone UserState = "" // Нет активного состояния

	// Бот задал вопрос квиза и ждёт ответ
	StateAwaitingAnswer UserState = "awaiting_answer"
)

// Ключи временных данных диалога квиза
const (
	KeySubject       = "subject"
	KeyQuestion      = "question"
	KeyCorrectAnswer = "correct_answer"
)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Data  map[string]interface{} // Временные данные для текущего диалога
}
