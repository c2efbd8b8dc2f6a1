package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect env variable")

	// Ошибки каталога и остатков
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrOutOfStock      = fmt.Errorf("product is out of stock")

	// Ошибки ввода пользователя
	ErrEmptyContact   = fmt.Errorf("contact is empty")
	ErrInvalidContact = fmt.Errorf("contact has unsupported format")
	ErrEmptySearch    = fmt.Errorf("search query is empty")
	ErrInvalidPrice   = fmt.Errorf("invalid price")
	ErrPricePrecision = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidStock   = fmt.Errorf("invalid stock value")

	// Ошибки доступа
	ErrUnauthorized = fmt.Errorf("access denied")

	// Ошибки воркфлоу заявок
	ErrNoActiveOrder = fmt.Errorf("no active order")

	// Ошибки разбора callback-кнопок
	ErrUnknownCallback = fmt.Errorf("unknown callback payload")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
