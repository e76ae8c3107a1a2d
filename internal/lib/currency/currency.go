// Package currency сопоставляет код валюты профиля с отображаемым символом.
// Символ используется только как подстановка строки при выводе сумм;
// никакой конвертации валют здесь нет.
package currency

// Symbol возвращает символ для кода валюты. Неизвестные коды отображаются как доллар.
func Symbol(code string) string {
	switch code {
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	case "JPY", "CNY":
		return "¥"
	case "AUD":
		return "A$"
	case "CAD":
		return "C$"
	case "CHF":
		return "CHF"
	default:
		return "$"
	}
}
