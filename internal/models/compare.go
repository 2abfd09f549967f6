package models

// IDComparator сравнивает два внешних идентификатора в нативном
// порядке источника: < 0 — a старше b, 0 — равны, > 0 — a свежее b.
//
// Порядок идентификаторов — свойство источника, а не ядра, поэтому
// функция сравнения задаётся явно при сборке сервиса, а не зашита
// в логику расширения границ.
type IDComparator func(a, b string) int

// CompareNumericIDs — компаратор для десятичных числовых идентификаторов
// произвольной длины (snowflake и подобные), записанных без ведущих нулей.
//
// Более длинная строка — большее число; при равной длине порядок
// совпадает с лексикографическим. Наивное строковое сравнение здесь
// не годится: "99" < "100" по смыслу, но не по байтам.
func CompareNumericIDs(a, b string) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
