package utils

import "math"

// IsFinite проверяет, является ли число конечным
func IsFinite(value float64) bool {
	return !math.IsInf(value, 0) && !math.IsNaN(value)
}

// AllFinite проверяет, что все значения конечны
func AllFinite(values ...float64) bool {
	for _, v := range values {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}

// ClampNonNegative заменяет отрицательное значение нулем
func ClampNonNegative(value float64) float64 {
	if value < 0 {
		return 0
	}
	return value
}

// Float64Ptr возвращает указатель на копию значения
func Float64Ptr(value float64) *float64 {
	return &value
}
