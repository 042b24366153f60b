package services

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Маркер "(акциз)" встречается в любых регистрах и в любом месте названия
	excizeMarkerRe = regexp.MustCompile(`(?i)\(\s*акциз\s*\)`)
	multiSpaceRe   = regexp.MustCompile(`\s+`)
)

// Известные длинные названия из старой выгрузки поставщика,
// которые приводим к короткой канонической форме
var legacyNames = map[string]string{
	"Жидкость для электронных систем доставки никотина": "Жидкость",
	"Испарители и картриджи для электронных сигарет":    "Испарители",
}

// CleanName нормализует название категории или товара от поставщика:
// убирает маркер "(акциз)", схлопывает повторные пробелы, переписывает
// известные устаревшие длинные названия. Пустой вход дает пустую строку
func CleanName(name string) string {
	if name == "" {
		return ""
	}

	name = excizeMarkerRe.ReplaceAllString(name, "")
	name = multiSpaceRe.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)

	if short, ok := legacyNames[name]; ok {
		return short
	}
	return name
}

// ParseLocaleNumber разбирает число в локальном формате поставщика:
// пробелы как разделители тысяч, запятая как десятичный разделитель
// ("1 234,50" -> 1234.5). Отсутствующее или пустое значение возвращает nil -
// это "нет значения", которое нельзя схлопывать в 0
func ParseLocaleNumber(value interface{}) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case string:
		s := strings.ReplaceAll(v, " ", "")
		s = strings.ReplaceAll(s, " ", "")
		if s == "" {
			return nil
		}
		s = strings.Replace(s, ",", ".", 1)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}
