package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap хранит произвольный JSON-объект в колонке jsonb
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return fmt.Errorf("неподдерживаемый тип для JSONMap: %T", value)
}

// JSONArray хранит произвольный JSON-массив в колонке jsonb
// nil сериализуется в SQL NULL, а не в пустой массив
type JSONArray []interface{}

func (a JSONArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *JSONArray) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*a = nil
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	}
	return fmt.Errorf("неподдерживаемый тип для JSONArray: %T", value)
}
