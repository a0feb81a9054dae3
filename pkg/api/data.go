package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

type Parameter map[string]string

func (p Parameter) Encode() string {
	var parameters []string
	for key, value := range p {
		parameters = append(parameters, key+"="+PercentEncode(value))
	}
	sort.Strings(parameters)
	return strings.Join(parameters, "&")
}

type JSON map[string]any

type Array []JSON

func (m JSON) ToReader() (io.Reader, string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewBuffer(b), "application/json", nil
}

func (m JSON) Get(key string) (any, error) {
	key, subKey, found := strings.Cut(key, ".")

	value, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("not found field %s", key)
	}

	if !found {
		return value, nil
	}

	sub, ok := value.(JSON)
	if !ok {
		return nil, fmt.Errorf("invalid type of field %s (%T)", key, value)
	}

	return sub.Get(subKey)
}

func (m JSON) GetJSON(key string) (JSON, error) {
	value, err := m.Get(key)
	if err != nil {
		return nil, err
	}

	if value == nil {
		return nil, nil
	}

	if j, ok := value.(JSON); ok {
		return j, nil
	}

	return nil, fmt.Errorf("invalid type of field %s (%T)", key, value)
}

func (m JSON) GetArray(key string) (Array, error) {
	value, err := m.Get(key)
	if err != nil {
		return nil, err
	}

	if value == nil {
		return nil, nil
	}

	if a, ok := value.(Array); ok {
		return a, nil
	}

	return nil, fmt.Errorf("invalid type of field %s (%T)", key, value)
}

func (m JSON) GetString(key string) (string, error) {
	value, err := m.Get(key)
	if err != nil {
		return "", err
	}

	if value == nil {
		return "", nil
	}

	if s, ok := value.(string); ok {
		return s, nil
	}

	return "", fmt.Errorf("invalid type of field %s (%T)", key, value)
}

func (m JSON) GetInt(key string) (int, error) {
	value, err := m.Get(key)
	if err != nil {
		return 0, err
	}

	switch t := value.(type) {
	case int:
		return t, nil
	case float64:
		if t == float64(int(t)) {
			return int(t), nil
		}
		return 0, fmt.Errorf("invalid type of field %s (actually float64)", key)
	}

	return 0, fmt.Errorf("invalid type of field %s (%T)", key, value)
}

func (m JSON) GetBool(key string) (bool, error) {
	value, err := m.Get(key)
	if err != nil {
		return false, err
	}

	if value == nil {
		return false, nil
	}

	if b, ok := value.(bool); ok {
		return b, nil
	}

	return false, fmt.Errorf("invalid type of field %s (%T)", key, value)
}

func (m JSON) GetTime(key, layout string) (time.Time, error) {
	value, err := m.GetString(key)
	if err != nil {
		return time.Time{}, err
	}

	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, err
	}

	return t, nil
}

func bytesToJSON(b []byte) (JSON, error) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}

	return toJSON(m), nil
}

func bytesToArray(b []byte) (Array, error) {
	var values []any
	if err := json.Unmarshal(b, &values); err != nil {
		return nil, err
	}

	array := make(Array, 0, len(values))
	for _, v := range values {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, errors.New("not an array of objects")
		}

		array = append(array, toJSON(m))
	}

	return array, nil
}

func toJSON(m map[string]any) JSON {
	j := make(JSON, len(m))
	for key, value := range m {
		switch t := value.(type) {
		case map[string]any:
			j[key] = toJSON(t)
		case []any:
			if array, ok := toArray(t); ok {
				j[key] = array
			} else {
				j[key] = t
			}
		default:
			j[key] = value
		}
	}

	return j
}

func toArray(values []any) (Array, bool) {
	array := make(Array, 0, len(values))
	for _, v := range values {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}

		array = append(array, toJSON(m))
	}

	return array, true
}
