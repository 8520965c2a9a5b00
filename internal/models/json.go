package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// GormDataType implements schema.GormDataTypeInterface.
func (ItemResults) GormDataType() string {
	return "text"
}

// GormDBDataType picks a column large enough for a whole batch. MySQL TEXT
// stops at 64KB, a few hundred results.
func (ItemResults) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "mysql" {
		return "LONGTEXT"
	}
	return "text"
}

// Value implements driver.Valuer. A nil slice is stored as NULL.
func (r ItemResults) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("models: marshal results: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (r *ItemResults) Scan(src interface{}) error {
	data, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("models: scan results: %w", err)
	}
	if len(data) == 0 {
		*r = nil
		return nil
	}
	return json.Unmarshal(data, r)
}

// StringList is a []string stored as a JSON array column. Nil is stored as [].
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, fmt.Errorf("models: marshal string list: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	data, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("models: scan string list: %w", err)
	}
	if len(data) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	if out == nil {
		out = []string{}
	}
	*l = out
	return nil
}

func jsonBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T", src)
	}
}

// MarshalJSON always emits keywords for a successful item, as [] when the
// model returned none, and leaves them out for failed items.
func (r ItemResult) MarshalJSON() ([]byte, error) {
	type plain ItemResult
	out := struct {
		plain
		Keywords *[]string `json:"keywords,omitempty"`
	}{plain: plain(r)}
	if r.Success {
		kw := r.Keywords
		if kw == nil {
			kw = []string{}
		}
		out.Keywords = &kw
	}
	return json.Marshal(out)
}
