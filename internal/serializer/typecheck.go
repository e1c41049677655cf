package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/shopspring/decimal"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// FieldTypeErrors reports the fields of a JSON object body whose values do not
// decode into the matching field of req. It returns nil when body is not an
// object or when every present field decodes.
func FieldTypeErrors(body []byte, req interface{}) *ValidationError {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}

	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	out := &ValidationError{}
	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		value, ok := raw[name]
		if !ok {
			continue
		}
		if msg := typeMessage(fld.Type, value); msg != "" {
			out.Add(name, msg)
		}
	}

	if len(out.Fields) == 0 {
		return nil
	}
	return out
}

// typeMessage returns "" when value decodes into t.
func typeMessage(t reflect.Type, value json.RawMessage) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if json.Unmarshal(value, reflect.New(t).Interface()) == nil {
		return ""
	}

	if t == decimalType {
		return "A valid number is required."
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "A valid integer is required."
	case reflect.String:
		return "Not a valid string."
	case reflect.Bool:
		return "Must be a valid boolean."
	case reflect.Slice:
		return idListMessage(t.Elem(), value)
	default:
		return "Invalid value."
	}
}

// idListMessage explains why value is not a list of primary keys.
func idListMessage(elem reflect.Type, value json.RawMessage) string {
	var items []json.RawMessage
	if err := json.Unmarshal(value, &items); err != nil {
		return fmt.Sprintf("Expected a list of items but got type %q.", jsonTypeName(value))
	}

	for _, item := range items {
		if json.Unmarshal(item, reflect.New(elem).Interface()) == nil {
			continue
		}
		kind := jsonTypeName(item)
		if kind == "int" {
			// negative or out of range
			return fmt.Sprintf("Invalid pk %q - object does not exist.", string(bytes.TrimSpace(item)))
		}
		return fmt.Sprintf("Incorrect type. Expected pk value, received %s.", kind)
	}
	return "Invalid value."
}

// jsonTypeName names the type of a JSON value the way API clients see it in messages.
func jsonTypeName(value json.RawMessage) string {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return "NoneType"
	}
	switch value[0] {
	case '"':
		return "str"
	case '{':
		return "dict"
	case '[':
		return "list"
	case 't', 'f':
		return "bool"
	case 'n':
		return "NoneType"
	}
	if bytes.ContainsAny(value, ".eE") {
		return "float"
	}
	return "int"
}
