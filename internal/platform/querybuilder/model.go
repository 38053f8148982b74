package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

// InsertModel inserts one struct whose exported fields carry db tags.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	return InsertModels(table, []any{model}, suffix)
}

// InsertModels builds one multi-row insert. Every model must map to the
// same column list.
func InsertModels[T any](table string, models []T, suffix string) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, fmt.Errorf("insert models are required")
	}

	builder := InsertInto(table).Suffix(suffix)
	var columns []string
	for i, model := range models {
		value, err := structValue(model)
		if err != nil {
			return "", nil, fmt.Errorf("model %d: %w", i, err)
		}
		fields := dbFieldsOf(value.Type())
		if len(fields) == 0 {
			return "", nil, fmt.Errorf("model %d: model has no db columns", i)
		}

		row := make([]any, len(fields))
		names := make([]string, len(fields))
		for j, f := range fields {
			names[j] = f.column
			row[j] = value.FieldByIndex(f.index).Interface()
		}
		if i == 0 {
			columns = names
			builder.Columns(columns...)
		} else if strings.Join(names, ",") != strings.Join(columns, ",") {
			return "", nil, fmt.Errorf("model %d: columns differ from model 0", i)
		}
		builder.Values(row...)
	}
	return builder.ToSQL()
}

func structValue(model any) (reflect.Value, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer || value.Kind() == reflect.Interface {
		if value.IsNil() {
			return reflect.Value{}, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("model must be struct, got %s", value.Kind())
	}
	return value, nil
}

type dbField struct {
	column string
	index  []int
}

var dbFieldCache sync.Map // reflect.Type -> []dbField

func dbFieldsOf(typ reflect.Type) []dbField {
	if cached, ok := dbFieldCache.Load(typ); ok {
		return cached.([]dbField)
	}

	fields := make([]dbField, 0, typ.NumField())
	for _, sf := range reflect.VisibleFields(typ) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		column, _, _ := strings.Cut(sf.Tag.Get("db"), ",")
		column = strings.TrimSpace(column)
		if column == "" || column == "-" {
			continue
		}
		fields = append(fields, dbField{column: column, index: sf.Index})
	}

	actual, _ := dbFieldCache.LoadOrStore(typ, fields)
	return actual.([]dbField)
}
