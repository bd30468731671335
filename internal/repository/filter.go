package repository

import (
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"
)

// ErrUnknownField is returned when a filter or update names a field the users table does not have.
var ErrUnknownField = errors.New("unknown user field")

// Operator is a comparison understood by the store.
type Operator int

const (
	// Equals matches column = value.
	Equals Operator = iota
	// LessThan matches column < value.
	LessThan
	// GreaterThan matches column > value.
	GreaterThan
	// Like matches column LIKE value; the caller supplies any wildcards.
	Like
)

// Condition pairs an operator with its operand.
type Condition struct {
	Op    Operator
	Value any
}

// Eq builds an Equals condition.
func Eq(v any) Condition { return Condition{Op: Equals, Value: v} }

// Lt builds a LessThan condition.
func Lt(v any) Condition { return Condition{Op: LessThan, Value: v} }

// Gt builds a GreaterThan condition.
func Gt(v any) Condition { return Condition{Op: GreaterThan, Value: v} }

// Contains builds a Like condition matching v anywhere in the column.
func Contains(s string) Condition { return Condition{Op: Like, Value: "%" + s + "%"} }

// Filter maps user field names to a single condition each.
// Setting a field that is already present replaces its condition.
type Filter map[string]Condition

// Fields maps user field names to new values for Update.
type Fields map[string]any

// columns maps the model's JSON field names to table columns.
var columns = map[string]string{
	"id":        "id",
	"name":      "name",
	"email":     "email",
	"password":  "password",
	"cellphone": "cellphone",
	"status":    "status",
	"lastLogin": "last_login",
}

func column(field string) (string, error) {
	col, ok := columns[field]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return col, nil
}

func (o Operator) sql() (string, error) {
	switch o {
	case Equals:
		return "=", nil
	case LessThan:
		return "<", nil
	case GreaterThan:
		return ">", nil
	case Like:
		return "LIKE", nil
	default:
		return "", fmt.Errorf("unsupported operator %d", o)
	}
}

// applyFilter adds one WHERE clause per condition, in field-name order.
func applyFilter(db *gorm.DB, f Filter) (*gorm.DB, error) {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		col, err := column(field)
		if err != nil {
			return nil, err
		}
		cond := f[field]
		op, err := cond.Op.sql()
		if err != nil {
			return nil, err
		}
		db = db.Where(fmt.Sprintf("%s %s ?", col, op), cond.Value)
	}
	return db, nil
}

func toColumns(fields Fields) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for field, v := range fields {
		col, err := column(field)
		if err != nil {
			return nil, err
		}
		out[col] = v
	}
	return out, nil
}
