package audit

import (
	"fmt"
	"reflect"
	"strings"

	apperrors "ginkit/internal/errors"
	"ginkit/internal/models"
)

// ActionKind is the mutation kind an allow-list applies to.
type ActionKind = models.AuditAction

// Action kinds accepted by RegisterTypes.
const (
	ActionCreate = models.AuditActionCreate
	ActionUpdate = models.AuditActionUpdate
	ActionDelete = models.AuditActionDelete
)

// TypeID identifies an entity type: the Go struct name, which is also the
// gorm schema name.
type TypeID = string

// Actions lists every concrete action kind.
var Actions = []ActionKind{ActionCreate, ActionUpdate, ActionDelete}

// ParseActionKind parses s case-insensitively.
func ParseActionKind(s string) (ActionKind, error) {
	for _, a := range Actions {
		if strings.EqualFold(string(a), s) {
			return a, nil
		}
	}
	return "", apperrors.WithMessage(apperrors.ErrInvalidAction, fmt.Sprintf("unknown audit action %q", s))
}

func validAction(a ActionKind) bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

// TypeOf returns the TypeID of v, dereferencing pointers. It returns "" for
// unnamed types such as maps.
func TypeOf(v any) TypeID {
	if v == nil {
		return ""
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
