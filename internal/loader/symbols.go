package loader

import (
	"reflect"

	"e2erun/e2e"
)

// ImportPath is the package test files import to declare themselves
const ImportPath = "e2erun/e2e"

// Symbols exports package e2e to interpreted test files under ImportPath
var Symbols = map[string]map[string]reflect.Value{
	ImportPath + "/e2e": {
		"File":          reflect.ValueOf((*e2e.File)(nil)),
		"RunOptions":    reflect.ValueOf((*e2e.RunOptions)(nil)),
		"Case":          reflect.ValueOf((*e2e.Case)(nil)),
		"Page":          reflect.ValueOf((*e2e.Page)(nil)),
		"CaseFunc":      reflect.ValueOf((*e2e.CaseFunc)(nil)),
		"HookFunc":      reflect.ValueOf((*e2e.HookFunc)(nil)),
		"AfterEachFunc": reflect.ValueOf((*e2e.AfterEachFunc)(nil)),
		"UsageError":    reflect.ValueOf((*e2e.UsageError)(nil)),
	},
}
