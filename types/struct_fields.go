package types

import (
	"reflect"
	"strings"

	"github.com/Viatorus/compile-time-printer/encio"
)

// StructTag is the struct tag key read by StructFields.
// A value of "-" excludes the field from encoding.
const StructTag = "ctp"

// StructFields returns the fields of ty that are encoded, in declaration order.
// Unexported fields and fields tagged `ctp:"-"` are left out.
func StructFields(ty reflect.Type) []reflect.StructField {
	fields := make([]reflect.StructField, 0, ty.NumField())
	for i := 0; i < ty.NumField(); i++ {
		field := ty.Field(i)

		tag, tagged := field.Tag.Lookup(StructTag)
		if tagged {
			name, _, _ := strings.Cut(tag, ",")
			if name == "-" {
				continue
			}
			if name != "" {
				encio.Warnf("ignoring %v:%q on %v.%v; only \"-\" is understood", StructTag, tag, ty, field.Name)
			}
		}

		if !field.IsExported() {
			continue
		}

		fields = append(fields, field)
	}
	return fields
}
