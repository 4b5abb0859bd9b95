// Copyright 2026 Phillip Cloud
// Licensed under the Apache License, Version 2.0

package schema

import "fmt"

// Validate checks v against col's declared type and constraints, producing
// the fixed diagnostics from spec.md §7. A nil result means the value is
// valid. Nullable/empty values short-circuit: type checks only run against
// a present value.
func Validate(col Column, v Value) *Diagnostic {
	if v.IsNull() || v.IsEmpty() {
		return nil
	}

	switch col.Type {
	case TypeString, TypeButton, TypeLink:
		return validateString(col, v)
	case TypeNumber:
		return validateNumber(col, v)
	case TypeInt:
		return validateInt(v, false)
	case TypeUint:
		return validateInt(v, true)
	case TypeBoolean:
		return validateBool(v)
	case TypeDate, TypeTime, TypeDateTime:
		return validateDate(v)
	case TypeEnum:
		return validateEnum(col, v)
	case TypeTags:
		return validateTags(col, v)
	default:
		return nil
	}
}

func errDiag(msg string) *Diagnostic {
	return &Diagnostic{Level: LevelError, Source: SourceValidation, Message: msg}
}

func errDiagf(format string, args ...any) *Diagnostic {
	return &Diagnostic{Level: LevelError, Source: SourceValidation, Message: fmt.Sprintf(format, args...)}
}

func validateString(col Column, v Value) *Diagnostic {
	s, ok := v.AsString()
	if !ok {
		return errDiag(MsgExpectedString)
	}
	if col.MaxLength != nil && len(s) > *col.MaxLength {
		return errDiagf(MsgTooLong, *col.MaxLength)
	}
	if col.Pattern != nil && !col.Pattern.MatchString(s) {
		return errDiag(MsgPatternMismatch)
	}
	return nil
}

func validateNumber(col Column, v Value) *Diagnostic {
	n, ok := v.AsNumber()
	if !ok {
		return errDiag(MsgExpectedNumber)
	}
	if col.NonNegative && n < 0 {
		return errDiag(MsgExpectedNonNegNumber)
	}
	return nil
}

func validateInt(v Value, unsigned bool) *Diagnostic {
	n, ok := v.AsNumber()
	if !ok {
		return errDiag(MsgExpectedInteger)
	}
	if n != float64(int64(n)) {
		return errDiag(MsgExpectedInteger)
	}
	if unsigned && n < 0 {
		return errDiag(MsgExpectedNonNegInt)
	}
	return nil
}

func validateBool(v Value) *Diagnostic {
	if _, ok := v.AsBool(); !ok {
		return errDiag(MsgExpectedBool)
	}
	return nil
}

func validateDate(v Value) *Diagnostic {
	if _, ok := v.AsTime(); !ok {
		return errDiag(MsgInvalidDateTime)
	}
	return nil
}

func validateEnum(col Column, v Value) *Diagnostic {
	s, ok := v.AsString()
	if !ok {
		return errDiag(MsgExpectedEnum)
	}
	for _, opt := range col.EnumOptions {
		if opt == s {
			return nil
		}
	}
	return errDiag(MsgNotInAllowedOptions)
}

func validateTags(col Column, v Value) *Diagnostic {
	tags, ok := v.AsTags()
	if !ok {
		return errDiag(MsgExpectedTags)
	}
	if col.TagOptions == nil {
		return nil
	}
	allowed := make(map[string]bool, len(col.TagOptions))
	for _, t := range col.TagOptions {
		allowed[t] = true
	}
	for _, t := range tags {
		if !allowed[t] {
			return errDiag(MsgUnknownTag)
		}
	}
	return nil
}
