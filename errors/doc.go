// Package errors provides structured error types for the js-runtime library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: field path, Go/JS type
// names, the offending script value, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
//		GoType("int").
//		JSType("string").
//		Detail("cannot convert string to integer").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeConversion(errors.PhaseConvert, "int", "string", cause)
//	err := errors.Script(rejection, "promise rejected")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
