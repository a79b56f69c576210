package builtins

import "strings"

// BuiltinType represents a Soroban SDK or Rust primitive type the rules
// reason about
type BuiltinType string

const (
	// 128-bit integers
	U128 BuiltinType = "u128"
	I128 BuiltinType = "i128"

	// SDK value types
	String  BuiltinType = "String"
	Symbol  BuiltinType = "Symbol"
	Bytes   BuiltinType = "Bytes"
	Address BuiltinType = "Address"
)

// WideIntegerTypes are the 128-bit integers whose storage footprint is
// usually larger than the value range needs
var WideIntegerTypes = map[string]bool{
	string(U128): true,
	string(I128): true,
}

// IsWideInteger checks if a type is a 128-bit integer
func IsWideInteger(typeName string) bool {
	return WideIntegerTypes[strings.TrimSpace(typeName)]
}

// IsStringType checks if a type is the heap-allocated SDK String
func IsStringType(typeName string) bool {
	return BuiltinType(strings.TrimSpace(typeName)) == String
}

// MentionsAddress checks if a type refers to Address anywhere, including
// inside generics such as Option<Address> or Vec<Address>
func MentionsAddress(typeName string) bool {
	return strings.Contains(typeName, string(Address))
}
