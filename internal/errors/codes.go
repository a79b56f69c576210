package errors

// Diagnostic codes for GasGuard
// These codes appear in console output and editor diagnostics so that a
// finding can be looked up independently of its message text.
//
// Code ranges:
// G0100-G0199: Field rules
// G0200-G0299: Function rules
// G0300-G0399: Contract rules
// G0400-G0499: Vyper rules
// G0900-G0999: Input and parse errors

const (
	// Field rules
	CodeUnusedStateVariable    = "G0101"
	CodeInefficientIntegerType = "G0102"
	CodeStringInsteadOfSymbol  = "G0103"
	CodePrivateContractField   = "G0104"

	// Function rules
	CodeExpensiveStringOperation = "G0201"
	CodeVecWithoutCapacity       = "G0202"
	CodeUnnecessaryClone         = "G0203"
	CodeMissingAddressValidation = "G0204"
	CodeMissingErrorHandling     = "G0205"
	CodeUnboundedLoop            = "G0206"
	CodeInefficientStorageAccess = "G0207"

	// Contract rules
	CodeMissingConstructor  = "G0301"
	CodeMissingAdminPattern = "G0302"

	// Vyper rules
	CodeRedundantExternalDecorator = "G0401"

	// Input and parse errors
	CodeIO              = "G0901"
	CodeGrammarParse    = "G0902"
	CodeStructuralParse = "G0903"
	CodeFieldParse      = "G0904"
)

var ruleCodes = map[string]string{
	"unused-state-variable":        CodeUnusedStateVariable,
	"inefficient-integer-type":     CodeInefficientIntegerType,
	"string-instead-of-symbol":     CodeStringInsteadOfSymbol,
	"private-contract-field":       CodePrivateContractField,
	"expensive-string-operation":   CodeExpensiveStringOperation,
	"vec-without-capacity":         CodeVecWithoutCapacity,
	"unnecessary-clone":            CodeUnnecessaryClone,
	"missing-address-validation":   CodeMissingAddressValidation,
	"missing-error-handling":       CodeMissingErrorHandling,
	"unbounded-loop":               CodeUnboundedLoop,
	"inefficient-storage-access":   CodeInefficientStorageAccess,
	"missing-constructor":          CodeMissingConstructor,
	"missing-admin-pattern":        CodeMissingAdminPattern,
	"redundant-external-decorator": CodeRedundantExternalDecorator,
}

// CodeForRule returns the diagnostic code for a rule id, or "" when the
// rule has none.
func CodeForRule(ruleID string) string {
	return ruleCodes[ruleID]
}
