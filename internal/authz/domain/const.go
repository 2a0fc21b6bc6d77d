// Package domain defines authorization domain models.
// Implements principal-based access control with operation grants and bearer tokens.
package domain

// Operation names a privileged engine operation. Principals are granted
// operations individually; matching is exact, with no wildcards.
type Operation string

const (
	// KeyCreateOperation allows registering new credentials.
	KeyCreateOperation Operation = "key:create"

	// KeyGetOperation allows reading a single credential.
	KeyGetOperation Operation = "key:get"

	// KeyListOperation allows listing credentials.
	KeyListOperation Operation = "key:list"

	// KeyRotateOperation allows rotating credentials and expiring grace periods.
	KeyRotateOperation Operation = "key:rotate"

	// KeyRevokeOperation allows emergency credential revocation.
	KeyRevokeOperation Operation = "key:revoke"

	// AllocationCreateOperation allows allocating credentials to consumers.
	AllocationCreateOperation Operation = "allocation:create"

	// AllocationRevokeOperation allows revoking allocations.
	AllocationRevokeOperation Operation = "allocation:revoke"

	// AllocationListOperation allows listing allocations.
	AllocationListOperation Operation = "allocation:list"

	// AuditQueryOperation allows querying and verifying the audit log.
	AuditQueryOperation Operation = "audit:query"
)

// AllOperations lists every privileged operation, used to grant full access.
var AllOperations = []Operation{
	KeyCreateOperation,
	KeyGetOperation,
	KeyListOperation,
	KeyRotateOperation,
	KeyRevokeOperation,
	AllocationCreateOperation,
	AllocationRevokeOperation,
	AllocationListOperation,
	AuditQueryOperation,
}

// IsValid reports whether the operation is a known privileged operation.
func (o Operation) IsValid() bool {
	for _, op := range AllOperations {
		if o == op {
			return true
		}
	}
	return false
}
