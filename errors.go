package docbind

import "errors"

var (
	// ErrNotBound is returned when a persistence or query operation runs
	// before Bind has been given a database.
	ErrNotBound = errors.New("docbind: no database bound")

	// ErrUnknownType is returned when a registry lookup names a type that
	// was never registered.
	ErrUnknownType = errors.New("docbind: unknown document type")

	// ErrUndeclaredField is returned by the typed field accessors for
	// names outside the declared field list.
	ErrUndeclaredField = errors.New("docbind: field not declared")

	// ErrUnknownAssociation is returned for association names that were
	// never declared on the schema.
	ErrUnknownAssociation = errors.New("docbind: association not declared")

	// ErrUnresolvedAssociation is returned when an association getter runs
	// and the target type is not registered. Declarations bind by name, so
	// this surfaces at access time, never at declaration time.
	ErrUnresolvedAssociation = errors.New("docbind: association target type not registered")

	// ErrAssociationKind is returned when a getter of the wrong arity is
	// used, e.g. Association on a has_many.
	ErrAssociationKind = errors.New("docbind: wrong association kind")

	// ErrValidationFailed aborts a save before any driver write.
	ErrValidationFailed = errors.New("docbind: validation failed")

	// ErrNoIdentity is returned by Destroy on a never-persisted document.
	ErrNoIdentity = errors.New("docbind: document has no identifier")

	// ErrSaveDepthExceeded guards the cascade walk against parent cycles.
	ErrSaveDepthExceeded = errors.New("docbind: save cascade too deep")
)
