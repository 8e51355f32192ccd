package docbind

import (
	"errors"
	"fmt"
)

// runHooks dispatches the handlers registered for h in order. The first
// error stops the pipeline and propagates; handlers that already ran are
// not rolled back.
func (s *Schema) runHooks(h Hook, d *Document) error {
	for _, fn := range s.hooks[h] {
		if err := fn(d); err != nil {
			return fmt.Errorf("%s %s: %w", s.name, h, err)
		}
	}
	return nil
}

// runValidation runs the validation phase of a save: BeforeValidation
// hooks, registered validators, AfterValidation hooks. Validator errors are
// tagged with ErrValidationFailed so callers can distinguish them from
// driver failures.
func (d *Document) runValidation() error {
	s := d.t.schema
	if err := s.runHooks(BeforeValidation, d); err != nil {
		return err
	}
	for _, v := range s.validators {
		if err := v(d); err != nil {
			if !errors.Is(err, ErrValidationFailed) {
				err = fmt.Errorf("%w: %v", ErrValidationFailed, err)
			}
			return err
		}
	}
	return s.runHooks(AfterValidation, d)
}

// PresenceOf returns a validator requiring every named field to be present
// and non-empty.
func PresenceOf(fields ...string) Handler {
	return func(d *Document) error {
		for _, f := range fields {
			v, ok := d.Get(f)
			if !ok || v == nil || v == "" {
				return fmt.Errorf("%w: %s must be present", ErrValidationFailed, normalizeKey(f))
			}
		}
		return nil
	}
}
