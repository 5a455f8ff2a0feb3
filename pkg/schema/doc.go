// Package schema checks the bound inputs handed to a run before any step
// executes.
//
// A Schema maps every bound input name read by a step set to the type the
// reading parameter expects. It is derived from the step descriptors:
//
//	s := schema.FromSteps(steps)
//
//	if err := schema.Validate(s, inputs); err != nil {
//	    // errors.Is(err, schema.ErrRequired) for missing names
//	    // errors.Is(err, schema.ErrMismatch) for values of the wrong type
//	}
//
// Validation collects every failure into an AggregateError instead of
// stopping at the first one.
package schema
