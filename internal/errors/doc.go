// Package errors provides coded errors for charforge.
//
// Every error that crosses a package boundary carries a Code. Codes map onto
// gRPC status codes for the transport and onto HTTP statuses for anything
// that renders them.
//
// # Creating errors
//
//	err := errors.NotFoundf("character %s not found", id)
//	err := errors.InvalidArgument("race is required")
//	err := errors.GenerationFailed("portrait model rejected the prompt").
//	    WithMeta("status", resp.StatusCode)
//
// # Wrapping
//
// Wrap keeps the code of an inner *Error (anything else becomes Internal),
// so a NotFound raised by the store is still a NotFound after the service
// adds context:
//
//	if err != nil {
//	    return nil, errors.Wrapf(err, "failed to load character %s", id)
//	}
//
// WrapWithCode replaces the code; use it when a lower layer's failure means
// something different to the caller.
//
// # Validation
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("name", c.Name, vb)
//	errors.ValidateCount("proficientSkills", len(c.ProficientSkills), want, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
//
// Build returns an InvalidArgument error whose metadata holds the per-field
// problems; ValidationFields reads them back, also after a gRPC round trip.
//
// # Kinds used by the character flow
//
//   - InvalidArgument: incomplete or malformed character data
//   - NotFound: no character with that id
//   - AlreadyExists: id collision on create
//   - Unavailable: the portrait generator is not configured or unreachable
//   - GenerationFailed: the portrait generator answered with an error
//
// GenerationFailed and a later persistence failure are never folded into
// each other; they ask the user for different retries.
package errors
