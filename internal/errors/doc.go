// Package errors provides structured errors for the bestiary service.
//
// Errors carry a Code, a user-facing message, an optional cause and metadata.
// The code decides how an error surfaces over HTTP:
//
//	err := errors.NotFoundf("monster %s not found", index)
//	w.WriteHeader(errors.GetCode(err).HTTPStatus())
//
// The catalog helpers distinguish the two upstream failure kinds:
//
//	errors.CatalogUnavailable(cause)       // the monster index could not be loaded
//	errors.DetailUnavailable(index, cause) // a single stat block could not be loaded
//
// Both use CodeUnavailable; IsCatalogUnavailable and IsDetailUnavailable tell
// them apart through the "reason" metadata key.
package errors
