package errors

const (
	// MetaReason is the metadata key distinguishing catalog failures
	MetaReason = "reason"
	// MetaMonsterIndex is the metadata key holding the failed monster index
	MetaMonsterIndex = "monster_index"

	reasonCatalog = "catalog_unavailable"
	reasonDetail  = "detail_unavailable"
)

// CatalogUnavailable reports that the monster index could not be obtained
func CatalogUnavailable(cause error) *Error {
	if cause == nil {
		return Unavailable("monster catalog unavailable").WithMeta(MetaReason, reasonCatalog)
	}
	return WrapWithCode(cause, CodeUnavailable, "monster catalog unavailable").
		WithMeta(MetaReason, reasonCatalog)
}

// DetailUnavailable reports that a single monster stat block could not be obtained
func DetailUnavailable(index string, cause error) *Error {
	var err *Error
	if cause == nil {
		err = Unavailablef("monster %s unavailable", index)
	} else {
		err = WrapWithCodef(cause, CodeUnavailable, "monster %s unavailable", index)
	}
	return err.WithMeta(MetaReason, reasonDetail).WithMeta(MetaMonsterIndex, index)
}

// Unavailablef creates an unavailable error with formatted message
func Unavailablef(format string, args ...any) *Error {
	return Newf(CodeUnavailable, format, args...)
}

// IsCatalogUnavailable reports whether err is a CatalogUnavailable error
func IsCatalogUnavailable(err error) bool {
	return IsUnavailable(err) && GetMeta(err)[MetaReason] == reasonCatalog
}

// IsDetailUnavailable reports whether err is a DetailUnavailable error
func IsDetailUnavailable(err error) bool {
	return IsUnavailable(err) && GetMeta(err)[MetaReason] == reasonDetail
}
