package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/bestiary/internal/errors"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewError() {
	err := errors.NotFound("monster not found")
	s.Equal("NOT_FOUND: monster not found", err.Error())
	s.Equal(errors.CodeNotFound, err.Code)
	s.True(errors.IsNotFound(err))
}

func (s *ErrorsTestSuite) TestWrapPreservesCode() {
	base := errors.InvalidArgument("bad cr")
	wrapped := errors.Wrap(base, "parse filter")

	s.Equal(errors.CodeInvalidArgument, wrapped.Code)
	s.True(stderrors.Is(wrapped, base))
	s.Equal("parse filter", errors.GetMessage(wrapped))
}

func (s *ErrorsTestSuite) TestWrapPlainErrorIsInternal() {
	wrapped := errors.Wrapf(fmt.Errorf("boom"), "step %d", 2)
	s.Equal(errors.CodeInternal, wrapped.Code)
	s.Equal("INTERNAL: step 2: boom", wrapped.Error())
	s.Nil(errors.Wrap(nil, "nothing"))
}

func (s *ErrorsTestSuite) TestGetCode() {
	s.Equal(errors.CodeOK, errors.GetCode(nil))
	s.Equal(errors.CodeInternal, errors.GetCode(fmt.Errorf("plain")))
	s.Equal(errors.CodeUnavailable, errors.GetCode(fmt.Errorf("wrapped: %w", errors.Unavailable("down"))))
}

func (s *ErrorsTestSuite) TestHTTPStatus() {
	testCases := []struct {
		code errors.Code
		want int
	}{
		{errors.CodeOK, http.StatusOK},
		{errors.CodeInvalidArgument, http.StatusBadRequest},
		{errors.CodeNotFound, http.StatusNotFound},
		{errors.CodeFailedPrecondition, http.StatusPreconditionFailed},
		{errors.CodeUnavailable, http.StatusServiceUnavailable},
		{errors.CodeAborted, http.StatusConflict},
		{errors.CodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		s.Run(tc.code.String(), func() {
			s.Equal(tc.want, tc.code.HTTPStatus())
		})
	}
}

func (s *ErrorsTestSuite) TestAborted() {
	err := errors.Abortedf("session %s changed", "nav_1")

	s.True(errors.IsAborted(err))
	s.False(errors.IsAborted(errors.Unavailable("down")))
	s.Equal("session nav_1 changed", errors.GetMessage(err))
}

func (s *ErrorsTestSuite) TestCatalogUnavailable() {
	err := errors.CatalogUnavailable(fmt.Errorf("dial tcp: refused"))

	s.True(errors.IsCatalogUnavailable(err))
	s.False(errors.IsDetailUnavailable(err))
	s.True(errors.IsUnavailable(err))
	s.Contains(err.Error(), "dial tcp: refused")

	s.True(errors.IsCatalogUnavailable(errors.CatalogUnavailable(nil)))
}

func (s *ErrorsTestSuite) TestDetailUnavailable() {
	err := errors.DetailUnavailable("adult-red-dragon", errors.NotFound("404"))

	s.True(errors.IsDetailUnavailable(err))
	s.False(errors.IsCatalogUnavailable(err))
	s.Equal("adult-red-dragon", errors.GetMeta(err)[errors.MetaMonsterIndex])

	// A catalog failure caused by a detail failure is reported as a catalog failure
	s.True(errors.IsCatalogUnavailable(errors.CatalogUnavailable(err)))
}

func (s *ErrorsTestSuite) TestValidationBuilder() {
	s.NoError(errors.NewValidationBuilder().Build())

	err := errors.NewValidationBuilder().
		RequiredField("Client").
		InvalidField("BaseURL", "missing scheme").
		Build()

	s.Error(err)
	s.True(errors.IsInvalidArgument(err))
	s.Contains(err.Error(), "BaseURL: is invalid: missing scheme; Client: is required")
}
