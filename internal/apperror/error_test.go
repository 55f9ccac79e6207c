package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Run("Tagged", func(t *testing.T) {
		err := NotFound("order not found")
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("Wrapped", func(t *testing.T) {
		base := Conflict("order already accepted")
		err := fmt.Errorf("accept: %w", base)
		assert.Equal(t, KindConflict, KindOf(err))
		assert.True(t, errors.Is(err, base))
	})

	t.Run("Untagged", func(t *testing.T) {
		assert.Equal(t, KindInternal, KindOf(errors.New("connection reset")))
	})
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "Invalid data", MessageOf(Validation("Invalid data")))
	assert.Equal(t, "Server error", MessageOf(errors.New("pq: relation does not exist")))
	assert.Equal(t, "Server error", MessageOf(Wrap(KindInternal, "insert failed", errors.New("boom"))))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindUnauthorized: http.StatusUnauthorized,
		KindForbidden:    http.StatusForbidden,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.String())
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := Wrap(KindInternal, "load bill", cause)

	assert.Equal(t, "load bill: timeout", err.Error())
	assert.ErrorIs(t, err, cause)
}
