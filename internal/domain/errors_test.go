package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindAndMessageSurviveWrapping(t *testing.T) {
	t.Parallel()

	base := BusinessError(404, "Tarjeta no encontrada")
	wrapped := fmt.Errorf("lookup: %w", base)

	assert.Equal(t, KindBusiness, KindOf(wrapped))
	assert.Equal(t, "Tarjeta no encontrada", MessageOf(wrapped, "fallback"))
	assert.True(t, errors.Is(wrapped, base))

	plain := errors.New("boom")
	assert.Equal(t, Kind(""), KindOf(plain))
	assert.Equal(t, "fallback", MessageOf(plain, "fallback"))
	assert.Equal(t, "fallback", MessageOf(BusinessError(500, ""), "fallback"))

	cause := errors.New("dial tcp: refused")
	te := TransportError(ConnectionErrorMessage(), cause)
	assert.ErrorIs(t, te, cause)
	assert.Contains(t, te.Error(), "refused")
}
