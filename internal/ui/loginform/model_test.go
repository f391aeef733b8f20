package loginform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.Error(t, validateEmail(""))
	assert.Error(t, validateEmail("alice"))
	assert.NoError(t, validateEmail(" alice@example.com "))
}

func TestStartActivatesForm(t *testing.T) {
	m := New(80)
	assert.False(t, m.Active())
	assert.Empty(t, m.View())

	m.Start("alice@example.com")
	assert.True(t, m.Active())
	assert.Equal(t, "alice@example.com", m.fb.email)
	assert.NotEmpty(t, m.View())
}
