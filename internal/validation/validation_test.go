package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEmail(t *testing.T) {
	valid := []string{"alice@example.com", "a.b-c@mail.school.edu.cn", "x+ctf@y.io"}
	invalid := []string{"", "alice", "alice@", "@example.com", "alice@example", "a b@c.d"}

	for _, s := range valid {
		assert.True(t, IsEmail(s), s)
	}
	for _, s := range invalid {
		assert.False(t, IsEmail(s), s)
	}
}

func TestIsIDCard(t *testing.T) {
	assert.True(t, IsIDCard("11010519491231002X"))
	assert.True(t, IsIDCard("110105194912310021"))
	assert.True(t, IsIDCard("11010519491231002x"))
	assert.False(t, IsIDCard("1101051949123100"))
	assert.False(t, IsIDCard("11010519491231002Y"))
	assert.False(t, IsIDCard("1101051949123100211"))
}

func TestRegister(t *testing.T) {
	require.NoError(t, Register())
	require.NoError(t, Register(), "second call is a no-op")

	type form struct {
		Email  string `binding:"required,ctfemail"`
		IDCard string `binding:"required,idcard"`
	}

	assert.NoError(t, binding.Validator.ValidateStruct(&form{Email: "a@b.cn", IDCard: "110105194912310021"}))
	assert.Error(t, binding.Validator.ValidateStruct(&form{Email: "nope", IDCard: "110105194912310021"}))
	assert.Error(t, binding.Validator.ValidateStruct(&form{Email: "a@b.cn", IDCard: "123"}))
}
