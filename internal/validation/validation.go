// Package validation registers the request rules used in binding tags.
package validation

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	emailPattern  = regexp.MustCompile(`^[\w.+-]+@[\w.-]+\.\w+$`)
	idCardPattern = regexp.MustCompile(`^\d{17}[\dXx]$`)

	once    sync.Once
	initErr error
)

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsIDCard reports whether s is an 18-character national id number.
func IsIDCard(s string) bool {
	return idCardPattern.MatchString(s)
}

// Register installs the "ctfemail" and "idcard" rules on gin's validator.
// It is safe to call more than once.
func Register() error {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			initErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		if err := v.RegisterValidation("ctfemail", fieldMatches(IsEmail)); err != nil {
			initErr = err
			return
		}
		initErr = v.RegisterValidation("idcard", fieldMatches(IsIDCard))
	})
	return initErr
}

// MustRegister is Register for tests and main.
func MustRegister() {
	if err := Register(); err != nil {
		panic(err)
	}
}

func fieldMatches(fn func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	}
}
