package middleware

import (
	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/pkg/validator"
)

// ConfigureValidation wires json field names and the role tag into gin's
// binding validator.
func ConfigureValidation() {
	if v, ok := binding.Validator.Engine().(*playground.Validate); ok {
		validator.Configure(v, model.Roles)
	}
}
