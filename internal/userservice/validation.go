package userservice

import (
	"regexp"

	"github.com/sushihentaime/inkpost/internal/common"
)

var (
	EmailRX = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func validateName(v *common.Validator, name, field string) {
	v.Check(name != "", field, "must be provided")
	v.Check(v.CheckStringLength(name, 0, 100), field, "must not be more than 100 characters long")
}

func validateEmail(v *common.Validator, email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(EmailRX.MatchString(email), "email", "must be a valid email address")
}

// bcrypt only looks at the first 72 bytes, so longer passwords are refused.
func validatePassword(v *common.Validator, password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(len(password) >= 6, "password", "must be at least 6 characters long")
	v.Check(len(password) <= 72, "password", "must not be more than 72 bytes long")
}
