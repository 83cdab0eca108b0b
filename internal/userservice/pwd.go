package userservice

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/sushihentaime/inkpost/internal/common"
)

const passwordCost = 12

// set hashes pwd with a fresh salt. Passwords shorter than six characters are rejected.
func (p *Password) set(pwd string) error {
	v := common.NewValidator()
	validatePassword(v, pwd)
	if !v.Valid() {
		return v.ValidationError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), passwordCost)
	if err != nil {
		return err
	}

	p.Plain = pwd
	p.hash = hash

	return nil
}

func (p *Password) matches(pwd string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.hash, []byte(pwd))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}

	return true, nil
}
