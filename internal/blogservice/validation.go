package blogservice

import (
	"strings"

	"github.com/sushihentaime/inkpost/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 0, 255), "title", "must not be more than 255 characters long")
}

func validateBody(v *common.Validator, body string) {
	v.Check(strings.TrimSpace(body) != "", "body", "must be provided")
}

func validState(s string) bool {
	return common.PermittedValue(State(s), StateDraft, StatePublished)
}
