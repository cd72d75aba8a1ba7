package validate_test

import (
	"testing"

	"github.com/ardanlabs/powchain/foundation/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type transact struct {
	Recipient string `json:"recipient" validate:"required,address"`
	Amount    uint64 `json:"amount" validate:"required,gt=0"`
}

func TestCheck(t *testing.T) {
	tt := []struct {
		name   string
		value  transact
		fields []string
	}{
		{"valid", transact{"0xF01813E4B85e178A83e29B8E7bF26BD830a25f32", 10}, nil},
		{"bad-address", transact{"0xF01813", 10}, []string{"recipient"}},
		{"missing", transact{}, []string{"recipient", "amount"}},
	}

	t.Log("Given the need to validate request models.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				err := validate.Check(tst.value)
				if tst.fields == nil {
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould pass validation: %s", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould pass validation.", success, testID)
					return
				}

				fields := validate.GetFieldErrors(err).Fields()
				for _, name := range tst.fields {
					if _, exists := fields[name]; !exists {
						t.Fatalf("\t%s\tTest %d:\tShould fail on field %q: %v", failed, testID, name, err)
					}
				}
				t.Logf("\t%s\tTest %d:\tShould fail on the right fields.", success, testID)
			}

			t.Run(tst.name, f)
		}
	}
}
