package core

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// recordCheck holds the per-record rules the diff stage depends on.
type recordCheck struct {
	Identifier    string `validate:"required,number"`
	SeniorityRank string `validate:"omitempty,number"`
}

var checkFields = map[string]Field{
	"Identifier":    FieldIdentifier,
	"SeniorityRank": FieldSeniorityRank,
}

// ValidateRecordSet checks that set can take part in a comparison: it must
// hold at least one record and every record needs a numeric identifier.
// side names the roster in the error ("old" or "new").
func ValidateRecordSet(side string, set *RecordSet) error {
	if set.Len() == 0 {
		return &ValidationError{Side: side, Message: "roster has no records"}
	}

	for i, r := range set.Records() {
		chk := recordCheck{
			Identifier:    r.Identifier(),
			SeniorityRank: r[FieldSeniorityRank],
		}
		err := validate.Struct(chk)
		if err == nil {
			continue
		}

		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ValidationError{
				Side:    side,
				Field:   checkFields[fe.StructField()],
				Message: fmt.Sprintf("record %d fails %q rule", i+1, fe.Tag()),
			}
		}
		return &ValidationError{Side: side, Message: err.Error()}
	}
	return nil
}
