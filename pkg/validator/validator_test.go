package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type opportunityRef struct {
	ID       string `validate:"omitempty,sfid"`
	CallDate string `validate:"omitempty,datetime=2006-01-02"`
}

func TestValidate_SalesforceID(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		in      opportunityRef
		wantErr bool
	}{
		{"empty is allowed", opportunityRef{}, false},
		{"15 chars", opportunityRef{ID: "0065g00000AbCdE"}, false},
		{"18 chars", opportunityRef{ID: "0065g00000AbCdEAAZ"}, false},
		{"16 chars", opportunityRef{ID: "0065g00000AbCdEA"}, true},
		{"punctuation", opportunityRef{ID: "0065g00000AbCd'"}, true},
		{"bad date", opportunityRef{CallDate: "03/02/2025"}, true},
		{"good date", opportunityRef{CallDate: "2025-02-03"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
