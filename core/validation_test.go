package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateHubName(t *testing.T) {
	tests := []struct {
		name    string
		hubName string
		wantErr bool
	}{
		{name: "simple", hubName: "sales", wantErr: false},
		{name: "with separators", hubName: "q3_sales-2025", wantErr: false},
		{name: "empty", hubName: "", wantErr: true},
		{name: "path traversal", hubName: "../etc", wantErr: true},
		{name: "spaces", hubName: "my hub", wantErr: true},
		{name: "slash", hubName: "a/b", wantErr: true},
		{name: "too long", hubName: strings.Repeat("a", 101), wantErr: true},
		{name: "max length", hubName: strings.Repeat("a", 100), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHubName(tt.hubName)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidHubName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
