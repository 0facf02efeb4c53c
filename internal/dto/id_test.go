package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		body    string
		want    ID
		wantErr bool
	}{
		{`{"orderid": 42}`, 42, false},
		{`{"orderid": "42"}`, 42, false},
		{`{"orderid": ""}`, 0, false},
		{`{"orderid": null}`, 0, false},
		{`{}`, 0, false},
		{`{"orderid": "abc"}`, 0, true},
		{`{"orderid": -1}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var req MilestoneActionRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.OrderID)
		})
	}
}
