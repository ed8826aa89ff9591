package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeExtractJSON(t *testing.T) {
	type payload struct {
		Results []struct {
			Name   string `json:"name"`
			IsFood bool   `json:"isFood"`
		} `json:"results"`
	}

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{
			name: "plain JSON",
			raw:  `{"results":[{"name":"우유","isFood":true}]}`,
		},
		{
			name: "fenced JSON",
			raw:  "```json\n{\"results\":[{\"name\":\"우유\",\"isFood\":true}]}\n```",
		},
		{
			name: "JSON surrounded by prose",
			raw:  "분류 결과는 다음과 같습니다.\n{\"results\":[{\"name\":\"우유\",\"isFood\":true}]}\n이상입니다.",
		},
		{
			name: "raw newline inside a string value",
			raw:  "{\"results\":[{\"name\":\"우\n유\",\"isFood\":true}]}",
		},
		{
			name:    "no JSON at all",
			raw:     "죄송합니다, 분류할 수 없습니다.",
			wantErr: true,
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v payload
			err := SafeExtractJSON(tt.raw, &v)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Len(t, v.Results, 1)
			assert.True(t, v.Results[0].IsFood)
		})
	}
}
