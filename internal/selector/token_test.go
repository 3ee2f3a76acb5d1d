package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		raw  string
		want Token
	}{
		{"delete_42", Token{Action: ActionDelete, Kind: KindSelect, Key: "42", ID: 42}},
		{"complete_7", Token{Action: ActionComplete, Kind: KindSelect, Key: "7", ID: 7}},
		{"delete_prev_3", Token{Action: ActionDelete, Kind: KindPrev, Page: 3}},
		{"complete_next_0", Token{Action: ActionComplete, Kind: KindNext, Page: 0}},
		{"completed_2024-02-29", Token{Action: ActionCompleted, Kind: KindSelect, Key: "2024-02-29"}},
		{"completed_next_1", Token{Action: ActionCompleted, Kind: KindNext, Page: 1}},
		{"category_Work", Token{Action: ActionCategory, Kind: KindSelect, Key: "Work"}},
		{"category_side_project", Token{Action: ActionCategory, Kind: KindSelect, Key: "side_project"}},
		{"category_prev_1", Token{Action: ActionCategory, Kind: KindPrev, Page: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseToken(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.raw, got.String())
		})
	}
}

func TestParseTokenMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"delete",
		"delete_",
		"archive_5",
		"delete_abc",
		"delete_-1",
		"delete_+1",
		"delete_0",
		"complete_1.5",
		"delete_prev_",
		"delete_next_x",
		"delete_prev_-1",
		"completed_2024-13-01",
		"completed_yesterday",
		"prev_1",
		"next_1",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseToken(raw)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestSelectIDString(t *testing.T) {
	assert.Equal(t, "complete_15", SelectID(ActionComplete, 15).String())
	assert.Equal(t, "delete_prev_2", Prev(ActionDelete, 2).String())
	assert.Equal(t, "completed_next_4", Next(ActionCompleted, 4).String())
}
