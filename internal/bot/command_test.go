package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    Command
		wantErr bool
	}{
		{
			name:    "list",
			payload: `{"cmd":"list"}`,
			want:    Command{Kind: CmdList},
		},
		{
			name:    "page with number",
			payload: `{"cmd":"page","page":3}`,
			want:    Command{Kind: CmdPage, Page: 3},
		},
		{
			name:    "item with pk and page",
			payload: `{"cmd":"item","pk":12345,"page":2}`,
			want:    Command{Kind: CmdShowItem, ItemID: 12345, Page: 2},
		},
		{
			name:    "delete",
			payload: `{"cmd":"delete","pk":12345,"page":1}`,
			want:    Command{Kind: CmdDeleteItem, ItemID: 12345, Page: 1},
		},
		{
			name:    "unknown command",
			payload: `{"cmd":"reboot"}`,
			wantErr: true,
		},
		{
			name:    "empty command",
			payload: `{}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			payload: `{"cmd":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseCommand([]byte(tt.payload))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_RoundTrip(t *testing.T) {
	t.Parallel()

	payload := encodePayload(CmdDeleteItem, 99, 4)
	got, err := ParseCommand([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, Command{Kind: CmdDeleteItem, ItemID: 99, Page: 4}, got)
}

func TestCommandKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "list", CmdList.String())
	assert.Equal(t, "item", CmdShowItem.String())
	assert.Equal(t, "delete", CmdDeleteItem.String())
	assert.Equal(t, "page", CmdPage.String())
	assert.Equal(t, "unknown", CmdUnknown.String())
}
