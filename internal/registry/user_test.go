package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepair_FillsAbsentSubstructures(t *testing.T) {
	u := &User{ID: "id-1", Username: "alice", Digest: "d"}

	assert.True(t, u.Repair())
	assert.NotNil(t, u.Contacts)
	assert.NotNil(t, u.Transactions)
	assert.NotNil(t, u.Incidents)
	assert.NotNil(t, u.SolvedBlocks)
	assert.NotNil(t, u.OwnedAssets)

	// already complete: nothing left to fill
	assert.False(t, u.Repair())
}

func TestRepair_KeepsExistingData(t *testing.T) {
	u := &User{
		ID:       "id-1",
		Username: "alice",
		Digest:   "d",
		Contacts: []Contact{{Name: "bob", Address: "b@example.com"}},
	}

	u.Repair()
	require.Len(t, u.Contacts, 1)
	assert.Equal(t, "bob", u.Contacts[0].Name)
}

func TestValidateStructure(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"nil user", nil, false},
		{"complete", &User{ID: "i", Username: "u", Digest: "d"}, true},
		{"missing id", &User{Username: "u", Digest: "d"}, false},
		{"missing username", &User{ID: "i", Digest: "d"}, false},
		{"missing digest", &User{ID: "i", Username: "u"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateStructure(tt.user))
		})
	}
}

func TestPublicView_ExcludesDigest(t *testing.T) {
	u := &User{ID: "id-1", Username: "alice", Digest: "$argon2id$..."}
	u.Repair()

	view := u.PublicView()

	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "argon2id")
	assert.NotContains(t, string(data), "digest")
	assert.Contains(t, string(data), `"username":"alice"`)
}
